package channels

import "checkinbot/internal/notifier"

// All returns every built-in adapter bound to s.
func All(s *Session) []notifier.Channel {
	return []notifier.Channel{
		NewTelegram(s),
		NewFTQQ(s),
		NewServerChan3(s),
		NewPushPlus(s),
		NewPushMe(s),
		NewCQHTTP(s),
		NewSMTP(s),
		NewWeCom(s),
		NewWeComRobot(s),
		NewPushDeer(s),
		NewDingRobot(s),
		NewFeishuBot(s),
		NewBark(s),
		NewGotify(s),
		NewIFTTT(s),
		NewWebhook(s),
		NewQmsg(s),
		NewDiscord(s),
		NewWinToast(),
		NewWxPusher(s),
	}
}

// Registry builds a notifier registry holding every built-in adapter.
func Registry(s *Session) *notifier.Registry {
	return notifier.NewRegistry(All(s)...)
}
