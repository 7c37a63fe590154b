package channels

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"checkinbot/internal/notifier"
	"checkinbot/internal/notifier/format"
	logx "checkinbot/pkg/logx"
)

// FTQQ pushes through ServerChan Turbo. The key lives in setting.push_token.
type FTQQ struct {
	session *Session
	base    string
}

func NewFTQQ(s *Session) *FTQQ {
	return &FTQQ{session: s, base: "https://sctapi.ftqq.com"}
}

func (c *FTQQ) Name() string { return "ftqq" }

func (c *FTQQ) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	token, err := cfg.Section(notifier.SettingSection).Require("push_token")
	if err != nil {
		return err
	}
	client, err := c.session.Client(cfg.Section(c.Name()))
	if err != nil {
		return err
	}
	r, err := postForm(ctx, client, c.base+"/"+url.PathEscape(token)+".send", url.Values{
		"title": {format.Title(msg.Status)},
		"desp":  {msg.Text},
	})
	if err != nil {
		return err
	}
	return r.expect2xx(c.Name())
}

var sendKeyPattern = regexp.MustCompile(`^sctp(\d+)t`)

// ServerChan3Endpoint derives the push endpoint from a sendkey of the form
// sctp<digits>t...
func ServerChan3Endpoint(sendkey string) (string, error) {
	m := sendKeyPattern.FindStringSubmatch(sendkey)
	if m == nil {
		return "", fmt.Errorf("serverchan3: invalid sendkey format %q", sendkey)
	}
	return fmt.Sprintf("https://%s.push.ft07.com/send/%s.send", m[1], sendkey), nil
}

// ServerChan3 pushes through ServerChan 3. Options: sendkey, tags.
type ServerChan3 struct {
	session  *Session
	endpoint func(sendkey string) (string, error)
}

func NewServerChan3(s *Session) *ServerChan3 {
	return &ServerChan3{session: s, endpoint: ServerChan3Endpoint}
}

func (c *ServerChan3) Name() string { return "serverchan3" }

func (c *ServerChan3) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	sec := cfg.Section(c.Name())
	key, err := sec.Require("sendkey")
	if err != nil {
		return err
	}
	target, err := c.endpoint(key)
	if err != nil {
		return err
	}
	client, err := c.session.Client(sec)
	if err != nil {
		return err
	}
	r, err := postJSON(ctx, client, target, map[string]string{
		"title": format.Title(msg.Status),
		"desp":  msg.Text,
		"tags":  sec.String("tags"),
	})
	if err != nil {
		return err
	}
	c.session.logger(c.Name()).Debug("serverchan3 reply", logx.String("body", r.text()))
	return r.expect2xx(c.Name())
}
