package channels

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"checkinbot/internal/notifier"
	"checkinbot/internal/notifier/format"
	"checkinbot/internal/report"
	logx "checkinbot/pkg/logx"
)

// errcodeReply is the reply shape shared by the WeCom and DingTalk bots.
type errcodeReply struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func (r errcodeReply) err(channel string) error {
	if r.ErrCode != 0 {
		return fmt.Errorf("%s: errcode %d: %s", channel, r.ErrCode, r.ErrMsg)
	}
	return nil
}

// PushPlus pushes through pushplus.plus. Token and topic live in the setting
// section.
type PushPlus struct {
	session *Session
	base    string
}

func NewPushPlus(s *Session) *PushPlus {
	return &PushPlus{session: s, base: "https://www.pushplus.plus/send"}
}

func (c *PushPlus) Name() string { return "pushplus" }

func (c *PushPlus) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	setting := cfg.Section(notifier.SettingSection)
	token, err := setting.Require("push_token")
	if err != nil {
		return err
	}
	client, err := c.session.Client(cfg.Section(c.Name()))
	if err != nil {
		return err
	}
	r, err := postForm(ctx, client, c.base, url.Values{
		"token":   {token},
		"title":   {format.Title(msg.Status)},
		"content": {msg.Text},
		"topic":   {setting.String("topic")},
	})
	if err != nil {
		return err
	}
	return r.expect2xx(c.Name())
}

// PushMe pushes through push.i-i.me. Options: token, url.
type PushMe struct {
	session *Session
}

func NewPushMe(s *Session) *PushMe { return &PushMe{session: s} }

func (c *PushMe) Name() string { return "pushme" }

func (c *PushMe) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	sec := cfg.Section(c.Name())
	key, err := sec.Require("token")
	if err != nil {
		return err
	}
	client, err := c.session.Client(sec)
	if err != nil {
		return err
	}
	r, err := postForm(ctx, client, sec.StringOr("url", "https://push.i-i.me/"), url.Values{
		"push_key": {key},
		"title":    {format.Title(msg.Status)},
		"content":  {msg.Text},
		"date":     {""},
		"type":     {""},
	})
	if err != nil {
		return err
	}
	if r.Status != 200 || string(r.Body) != "success" {
		return fmt.Errorf("pushme returned %d: %s", r.Status, r.text())
	}
	return nil
}

// CQHTTP posts to a OneBot v11 endpoint. Exactly one of cqhttp_qq and
// cqhttp_group may be set.
type CQHTTP struct {
	session *Session
}

func NewCQHTTP(s *Session) *CQHTTP { return &CQHTTP{session: s} }

func (c *CQHTTP) Name() string { return "cqhttp" }

func (c *CQHTTP) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	sec := cfg.Section(c.Name())
	target, err := sec.Require("cqhttp_url")
	if err != nil {
		return err
	}
	qq, group := sec.String("cqhttp_qq"), sec.String("cqhttp_group")
	if qq != "" && group != "" {
		return errors.New("cqhttp: set only one of cqhttp_qq and cqhttp_group")
	}
	payload := map[string]any{"message": format.Plain(msg.Status, msg.Text)}
	for key, v := range map[string]string{"user_id": qq, "group_id": group} {
		if v == "" {
			continue
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("cqhttp: %s: %w", key, err)
		}
		payload[key] = id
	}
	client, err := c.session.Client(sec)
	if err != nil {
		return err
	}
	r, err := postJSON(ctx, client, target, payload)
	if err != nil {
		return err
	}
	return r.expect2xx(c.Name())
}

// WeComRobot posts to a WeCom group robot webhook. Options: url, mobile.
type WeComRobot struct {
	session *Session
}

func NewWeComRobot(s *Session) *WeComRobot { return &WeComRobot{session: s} }

func (c *WeComRobot) Name() string { return "wecomrobot" }

func (c *WeComRobot) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	sec := cfg.Section(c.Name())
	target, err := sec.Require("url")
	if err != nil {
		return err
	}
	client, err := c.session.Client(sec)
	if err != nil {
		return err
	}
	r, err := postJSON(ctx, client, target, map[string]any{
		"msgtype": "text",
		"text": map[string]any{
			"content":               format.Plain(msg.Status, msg.Text),
			"mentioned_mobile_list": []string{sec.String("mobile")},
		},
	})
	if err != nil {
		return err
	}
	if err := r.expect2xx(c.Name()); err != nil {
		return err
	}
	var rep errcodeReply
	if err := r.decode(c.Name(), &rep); err != nil {
		return err
	}
	c.session.logger(c.Name()).Info("push result", logx.String("errmsg", rep.ErrMsg))
	return rep.err(c.Name())
}

// PushDeer pushes markdown through a PushDeer server. Options: api_url, token.
type PushDeer struct {
	session *Session
}

func NewPushDeer(s *Session) *PushDeer { return &PushDeer{session: s} }

func (c *PushDeer) Name() string { return "pushdeer" }

func (c *PushDeer) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	sec := cfg.Section(c.Name())
	base, err := sec.Require("api_url")
	if err != nil {
		return err
	}
	key, err := sec.Require("token")
	if err != nil {
		return err
	}
	client, err := c.session.Client(sec)
	if err != nil {
		return err
	}
	q := url.Values{
		"pushkey": {key},
		"text":    {format.Title(msg.Status)},
		"desp":    {strings.ReplaceAll(msg.Text, "\r\n", "\r\n\r\n")},
		"type":    {"markdown"},
	}
	r, err := get(ctx, client, strings.TrimRight(base, "/")+"/message/push?"+q.Encode())
	if err != nil {
		return err
	}
	return r.expect2xx(c.Name())
}

// FeishuBot posts to a Feishu custom bot webhook. Options: webhook.
type FeishuBot struct {
	session *Session
}

func NewFeishuBot(s *Session) *FeishuBot { return &FeishuBot{session: s} }

func (c *FeishuBot) Name() string { return "feishubot" }

func (c *FeishuBot) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	sec := cfg.Section(c.Name())
	target, err := sec.Require("webhook")
	if err != nil {
		return err
	}
	client, err := c.session.Client(sec)
	if err != nil {
		return err
	}
	r, err := postJSON(ctx, client, target, map[string]any{
		"msg_type": "text",
		"content":  map[string]string{"text": format.Plain(msg.Status, msg.Text)},
	})
	if err != nil {
		return err
	}
	if err := r.expect2xx(c.Name()); err != nil {
		return err
	}
	var rep struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := r.decode(c.Name(), &rep); err != nil {
		return err
	}
	if rep.Code != 0 {
		return fmt.Errorf("feishubot: code %d: %s", rep.Code, rep.Msg)
	}
	c.session.logger(c.Name()).Info("push result", logx.String("msg", rep.Msg))
	return nil
}

// BarkIconBase hosts the icons selectable through bark.icon.
const BarkIconBase = "https://cdn.jsdelivr.net/gh/tanmx/pic@main/mihoyo/"

// Bark pushes to an iOS Bark server. Options: api_url, token, icon.
type Bark struct {
	session *Session
}

func NewBark(s *Session) *Bark { return &Bark{session: s} }

func (c *Bark) Name() string { return "bark" }

func (c *Bark) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	sec := cfg.Section(c.Name())
	base, err := sec.Require("api_url")
	if err != nil {
		return err
	}
	token, err := sec.Require("token")
	if err != nil {
		return err
	}
	client, err := c.session.Client(sec)
	if err != nil {
		return err
	}
	target := strings.TrimRight(base, "/") + "/" + url.PathEscape(token) + "/" +
		url.PathEscape(format.Title(msg.Status)) + "/" + url.PathEscape(msg.Text)
	if icon := sec.String("icon"); icon != "" {
		target += "?icon=" + url.QueryEscape(BarkIconBase+icon+".png")
	}
	r, err := get(ctx, client, target)
	if err != nil {
		return err
	}
	return r.expect2xx(c.Name())
}

// Gotify posts to a Gotify server. Options: api_url, token, priority.
type Gotify struct {
	session *Session
}

func NewGotify(s *Session) *Gotify { return &Gotify{session: s} }

func (c *Gotify) Name() string { return "gotify" }

func (c *Gotify) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	sec := cfg.Section(c.Name())
	base, err := sec.Require("api_url")
	if err != nil {
		return err
	}
	token, err := sec.Require("token")
	if err != nil {
		return err
	}
	priority, err := sec.IntOr("priority", 5)
	if err != nil {
		return err
	}
	client, err := c.session.Client(sec)
	if err != nil {
		return err
	}
	r, err := postJSON(ctx, client, strings.TrimRight(base, "/")+"/message?token="+url.QueryEscape(token), map[string]any{
		"title":    format.Title(msg.Status),
		"message":  msg.Text,
		"priority": priority,
	})
	if err != nil {
		return err
	}
	return r.expect2xx(c.Name())
}

// IFTTT triggers a Maker webhook event. Options: event, key.
type IFTTT struct {
	session *Session
	base    string
}

func NewIFTTT(s *Session) *IFTTT {
	return &IFTTT{session: s, base: "https://maker.ifttt.com"}
}

func (c *IFTTT) Name() string { return "ifttt" }

func (c *IFTTT) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	sec := cfg.Section(c.Name())
	event, err := sec.Require("event")
	if err != nil {
		return err
	}
	key, err := sec.Require("key")
	if err != nil {
		return err
	}
	client, err := c.session.Client(sec)
	if err != nil {
		return err
	}
	target := fmt.Sprintf("%s/trigger/%s/with/key/%s", c.base, url.PathEscape(event), url.PathEscape(key))
	r, err := postJSON(ctx, client, target, map[string]string{
		"value1": format.Title(msg.Status),
		"value2": msg.Text,
	})
	if err != nil {
		return err
	}
	if strings.Contains(string(r.Body), "errors") {
		return fmt.Errorf("ifttt: %s", r.text())
	}
	return r.expect2xx(c.Name())
}

// Webhook posts {title, message} JSON to webhook_url.
type Webhook struct {
	session *Session
}

func NewWebhook(s *Session) *Webhook { return &Webhook{session: s} }

func (c *Webhook) Name() string { return "webhook" }

func (c *Webhook) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	sec := cfg.Section(c.Name())
	target, err := sec.Require("webhook_url")
	if err != nil {
		return err
	}
	client, err := c.session.Client(sec)
	if err != nil {
		return err
	}
	r, err := postJSON(ctx, client, target, map[string]string{
		"title":   format.Title(msg.Status),
		"message": msg.Text,
	})
	if err != nil {
		return err
	}
	return r.expect2xx(c.Name())
}

// Qmsg pushes through Qmsg酱. Options: key.
type Qmsg struct {
	session *Session
	base    string
}

func NewQmsg(s *Session) *Qmsg {
	return &Qmsg{session: s, base: "https://qmsg.zendee.cn/send/"}
}

func (c *Qmsg) Name() string { return "qmsg" }

func (c *Qmsg) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	sec := cfg.Section(c.Name())
	key, err := sec.Require("key")
	if err != nil {
		return err
	}
	client, err := c.session.Client(sec)
	if err != nil {
		return err
	}
	r, err := postForm(ctx, client, c.base+url.PathEscape(key), url.Values{
		"msg": {format.Title(msg.Status) + "\n" + msg.Text},
	})
	if err != nil {
		return err
	}
	if err := r.expect2xx(c.Name()); err != nil {
		return err
	}
	var rep struct {
		Success bool   `json:"success"`
		Reason  string `json:"reason"`
	}
	if err := r.decode(c.Name(), &rep); err != nil {
		return err
	}
	if !rep.Success {
		return fmt.Errorf("qmsg: %s", rep.Reason)
	}
	return nil
}

const discordIcon = "https://github.com/DGP-Studio/Snap.Hutao.Docs/blob/main/docs/.vuepress/public/images/202308/hoyolab-miyoushe-Icon.png?raw=true"

// DiscordColor is the embed colour for a status.
func DiscordColor(s report.Status) int {
	switch s {
	case report.StatusSuccess:
		return 1926125
	case report.StatusAllFailed:
		return 14368575
	default:
		return 16744192
	}
}

// shanghai is the zone used for embed timestamps.
var shanghai = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}()

// Discord posts an embed to a Discord webhook. Options: webhook.
type Discord struct {
	session *Session
	now     func() time.Time
}

func NewDiscord(s *Session) *Discord { return &Discord{session: s, now: time.Now} }

func (c *Discord) Name() string { return "discord" }

func (c *Discord) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	sec := cfg.Section(c.Name())
	target, err := sec.Require("webhook")
	if err != nil {
		return err
	}
	client, err := c.session.Client(sec)
	if err != nil {
		return err
	}
	r, err := postJSON(ctx, client, target, map[string]any{
		"content": nil,
		"embeds": []map[string]any{{
			"title":       format.Title(msg.Status),
			"description": msg.Text,
			"color":       DiscordColor(msg.Status),
			"author": map[string]string{
				"name":     "MihoyoBBSTools",
				"url":      "https://github.com/Womsxd/MihoyoBBSTools",
				"icon_url": discordIcon,
			},
			"timestamp": c.now().In(shanghai).Format(time.RFC3339),
		}},
		"username":    "MihoyoBBSTools",
		"avatar_url":  discordIcon,
		"attachments": []any{},
	})
	if err != nil {
		return err
	}
	if r.Status != 204 {
		return fmt.Errorf("discord returned %d: %s", r.Status, r.text())
	}
	return nil
}
