package channels

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"strconv"
	"time"

	"checkinbot/internal/notifier"
	"checkinbot/internal/notifier/format"
	logx "checkinbot/pkg/logx"
)

// DingSign computes the DingTalk robot signature for a millisecond timestamp:
// urlencode(base64(HMAC-SHA256(secret, "<ts>\n<secret>"))).
func DingSign(secret string, tsMillis int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(tsMillis, 10) + "\n" + secret))
	return url.QueryEscape(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

// DingRobot posts to a DingTalk group robot. Options: webhook (including its
// access_token query), secret (optional, enables signing).
type DingRobot struct {
	session *Session
	now     func() time.Time
}

func NewDingRobot(s *Session) *DingRobot { return &DingRobot{session: s, now: time.Now} }

func (c *DingRobot) Name() string { return "dingrobot" }

func (c *DingRobot) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	sec := cfg.Section(c.Name())
	target, err := sec.Require("webhook")
	if err != nil {
		return err
	}
	if secret := sec.String("secret"); secret != "" {
		ts := c.now().UnixMilli()
		target += "&timestamp=" + strconv.FormatInt(ts, 10) + "&sign=" + DingSign(secret, ts)
	}
	client, err := c.session.Client(sec)
	if err != nil {
		return err
	}
	r, err := postJSON(ctx, client, target, map[string]any{
		"msgtype": "text",
		"text":    map[string]string{"content": format.Plain(msg.Status, msg.Text)},
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
