package channels

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"checkinbot/internal/notifier"
	"checkinbot/internal/notifier/format"
)

// WeCom sends an application message through WeCom. Every send exchanges the
// corp credentials for a fresh access token.
//
// Options: wechat_id, secret, agentid, touser (default @all).
type WeCom struct {
	session *Session
	base    string
}

func NewWeCom(s *Session) *WeCom {
	return &WeCom{session: s, base: "https://qyapi.weixin.qq.com/cgi-bin"}
}

func (c *WeCom) Name() string { return "wecom" }

func (c *WeCom) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	sec := cfg.Section(c.Name())
	corpID, err := sec.Require("wechat_id")
	if err != nil {
		return err
	}
	secret, err := sec.Require("secret")
	if err != nil {
		return err
	}
	agentID, err := sec.Require("agentid")
	if err != nil {
		return err
	}
	client, err := c.session.Client(sec)
	if err != nil {
		return err
	}

	token, err := c.accessToken(ctx, client, corpID, secret)
	if err != nil {
		return err
	}

	r, err := postJSON(ctx, client, c.base+"/message/send?access_token="+url.QueryEscape(token), map[string]any{
		"agentid": agentID,
		"msgtype": "text",
		"touser":  sec.StringOr("touser", "@all"),
		"text":    map[string]string{"content": format.Plain(msg.Status, msg.Text)},
		"safe":    0,
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
	return rep.err(c.Name())
}

func (c *WeCom) accessToken(ctx context.Context, client *http.Client, corpID, secret string) (string, error) {
	q := url.Values{"corpid": {corpID}, "corpsecret": {secret}}
	r, err := do(ctx, client, http.MethodPost, c.base+"/gettoken?"+q.Encode(), "", nil)
	if err != nil {
		return "", err
	}
	if err := r.expect2xx(c.Name()); err != nil {
		return "", err
	}
	var rep struct {
		errcodeReply
		AccessToken string `json:"access_token"`
	}
	if err := r.decode(c.Name(), &rep); err != nil {
		return "", err
	}
	if err := rep.err(c.Name()); err != nil {
		return "", err
	}
	if rep.AccessToken == "" {
		return "", errors.New("wecom: empty access_token")
	}
	return rep.AccessToken, nil
}
