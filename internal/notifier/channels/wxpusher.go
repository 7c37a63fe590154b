package channels

import (
	"context"
	"fmt"
	"strconv"

	"checkinbot/internal/notifier"
	"checkinbot/internal/notifier/format"
	logx "checkinbot/pkg/logx"
)

// wxpusherOK is the API's success code, both overall and per recipient.
const wxpusherOK = 1000

// wxpusherReply is the send API reply. Data lists one acknowledgement per
// uid or topic.
type wxpusherReply struct {
	Code    int    `json:"code"`
	Msg     string `json:"msg"`
	Success bool   `json:"success"`
	Data    []struct {
		UID       string `json:"uid"`
		TopicID   any    `json:"topicId"`
		MessageID int64  `json:"messageId"`
		Code      int    `json:"code"`
		Status    string `json:"status"`
	} `json:"data"`
}

// Outcome folds the acknowledgement list into one delivery result: the call
// succeeds when the service returned an acknowledgement list, and the
// per-recipient statuses are returned for logging.
func (r wxpusherReply) Outcome() ([]string, error) {
	if r.Data == nil {
		return nil, fmt.Errorf("wxpusher: code %d: %s", r.Code, r.Msg)
	}
	statuses := make([]string, 0, len(r.Data))
	for _, d := range r.Data {
		s := d.Status
		if s == "" {
			s = "未知状态"
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

// WxPusher pushes to WxPusher uids and topics. Options: app_token, uids,
// topic_ids (both comma separated).
type WxPusher struct {
	session *Session
	base    string
}

func NewWxPusher(s *Session) *WxPusher {
	return &WxPusher{session: s, base: "https://wxpusher.zjiecode.com/api/send/message"}
}

func (c *WxPusher) Name() string { return "wxpusher" }

func (c *WxPusher) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	sec := cfg.Section(c.Name())
	token, err := sec.Require("app_token")
	if err != nil {
		return err
	}
	uids := sec.List("uids")
	var topics []int64
	for _, t := range sec.List("topic_ids") {
		// non-numeric topic ids are ignored
		if id, err := strconv.ParseInt(t, 10, 64); err == nil {
			topics = append(topics, id)
		}
	}
	if len(uids) == 0 && len(topics) == 0 {
		return fmt.Errorf("%w: wxpusher.uids or wxpusher.topic_ids", notifier.ErrMissingOption)
	}
	client, err := c.session.Client(sec)
	if err != nil {
		return err
	}
	r, err := postJSON(ctx, client, c.base, map[string]any{
		"appToken":    token,
		"content":     format.Plain(msg.Status, msg.Text),
		"contentType": 1,
		"uids":        nonNil(uids),
		"topicIds":    nonNil(topics),
	})
	if err != nil {
		return err
	}
	if err := r.expect2xx(c.Name()); err != nil {
		return err
	}
	var rep wxpusherReply
	if err := r.decode(c.Name(), &rep); err != nil {
		return err
	}
	statuses, err := rep.Outcome()
	if err != nil {
		return err
	}
	c.session.logger(c.Name()).Info("wxpusher delivery", logx.Strings("status", statuses))
	return nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
