package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"checkinbot/internal/notifier"
	logx "checkinbot/pkg/logx"
)

const (
	userAgent    = "checkinbot/1.0"
	maxReplyBody = 64 << 10
)

// Session is the shared HTTP state handed to every adapter.
type Session struct {
	client *http.Client
	log    logx.Logger
}

// NewSession builds a Session. A zero timeout leaves requests bounded only by
// their context.
func NewSession(timeout time.Duration, log logx.Logger) *Session {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Session{client: &http.Client{Timeout: timeout}, log: log}
}

// NewSessionWithClient wraps an existing client (tests).
func NewSessionWithClient(c *http.Client, log logx.Logger) *Session {
	if c == nil {
		c = http.DefaultClient
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Session{client: c, log: log}
}

// Client returns the shared client, or a dedicated one when sec sets
// http_proxy.
func (s *Session) Client(sec notifier.Section) (*http.Client, error) {
	proxy := sec.String("http_proxy")
	if proxy == "" {
		return s.client, nil
	}
	if !strings.Contains(proxy, "://") {
		proxy = "http://" + proxy
	}
	u, err := url.Parse(proxy)
	if err != nil {
		return nil, fmt.Errorf("%s.http_proxy: %w", sec.Name(), err)
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.Proxy = http.ProxyURL(u)
	return &http.Client{Timeout: s.client.Timeout, Transport: tr}, nil
}

func (s *Session) logger(channel string) logx.Logger {
	return s.log.With(logx.String("channel", channel))
}

// reply is a fully read HTTP response.
type reply struct {
	Status int
	Body   []byte
}

func (r reply) text() string { return strings.TrimSpace(string(r.Body)) }

// expect2xx turns a non-2xx reply into an error carrying a body snippet.
func (r reply) expect2xx(channel string) error {
	if r.Status >= 200 && r.Status < 300 {
		return nil
	}
	body := r.text()
	if len(body) > 512 {
		body = body[:512]
	}
	return fmt.Errorf("%s returned %d: %s", channel, r.Status, body)
}

// decode unmarshals a JSON reply body into v.
func (r reply) decode(channel string, v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%s: decode reply: %w", channel, err)
	}
	return nil
}

func do(ctx context.Context, c *http.Client, method, target, contentType string, body io.Reader) (reply, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return reply{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.Do(req)
	if err != nil {
		return reply{}, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBody))
	if err != nil {
		return reply{Status: resp.StatusCode}, fmt.Errorf("read reply: %w", err)
	}
	return reply{Status: resp.StatusCode, Body: b}, nil
}

func postJSON(ctx context.Context, c *http.Client, target string, v any) (reply, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return reply{}, fmt.Errorf("encode payload: %w", err)
	}
	return do(ctx, c, http.MethodPost, target, "application/json; charset=utf-8", bytes.NewReader(b))
}

func postForm(ctx context.Context, c *http.Client, target string, form url.Values) (reply, error) {
	return do(ctx, c, http.MethodPost, target, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

func get(ctx context.Context, c *http.Client, target string) (reply, error) {
	return do(ctx, c, http.MethodGet, target, "", nil)
}
