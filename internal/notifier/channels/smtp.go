package channels

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"checkinbot/internal/notifier"
	"checkinbot/internal/notifier/format"
	logx "checkinbot/pkg/logx"
)

// BackgroundAPI returns a random wallpaper as {"pic": ["<url>"]}.
const BackgroundAPI = "https://api.iw233.cn/api.php?sort=random&type=json"

// envelope is one outgoing mail and the server it goes through.
type envelope struct {
	Host        string
	Port        int
	ImplicitTLS bool
	Username    string
	Password    string
	From        string
	To          []string
	Subject     string
	HTML        string
	Date        time.Time
}

// SMTP mails an HTML report, optionally decorated with a random background
// image.
//
// Options: mailhost, port, ssl_enable, username, password, fromaddr, toaddr
// (comma separated), subject, background (default true).
type SMTP struct {
	session       *Session
	backgroundAPI string
	now           func() time.Time
	deliver       func(ctx context.Context, env envelope) error
}

func NewSMTP(s *Session) *SMTP {
	return &SMTP{session: s, backgroundAPI: BackgroundAPI, now: time.Now, deliver: deliverMail}
}

func (c *SMTP) Name() string { return "smtp" }

func (c *SMTP) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	sec := cfg.Section(c.Name())
	host, err := sec.Require("mailhost")
	if err != nil {
		return err
	}
	from, err := sec.Require("fromaddr")
	if err != nil {
		return err
	}
	to := sec.List("toaddr")
	if len(to) == 0 {
		return fmt.Errorf("%w: smtp.toaddr", notifier.ErrMissingOption)
	}
	implicitTLS, err := sec.BoolOr("ssl_enable", false)
	if err != nil {
		return err
	}
	defPort := 25
	if implicitTLS {
		defPort = 465
	}
	port, err := sec.IntOr("port", defPort)
	if err != nil {
		return err
	}
	withBackground, err := sec.BoolOr("background", true)
	if err != nil {
		return err
	}

	var f format.Formatter
	if withBackground {
		f.Background = c.fetchBackground(ctx, sec)
	}
	body, err := f.Format(msg.Status, msg.Text, format.KindEmailHTML)
	if err != nil {
		return fmt.Errorf("smtp: render: %w", err)
	}

	env := envelope{
		Host:        host,
		Port:        port,
		ImplicitTLS: implicitTLS,
		Username:    sec.String("username"),
		Password:    sec.String("password"),
		From:        from,
		To:          to,
		Subject:     sec.StringOr("subject", format.Title(msg.Status)),
		HTML:        body.Single(),
		Date:        c.now(),
	}
	if err := c.deliver(ctx, env); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

// fetchBackground is best-effort: any failure yields "" and the mail goes out
// without decoration.
func (c *SMTP) fetchBackground(ctx context.Context, sec notifier.Section) string {
	log := c.session.logger(c.Name())
	client, err := c.session.Client(sec)
	if err != nil {
		log.Warn("background image skipped", logx.Err(err))
		return ""
	}
	r, err := get(ctx, client, c.backgroundAPI)
	if err == nil {
		err = r.expect2xx("background api")
	}
	var rep struct {
		Pic []string `json:"pic"`
	}
	if err == nil {
		err = r.decode("background api", &rep)
	}
	if err == nil && (len(rep.Pic) == 0 || strings.TrimSpace(rep.Pic[0]) == "") {
		err = errors.New("background api: empty pic list")
	}
	if err != nil {
		log.Warn("background image fetch failed", logx.Err(err))
		return ""
	}
	return strings.TrimSpace(rep.Pic[0])
}

// newMessage builds the MIME message: HTML body, UTF-8 headers, the subject
// doubling as the sender display name.
func newMessage(env envelope) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(env.Subject, env.From); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := m.To(env.To...); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	m.Subject(env.Subject)
	m.SetDateWithValue(env.Date)
	m.SetBodyString(mail.TypeTextHTML, env.HTML)
	return m, nil
}

// deliverMail sends env over implicit TLS, or plain SMTP upgraded with
// STARTTLS when the server offers it.
func deliverMail(ctx context.Context, env envelope) error {
	m, err := newMessage(env)
	if err != nil {
		return err
	}
	opts := []mail.Option{mail.WithPort(env.Port)}
	if env.ImplicitTLS {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if env.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(env.Username),
			mail.WithPassword(env.Password),
		)
	}
	client, err := mail.NewClient(env.Host, opts...)
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send via %s:%d: %w", env.Host, env.Port, err)
	}
	return nil
}
