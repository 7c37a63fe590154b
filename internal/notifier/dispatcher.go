package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"checkinbot/internal/notifier/format"
	"checkinbot/internal/report"
	logx "checkinbot/pkg/logx"
)

// ConfigOutdatedNotice prefixes every message while account configs need
// migrating.
const ConfigOutdatedNotice = "如果您多次收到此消息开头的推送，证明您运行的环境无法自动更新config，请手动更新一下，谢谢"

// State is where a dispatch pass ended.
type State int

const (
	StateConfigMissing State = iota
	StateConfigInvalid
	StateDisabled
	StateSuppressed
	StateDispatched
)

func (s State) String() string {
	switch s {
	case StateConfigMissing:
		return "config_missing"
	case StateConfigInvalid:
		return "config_invalid"
	case StateDisabled:
		return "disabled"
	case StateSuppressed:
		return "suppressed"
	case StateDispatched:
		return "dispatched"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ChannelResult is the outcome of one configured channel name.
type ChannelResult struct {
	Name       string
	Unresolved bool
	Err        error
	Took       time.Duration
}

// Result summarises a dispatch pass.
type Result struct {
	State    State
	Err      error
	Channels []ChannelResult
}

// Code is the dispatch return code: 1 when the push config could not be
// loaded or any channel failed, 0 otherwise.
func (r Result) Code() int {
	if r.State == StateConfigInvalid {
		return 1
	}
	for _, c := range r.Channels {
		if c.Err != nil {
			return 1
		}
	}
	return 0
}

// Options configures a Dispatcher.
type Options struct {
	// Path is the push config file, read fresh on every Dispatch.
	Path string
	// ConfigOutdated forces the advisory notice and title on every message.
	ConfigOutdated bool
}

// Dispatcher fans a report out to the configured channels, one at a time.
type Dispatcher struct {
	opts Options
	reg  *Registry
	log  logx.Logger
}

func NewDispatcher(opts Options, reg *Registry, log logx.Logger) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	if reg == nil {
		reg = NewRegistry()
	}
	return &Dispatcher{opts: opts, reg: reg, log: log.With(logx.String("comp", "dispatch"))}
}

// WithPath returns a copy of d reading another push config file.
func (d *Dispatcher) WithPath(path string) *Dispatcher {
	cp := *d
	cp.opts.Path = path
	return &cp
}

func (d *Dispatcher) Path() string { return d.opts.Path }

// Dispatch sends msg with status to every channel listed in the push config.
func (d *Dispatcher) Dispatch(ctx context.Context, status report.Status, msg string) Result {
	cfg, err := LoadConfig(d.opts.Path)
	if err != nil {
		if errors.Is(err, ErrConfigMissing) {
			d.log.Debug("push config not found, skipping", logx.String("path", d.opts.Path))
			return Result{State: StateConfigMissing}
		}
		d.log.Error("push config load failed", logx.String("path", d.opts.Path), logx.Err(err))
		return Result{State: StateConfigInvalid, Err: err}
	}
	return d.DispatchConfig(ctx, cfg, status, msg)
}

// DispatchConfig runs the suppression rules and channel loop against an
// already loaded config.
func (d *Dispatcher) DispatchConfig(ctx context.Context, cfg *Config, status report.Status, msg string) Result {
	setting := cfg.Section(SettingSection)

	enabled, err := setting.BoolOr("enable", false)
	if err != nil {
		d.log.Error("invalid setting", logx.Err(err))
		return Result{State: StateConfigInvalid, Err: err}
	}
	if !enabled {
		d.log.Debug("push disabled")
		return Result{State: StateDisabled}
	}
	errorOnly, err := setting.BoolOr("error_push_only", false)
	if err != nil {
		d.log.Error("invalid setting", logx.Err(err))
		return Result{State: StateConfigInvalid, Err: err}
	}
	if errorOnly && status.OK() {
		d.log.Info("routine success push suppressed (error_push_only)")
		return Result{State: StateSuppressed}
	}

	text := Redact(msg, setting.List("push_block_keys"))
	if d.opts.ConfigOutdated {
		prefix := ConfigOutdatedNotice + "\r\n"
		if format.HasTitle(status) {
			prefix += format.Title(status) + "\r\n"
		}
		text = prefix + text
		status = report.StatusConfigOutdated
	}
	out := Message{Status: status, Text: text}

	res := Result{State: StateDispatched}
	for _, name := range setting.List("push_server") {
		name = strings.ToLower(name)
		ch, ok := d.reg.Resolve(name)
		if !ok {
			d.log.Warn("unknown push channel, skipped", logx.String("channel", name))
			res.Channels = append(res.Channels, ChannelResult{Name: name, Unresolved: true})
			continue
		}
		cr := d.send(ctx, ch, cfg, out)
		res.Channels = append(res.Channels, cr)
	}
	return res
}

func (d *Dispatcher) send(ctx context.Context, ch Channel, cfg *Config, msg Message) (cr ChannelResult) {
	name := ch.Name()
	log := d.log.With(logx.String("channel", name))
	start := time.Now()
	cr.Name = name

	defer func() {
		if r := recover(); r != nil {
			cr.Err = fmt.Errorf("panic in %s: %v", name, r)
		}
		cr.Took = time.Since(start)
		if cr.Err != nil {
			log.Error("push failed", logx.Err(cr.Err), logx.Duration("took", cr.Took))
			return
		}
		log.Info("push sent", logx.Duration("took", cr.Took))
	}()

	log.Debug("push start", logx.Int("status", int(msg.Status)))
	cr.Err = ch.Send(ctx, cfg, msg)
	return cr
}
