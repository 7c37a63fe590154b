package main

import (
	"os"
	"strings"
	"sync"

	"checkinbot/internal/config"
	"checkinbot/internal/notifier"
	"checkinbot/internal/notifier/channels"
	logx "checkinbot/pkg/logx"
)

type commandContext struct {
	configFlag *string
	levelFlag  *string

	configOnce sync.Once
	manager    *config.Manager
	config     *config.Config
	configErr  error

	logSvc *logx.Service
	log    logx.Logger

	registryOnce sync.Once
	registry     *notifier.Registry
}

func newCommandContext(configFlag, levelFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, levelFlag: levelFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := "checkin.yaml"
		if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
			path = strings.TrimSpace(*c.configFlag)
		}
		boot := logx.NewConsole("info")
		mgr := config.NewManager(path)
		mgr.SetLogger(boot)
		mgr.SetEnv(os.Getenv)
		cfg, err := mgr.LoadOrDefault()
		if err != nil {
			c.configErr = err
			return
		}
		lc := cfg.LogConfig()
		if c.levelFlag != nil && strings.TrimSpace(*c.levelFlag) != "" {
			lc.Level = strings.TrimSpace(*c.levelFlag)
		}
		c.logSvc, c.log = logx.New(lc)
		mgr.SetLogger(c.log.With(logx.String("comp", "config")))
		c.manager = mgr
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() logx.Logger {
	if c.log.IsZero() {
		return logx.NewConsole("info")
	}
	return c.log
}

// channels returns the registry of built-in push channels.
func (c *commandContext) channels() *notifier.Registry {
	c.registryOnce.Do(func() {
		c.registry = channels.Registry(channels.NewSession(0, c.logger()))
	})
	return c.registry
}

func (c *commandContext) dispatcher(cfg *config.Config, outdated bool) *notifier.Dispatcher {
	return notifier.NewDispatcher(notifier.Options{
		Path:           cfg.PushPath(),
		ConfigOutdated: outdated,
	}, c.channels(), c.logger())
}

func (c *commandContext) close() {
	if c.logSvc != nil {
		_ = c.logSvc.Close()
	}
}
