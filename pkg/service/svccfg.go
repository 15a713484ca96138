package service

import (
	"fmt"
	"strings"
	"time"

	"ghack/pkg/io"
	"ghack/pkg/util"
)

const (
	kDefaultShutdownWaitTime = 10 * time.Second
)

var (
	DefaultConfig = Config{
		ShutdownWaitTime: util.Duration{Duration: kDefaultShutdownWaitTime},
		IO:               io.DefaultInboundConfig,
	}
)

type Config struct {
	Listener         []io.ListenerConfig
	ShutdownWaitTime util.Duration
	IO               io.InboundConfig
}

func (cfg *Config) SetDefaultIfNotDefined() {
	for i := range cfg.Listener {
		cfg.Listener[i].SetDefaultIfNotDefined()
	}
	if cfg.ShutdownWaitTime.Duration == 0 {
		cfg.ShutdownWaitTime.Duration = kDefaultShutdownWaitTime
	}
	cfg.IO.SetDefaultIfNotDefined()
}

func (cfg *Config) SetListeners(values []string) {
	cfg.Listener = make([]io.ListenerConfig, len(values))
	for i, str := range values {
		str = strings.ToLower(str)
		lncfg := &cfg.Listener[i]
		if !strings.Contains(str, ":") {
			lncfg.Addr = ":" + str
		} else {
			lncfg.Addr = str
		}
	}
}

func (cfg *Config) Validate() (err error) {
	if len(cfg.Listener) == 0 {
		err = fmt.Errorf("no listener defined")
	}
	return
}
