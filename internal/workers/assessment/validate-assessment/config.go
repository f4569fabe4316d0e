// internal/workers/assessment/validate-assessment/config.go
package validateassessment

import (
	"time"

	"valyntra-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}

func ConfigFrom(wcfg config.WorkerConfig) *Config {
	cfg := DefaultConfig()
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
