// internal/workers/assessment/match-providers/config.go
package matchproviders

import (
	"time"

	"valyntra-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func ConfigFrom(wcfg config.WorkerConfig) *Config {
	return &Config{Timeout: config.GetDuration(wcfg.Timeout)}
}
