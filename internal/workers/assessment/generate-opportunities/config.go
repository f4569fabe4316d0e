// internal/workers/assessment/generate-opportunities/config.go
package generateopportunities

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
