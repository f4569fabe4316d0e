// internal/workers/assessment/run-assessment-pipeline/config.go
package runassessmentpipeline

import (
	"fmt"
	"time"

	"valyntra-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{Timeout: 30 * time.Second}
}

// ConfigFrom takes the worker timeout; the job deadline has to cover the lock
// wait plus the commit. A redis lease is held for the whole run and then
// through each of the sinkCount sinks, so it must outlast both.
func ConfigFrom(wcfg config.WorkerConfig, pcfg config.PipelineConfig, sinkCount int) (*Config, error) {
	cfg := DefaultConfig()
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	if lockWait := config.GetDuration(pcfg.LockWait); lockWait >= cfg.Timeout {
		return nil, fmt.Errorf("%s timeout (%s) must exceed pipeline.lock_wait (%s)", TaskType, cfg.Timeout, lockWait)
	}
	if pcfg.LockBackend == "redis" {
		held := cfg.Timeout + time.Duration(sinkCount)*config.GetDuration(pcfg.SinkTimeout)
		if ttl := config.GetDuration(pcfg.LockTTL); ttl < held {
			return nil, fmt.Errorf("pipeline.lock_ttl (%s) must cover the %s timeout plus %d sink timeouts (%s)", ttl, TaskType, sinkCount, held)
		}
	}
	return cfg, nil
}
