package rampsim

import (
	"time"
)

type simulatorConfig struct {
	maxConcurrency int64
	numSessions    int
	tickInterval   time.Duration
}

type SimulatorOption func(*simulatorConfig)

// MaxConcurrency caps simultaneously outstanding invocations. The
// target throttles past its own ceiling, so this should sit at or below
// that ceiling.
func MaxConcurrency(n int) SimulatorOption {
	return func(cfg *simulatorConfig) {
		cfg.maxConcurrency = int64(n)
	}
}

// NumSessions sets the session pool size.
func NumSessions(n int) SimulatorOption {
	return func(cfg *simulatorConfig) {
		cfg.numSessions = n
	}
}

// TickInterval overrides the one second scheduler tick. Only tests
// should shorten this; the ramp formula assumes one tick per ramp
// second.
func TickInterval(d time.Duration) SimulatorOption {
	return func(cfg *simulatorConfig) {
		cfg.tickInterval = d
	}
}
