package rampsim

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSimulator(t *testing.T, target Target, options ...SimulatorOption) *Simulator {
	t.Helper()

	opts := append([]SimulatorOption{TickInterval(2 * time.Millisecond)}, options...)

	sim, err := NewSimulator(NewCorpusLoader(&countingSource{}), target, opts...)
	require.NoError(t, err)
	return sim
}

func TestTargetRate(t *testing.T) {
	tests := []struct {
		name                       string
		start, end, tick, duration int
		want                       int
	}{
		{"ramp start is exact", 1, 100, 0, 60, 1},
		{"mid ramp truncates", 1, 100, 30, 60, 50},
		{"ramp end approaches but stays below end", 1, 100, 59, 60, 98},
		{"constant rate", 5, 5, 7, 10, 5},
		{"ramp down start is exact", 100, 1, 0, 60, 100},
		{"ramp down floors toward end", 100, 1, 59, 60, 2},
		{"zero duration yields no work", 1, 100, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, targetRate(tt.start, tt.end, tt.tick, tt.duration))
		})
	}
}

func TestTargetRateStaysWithinBounds(t *testing.T) {
	configs := []struct{ start, end, duration int }{
		{1, 100, 60},
		{100, 1, 60},
		{0, 10, 7},
		{10, 0, 7},
		{3, 3, 30},
	}

	for _, cfg := range configs {
		lo, hi := cfg.start, cfg.end
		if lo > hi {
			lo, hi = hi, lo
		}

		for tick := 0; tick < cfg.duration; tick++ {
			r := targetRate(cfg.start, cfg.end, tick, cfg.duration)
			assert.GreaterOrEqual(t, r, lo, "start=%d end=%d t=%d", cfg.start, cfg.end, tick)
			assert.LessOrEqual(t, r, hi, "start=%d end=%d t=%d", cfg.start, cfg.end, tick)
		}

		assert.Equal(t, cfg.start, targetRate(cfg.start, cfg.end, 0, cfg.duration))
	}
}

func TestRunDryRunCountsEveryDispatch(t *testing.T) {
	sim := newTestSimulator(t, nil)

	summary, err := sim.Run(context.Background(), Request{
		RampDurationSecs: 10,
		RampStartRPS:     2,
		RampEndRPS:       2,
		DryRun:           true,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(20), summary.TotalRequests)
	assert.Equal(t, int64(20), summary.Successes)
	assert.Zero(t, summary.Failures)
	assert.Equal(t, summary.TotalRequests, summary.Successes+summary.Failures)
	assert.Equal(t, "Ramp-up complete: 20/20 successful", summary.Message)

	if summary.DurationSecs > 0 {
		assert.InDelta(t, float64(summary.TotalRequests)/summary.DurationSecs, summary.AvgRPS, 0.001)
	}
}

func TestRunDryRunPacing(t *testing.T) {
	// Real one second ticks: 2 ticks at 2 rps should take ~2s of wall
	// clock and average ~2 rps.
	sim, err := NewSimulator(NewCorpusLoader(&countingSource{}), nil)
	require.NoError(t, err)

	summary, err := sim.Run(context.Background(), Request{
		RampDurationSecs: 2,
		RampStartRPS:     2,
		RampEndRPS:       2,
		DryRun:           true,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(4), summary.TotalRequests)
	assert.GreaterOrEqual(t, summary.DurationSecs, 1.9)
	assert.InDelta(t, 2.0, summary.AvgRPS, 0.5)
}

func TestRunZeroDurationProducesEmptySummary(t *testing.T) {
	sim := newTestSimulator(t, nil)

	summary, err := sim.Run(context.Background(), Request{
		RampDurationSecs: 0,
		RampStartRPS:     2,
		RampEndRPS:       2,
		DryRun:           true,
	})
	require.NoError(t, err)

	assert.Zero(t, summary.TotalRequests)
	assert.Zero(t, summary.Successes)
	assert.Zero(t, summary.Failures)
	assert.Zero(t, summary.AvgRPS)
}

type flakyTarget struct {
	calls int64
}

func (f *flakyTarget) Invoke(context.Context, string, string) error {
	if atomic.AddInt64(&f.calls, 1)%2 == 0 {
		return assert.AnError
	}
	return nil
}

func TestRunAbsorbsDispatchFailures(t *testing.T) {
	target := &flakyTarget{}
	sim := newTestSimulator(t, target, TickInterval(time.Millisecond))

	summary, err := sim.Run(context.Background(), Request{
		RampDurationSecs: 10,
		RampStartRPS:     100,
		RampEndRPS:       100,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1000), summary.TotalRequests)
	assert.Equal(t, summary.TotalRequests, summary.Successes+summary.Failures)
	assert.Equal(t, int64(500), summary.Failures)
}

type probeTarget struct {
	inflight int64
	peak     int64
}

func (p *probeTarget) Invoke(context.Context, string, string) error {
	n := atomic.AddInt64(&p.inflight, 1)
	defer atomic.AddInt64(&p.inflight, -1)

	for {
		peak := atomic.LoadInt64(&p.peak)
		if n <= peak || atomic.CompareAndSwapInt64(&p.peak, peak, n) {
			break
		}
	}

	time.Sleep(2 * time.Millisecond)
	return nil
}

func TestRunRespectsMaxConcurrency(t *testing.T) {
	target := &probeTarget{}
	sim := newTestSimulator(t, target, MaxConcurrency(5))

	summary, err := sim.Run(context.Background(), Request{
		RampDurationSecs: 5,
		RampStartRPS:     40,
		RampEndRPS:       40,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(200), summary.TotalRequests)
	assert.LessOrEqual(t, atomic.LoadInt64(&target.peak), int64(5))
}

type stalledTarget struct{}

func (stalledTarget) Invoke(ctx context.Context, _, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRunDrainsAfterCancellation(t *testing.T) {
	sim := newTestSimulator(t, stalledTarget{}, TickInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	summary, err := sim.Run(ctx, Request{
		RampDurationSecs: 600,
		RampStartRPS:     5,
		RampEndRPS:       5,
	})
	require.NoError(t, err)

	// Every launched dispatch completed as a failure; none were
	// abandoned without being counted.
	assert.Equal(t, summary.TotalRequests, summary.Failures)
	assert.Zero(t, summary.Successes)
	assert.Less(t, summary.TotalRequests, int64(3000))
}

func TestRunRequiresTargetUnlessDryRun(t *testing.T) {
	sim := newTestSimulator(t, nil)

	_, err := sim.Run(context.Background(), Request{RampDurationSecs: 1, RampStartRPS: 1, RampEndRPS: 1})
	assert.Error(t, err)
}

func TestRunRejectsNegativeRequestValues(t *testing.T) {
	sim := newTestSimulator(t, nil)

	for _, req := range []Request{
		{RampDurationSecs: -1, DryRun: true},
		{RampDurationSecs: 1, RampStartRPS: -1, DryRun: true},
		{RampDurationSecs: 1, RampEndRPS: -1, DryRun: true},
	} {
		_, err := sim.Run(context.Background(), req)
		assert.Error(t, err)
	}
}

func TestRequestWithDefaults(t *testing.T) {
	assert.Equal(t, Request{
		RampDurationSecs: 60,
		RampStartRPS:     1,
		RampEndRPS:       100,
	}, Request{}.WithDefaults())

	partial := Request{RampDurationSecs: 30, DryRun: true}.WithDefaults()
	assert.Equal(t, 30, partial.RampDurationSecs)
	assert.Equal(t, 1, partial.RampStartRPS)
	assert.Equal(t, 100, partial.RampEndRPS)
	assert.True(t, partial.DryRun)
}

func TestNewSimulatorValidation(t *testing.T) {
	loader := NewCorpusLoader(&countingSource{})

	_, err := NewSimulator(nil, nil)
	assert.Error(t, err)

	_, err = NewSimulator(loader, nil, MaxConcurrency(0))
	assert.Error(t, err)

	_, err = NewSimulator(loader, nil, NumSessions(-1))
	assert.Error(t, err)

	_, err = NewSimulator(loader, nil, TickInterval(0))
	assert.Error(t, err)
}
