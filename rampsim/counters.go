package rampsim

import (
	"fmt"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Counters aggregates dispatch outcomes for one run. Every completed
// dispatch records exactly once, under one mutex, so
// total == successes + failures holds at every observation point. A
// Counters value is owned by its run and passed by pointer into
// dispatches; nothing is process-global, so concurrent runs in the same
// process do not interfere.
type Counters struct {
	mu        sync.Mutex
	total     int64
	successes int64
	failures  int64
	latency   *hdrhistogram.Histogram
}

func NewCounters() *Counters {
	return &Counters{
		// 1us to 10min, 3 significant figures
		latency: hdrhistogram.New(1, int64(10*time.Minute/time.Microsecond), 3),
	}
}

// RecordSuccess counts one successful dispatch and its invoke latency.
func (c *Counters) RecordSuccess(elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	c.successes++
	_ = c.latency.RecordValue(elapsed.Microseconds())
}

// RecordFailure counts one failed dispatch. Failure latency is not
// recorded: timeouts and throttles would dominate the histogram and
// hide the service's real response shape.
func (c *Counters) RecordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	c.failures++
}

// Snapshot returns a consistent view of the three counts.
func (c *Counters) Snapshot() (total, successes, failures int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.total, c.successes, c.failures
}

// Summary builds the run result from the final counts and the observed
// wall-clock run time. Call only after every dispatch has joined.
func (c *Counters) Summary(wall time.Duration) Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	durationSecs := wall.Seconds()

	var avgRPS float64
	if durationSecs > 0 {
		avgRPS = float64(c.total) / durationSecs
	}

	return Summary{
		TotalRequests: c.total,
		Successes:     c.successes,
		Failures:      c.failures,
		DurationSecs:  durationSecs,
		AvgRPS:        avgRPS,
		P50LatencyMs:  float64(c.latency.ValueAtQuantile(50)) / 1000.0,
		P95LatencyMs:  float64(c.latency.ValueAtQuantile(95)) / 1000.0,
		P99LatencyMs:  float64(c.latency.ValueAtQuantile(99)) / 1000.0,
		Message:       fmt.Sprintf("Ramp-up complete: %d/%d successful", c.successes, c.total),
	}
}
