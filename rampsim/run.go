package rampsim

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Request configures one simulation run. The zero value of a numeric
// field means "use the deployment default" at the Lambda/CLI boundary;
// see WithDefaults. The library itself takes the values literally, so a
// validated zero duration yields a run with zero dispatches.
type Request struct {
	RampDurationSecs int  `json:"ramp_duration_secs,omitempty"`
	RampStartRPS     int  `json:"ramp_start_rps,omitempty"`
	RampEndRPS       int  `json:"ramp_end_rps,omitempty"`
	DryRun           bool `json:"dry_run,omitempty"`
}

// Default request values for deployments that omit fields.
const (
	DefaultRampDurationSecs = 60
	DefaultRampStartRPS     = 1
	DefaultRampEndRPS       = 100
)

// WithDefaults substitutes the deployment defaults for zero fields.
func (r Request) WithDefaults() Request {
	if r.RampDurationSecs == 0 {
		r.RampDurationSecs = DefaultRampDurationSecs
	}
	if r.RampStartRPS == 0 {
		r.RampStartRPS = DefaultRampStartRPS
	}
	if r.RampEndRPS == 0 {
		r.RampEndRPS = DefaultRampEndRPS
	}
	return r
}

func (r Request) validate() error {
	if r.RampDurationSecs < 0 {
		return fmt.Errorf("ramp_duration_secs must be non-negative, got %d", r.RampDurationSecs)
	}
	if r.RampStartRPS < 0 {
		return fmt.Errorf("ramp_start_rps must be non-negative, got %d", r.RampStartRPS)
	}
	if r.RampEndRPS < 0 {
		return fmt.Errorf("ramp_end_rps must be non-negative, got %d", r.RampEndRPS)
	}
	return nil
}

// Summary is the outcome of one run. DurationSecs is observed
// wall-clock time, not the configured ramp duration; it includes the
// drain phase. Latency percentiles cover successful invokes only.
type Summary struct {
	TotalRequests int64   `json:"total_requests"`
	Successes     int64   `json:"successes"`
	Failures      int64   `json:"failures"`
	DurationSecs  float64 `json:"duration_secs"`
	AvgRPS        float64 `json:"avg_rps"`
	P50LatencyMs  float64 `json:"p50_latency_ms"`
	P95LatencyMs  float64 `json:"p95_latency_ms"`
	P99LatencyMs  float64 `json:"p99_latency_ms"`
	Message       string  `json:"message"`
}

// Simulator owns the collaborators a run needs: a memoizing corpus
// loader and the invocation target. One Simulator can serve many runs;
// each run gets its own session pool and counters.
type Simulator struct {
	loader         *CorpusLoader
	target         Target
	maxConcurrency int64
	numSessions    int
	tickInterval   time.Duration
}

func NewSimulator(loader *CorpusLoader, target Target, options ...SimulatorOption) (*Simulator, error) {
	cfg := simulatorConfig{
		maxConcurrency: 64,
		numSessions:    20,
		tickInterval:   time.Second,
	}

	for _, op := range options {
		op(&cfg)
	}

	if loader == nil {
		return nil, fmt.Errorf("corpus loader is required")
	}
	if cfg.maxConcurrency <= 0 {
		return nil, fmt.Errorf("max concurrency must be positive, got %d", cfg.maxConcurrency)
	}
	if cfg.numSessions <= 0 {
		return nil, fmt.Errorf("session pool size must be positive, got %d", cfg.numSessions)
	}
	if cfg.tickInterval <= 0 {
		return nil, fmt.Errorf("tick interval must be positive, got %s", cfg.tickInterval)
	}

	return &Simulator{
		loader:         loader,
		target:         target,
		maxConcurrency: cfg.maxConcurrency,
		numSessions:    cfg.numSessions,
		tickInterval:   cfg.tickInterval,
	}, nil
}

// targetRate returns the scheduled dispatch count for ramp second t:
// linear interpolation between start and end with floor truncation, so
// targetRate at t=0 is exactly start. Holds for ramp-downs too.
func targetRate(start, end, t, durationSecs int) int {
	if durationSecs <= 0 {
		return 0
	}

	num := (end - start) * t
	step := num / durationSecs
	if num%durationSecs != 0 && num < 0 {
		step--
	}

	return start + step
}

// Run executes one ramp. Only setup failures (bad request, corpus
// unavailable, missing target) return an error; dispatch failures are
// absorbed into the summary's failure count. Canceling ctx stops the
// scheduler at the next tick and fails in-flight dispatches through
// their context; the run still drains and returns a summary.
func (s *Simulator) Run(ctx context.Context, req Request) (Summary, error) {
	if err := req.validate(); err != nil {
		return Summary{}, err
	}

	target := s.target
	if req.DryRun {
		target = dryRunTarget{}
	}
	if target == nil {
		return Summary{}, fmt.Errorf("no invocation target configured and dry_run not set")
	}

	corpus, err := s.loader.Load(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load seed questions: %w", err)
	}

	// Fresh per run: session reuse across runs would leak the previous
	// run's conversation state into the target.
	pool, err := NewSessionPool(s.numSessions)
	if err != nil {
		return Summary{}, err
	}

	selector := NewSelector(corpus)
	gate := NewGate(s.maxConcurrency)
	counters := NewCounters()

	Logger.Infow(
		"starting ramp",
		"duration_secs", req.RampDurationSecs,
		"start_rps", req.RampStartRPS,
		"end_rps", req.RampEndRPS,
		"max_concurrency", s.maxConcurrency,
		"num_sessions", pool.Size(),
		"dry_run", req.DryRun,
	)

	start := time.Now()

	var wg sync.WaitGroup
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	requestIndex := 0

ramping:
	for elapsed := 0; elapsed < req.RampDurationSecs; elapsed++ {
		rate := targetRate(req.RampStartRPS, req.RampEndRPS, elapsed, req.RampDurationSecs)

		total, successes, failures := counters.Snapshot()
		Logger.Infow(
			"ramp tick",
			"elapsed_secs", elapsed,
			"target_rps", rate,
			"total", total,
			"successes", successes,
			"failures", failures,
		)

		// Launch this second's dispatches and move on; they join in the
		// drain phase. Waiting per tick would let a slow target deform
		// the ramp.
		for i := 0; i < rate; i++ {
			idx := requestIndex
			requestIndex++

			wg.Add(1)
			go func() {
				defer wg.Done()
				s.dispatch(ctx, target, gate, selector, pool, counters, idx, elapsed, req.RampDurationSecs)
			}()
		}

		select {
		case <-ctx.Done():
			Logger.Warnw(
				"ramp interrupted, draining in-flight requests",
				"elapsed_secs", elapsed,
				"error", ctx.Err(),
			)
			break ramping
		case <-ticker.C:
		}
	}

	// Drain: no new work, wait for every launched dispatch to finish.
	wg.Wait()

	summary := counters.Summary(time.Since(start))

	Logger.Infow(
		"ramp-up complete",
		"total", summary.TotalRequests,
		"successes", summary.Successes,
		"failures", summary.Failures,
		"duration_secs", summary.DurationSecs,
		"avg_rps", summary.AvgRPS,
	)

	return summary, nil
}

// dispatch performs one unit of work: gate slot, question + session
// selection, invoke, classify. Failures count and log but never retry
// and never abort the run.
func (s *Simulator) dispatch(
	ctx context.Context,
	target Target,
	gate *Gate,
	selector *Selector,
	pool *SessionPool,
	counters *Counters,
	requestIndex, elapsedSecs, durationSecs int,
) {
	if err := gate.Acquire(ctx); err != nil {
		counters.RecordFailure()
		Logger.Warnw(
			"request abandoned before invoke",
			"request_index", requestIndex,
			"error", err,
		)
		return
	}
	defer gate.Release()

	question := selector.Select(elapsedSecs, durationSecs, requestIndex)
	sessionID := pool.Assign(requestIndex)

	begin := time.Now()
	err := target.Invoke(ctx, question, sessionID)
	elapsed := time.Since(begin)

	if err != nil {
		counters.RecordFailure()
		Logger.Warnw(
			"request failed",
			"request_index", requestIndex,
			"session_id", sessionID,
			"error", err,
		)
		return
	}

	counters.RecordSuccess(elapsed)
}
