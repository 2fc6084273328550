package rampsim

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Gate bounds the number of simultaneously outstanding invocations. The
// target enforces its own throughput ceiling and answers overload with
// elevated error rates, so the gate shapes throughput rather than
// guarding correctness.
type Gate struct {
	sem *semaphore.Weighted
}

func NewGate(capacity int64) *Gate {
	return &Gate{sem: semaphore.NewWeighted(capacity)}
}

// Acquire blocks until a slot is free or ctx is canceled. Waiting at
// capacity is back-pressure, not an error.
func (g *Gate) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

func (g *Gate) Release() {
	g.sem.Release(1)
}
