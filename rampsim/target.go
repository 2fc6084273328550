package rampsim

import (
	"context"
)

// Target is the external endpoint a dispatch invokes: opaque, of
// unspecified latency, answering success or an error. The simulator
// never retries and never inspects the error beyond logging it.
type Target interface {
	Invoke(ctx context.Context, question, sessionID string) error
}

// dryRunTarget reports success without calling anything. Selected by
// Request.DryRun to verify the load shape without incurring cost.
type dryRunTarget struct{}

func (dryRunTarget) Invoke(context.Context, string, string) error {
	return nil
}
