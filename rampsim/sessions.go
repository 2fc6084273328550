package rampsim

import (
	"fmt"

	"github.com/google/uuid"
)

// SessionPool is a fixed set of runtime session identifiers multiplexed
// across every request of a run. The invocation target caps the number
// of concurrently open sessions, so the pool keeps the working set
// bounded to its size no matter how many requests the ramp issues.
type SessionPool struct {
	ids []string
}

// NewSessionPool generates size fresh identifiers. AgentCore requires
// runtime session ids of at least 33 characters; the uuid suffix keeps
// these at 45.
func NewSessionPool(size int) (*SessionPool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("session pool size must be positive, got %d", size)
	}

	ids := make([]string, size)
	for i := range ids {
		ids[i] = "ramp-sim-" + uuid.NewString()
	}

	return &SessionPool{ids: ids}, nil
}

func (p *SessionPool) Size() int {
	return len(p.ids)
}

// Assign maps a request index to a session id by round-robin. It is a
// pure function of the pool and the index, so no locking is needed and
// adjacent requests land on different sessions.
func (p *SessionPool) Assign(requestIndex int) string {
	return p.ids[requestIndex%len(p.ids)]
}
