package idle

import (
	"runtime"
	"time"

	"github.com/jpillora/backoff"
)

// A Strategy decides how a loop waits when it has no work. Idle takes the
// amount of work done since the last call; zero or negative means the loop
// came up empty and should back off. Reset restores the tightest phase.
type Strategy interface {
	Idle(workCount int)
	Reset()
}

type BusySpin struct{}

func (BusySpin) Idle(workCount int) {
	if workCount > 0 {
		return
	}
	runtime.Gosched()
}

func (BusySpin) Reset() {}

type Backoff struct {
	b *backoff.Backoff
}

func NewBackoff(min, max time.Duration) *Backoff {
	return &Backoff{
		b: &backoff.Backoff{
			Factor: 2,
			Min:    min,
			Max:    max,
		},
	}
}

func (s *Backoff) Idle(workCount int) {
	if workCount > 0 {
		s.b.Reset()
		return
	}
	time.Sleep(s.b.Duration())
}

func (s *Backoff) Reset() { s.b.Reset() }

// NoOp never waits. Meant for tests that must not depend on wall-clock time.
type NoOp struct{}

func (NoOp) Idle(workCount int) {}
func (NoOp) Reset()             {}
