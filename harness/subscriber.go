package harness

import (
	"time"

	"github.com/TheSmallBoat/tempo/idle"
	"github.com/TheSmallBoat/tempo/transport"
)

// Subscription is the receive half of the transport capability. Satisfied by
// *transport.Subscription directly.
type Subscription interface {
	Poll(handler transport.FragmentHandler, limit int) (int, error)
}

// Subscriber is the consumer hot path. It lives for the whole process, not
// one round, so it keeps draining across round boundaries.
type Subscriber struct {
	Sub           Subscription
	Idle          idle.Strategy
	FragmentLimit int
	Delay         time.Duration // fixed pause per poll, to simulate a slow consumer
}

// Drain polls until the coordinator stops running, feeding every fragment to
// handler. A poll error terminates the loop; there is no per-round recovery
// for consumer failure.
func (s *Subscriber) Drain(coord *Coordinator, handler transport.FragmentHandler) error {
	strategy := s.Idle
	if strategy == nil {
		strategy = idle.BusySpin{}
	}
	limit := s.FragmentLimit
	if limit < 1 {
		limit = DefaultFragmentLimit
	}

	for coord.Running() {
		n, err := s.Sub.Poll(handler, limit)
		if err != nil {
			return err
		}
		strategy.Idle(n)
		if s.Delay > 0 {
			time.Sleep(s.Delay)
		}
	}

	return nil
}
