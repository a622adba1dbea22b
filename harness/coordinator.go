package harness

import (
	"sync"
	"sync/atomic"

	"github.com/TheSmallBoat/tempo/rate"
)

// Coordinator is the single point of truth for "should any loop keep
// running". It is instance scoped so multiple harnesses can coexist in one
// process. The flag flips to false exactly once and never back.
type Coordinator struct {
	running uint32

	stopOnce sync.Once
	downOnce sync.Once

	reporter *rate.Reporter

	subWG sync.WaitGroup
	repWG sync.WaitGroup

	subErrMu sync.Mutex
	subErr   error
}

func NewCoordinator() *Coordinator {
	return &Coordinator{running: 1}
}

// Running is safe and cheap to call from any goroutine on every iteration.
func (c *Coordinator) Running() bool {
	return atomic.LoadUint32(&c.running) == 1
}

// Stop flips the running flag. Safe to call from a signal handler goroutine.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() { atomic.StoreUint32(&c.running, 0) })
}

// StartSubscriber runs fn on its own goroutine. The loop's terminal error,
// if any, is available from SubscriberErr after Shutdown.
func (c *Coordinator) StartSubscriber(fn func() error) {
	c.subWG.Add(1)
	go func() {
		defer c.subWG.Done()
		if err := fn(); err != nil {
			c.subErrMu.Lock()
			c.subErr = err
			c.subErrMu.Unlock()
			c.Stop()
		}
	}()
}

// StartReporter runs the reporter's periodic loop on its own goroutine and
// registers it for teardown.
func (c *Coordinator) StartReporter(r *rate.Reporter) {
	c.reporter = r
	c.repWG.Add(1)
	go func() {
		defer c.repWG.Done()
		r.Run()
	}()
}

// Shutdown stops the flag, halts the reporter, then joins the subscriber and
// reporter goroutines in that order. Idempotent; joining goroutines that were
// never started is a no-op.
func (c *Coordinator) Shutdown() {
	c.downOnce.Do(func() {
		c.Stop()
		if c.reporter != nil {
			c.reporter.Halt()
		}
		c.subWG.Wait()
		c.repWG.Wait()
	})
}

// SubscriberErr reports the error that terminated the subscriber loop, if
// any. Meaningful once Shutdown has returned.
func (c *Coordinator) SubscriberErr() error {
	c.subErrMu.Lock()
	defer c.subErrMu.Unlock()
	return c.subErr
}
