package rate

import (
	"sync"
	"sync/atomic"
	"time"
)

var DefaultInterval = 1 * time.Second

// Reporter accumulates message and byte counts and turns them into
// per-interval Samples. OnMessage may be called concurrently with Run,
// Report, and Reset.
type Reporter struct {
	interval time.Duration
	report   ReportFunc

	messages uint64 // cumulative, atomic
	bytes    uint64 // cumulative, atomic

	lastMessages uint64 // only touched by the sampling side
	lastBytes    uint64
	lastNanos    int64 // atomic, unix nanos of the previous sample

	haltOnce sync.Once
	done     chan struct{}
}

func NewReporter(interval time.Duration, report ReportFunc) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	r := &Reporter{
		interval: interval,
		report:   report,
		done:     make(chan struct{}),
	}
	atomic.StoreInt64(&r.lastNanos, time.Now().UnixNano())
	return r
}

func (r *Reporter) OnMessage(count, length int64) {
	atomic.AddUint64(&r.messages, uint64(count))
	atomic.AddUint64(&r.bytes, uint64(length))
}

// Run samples every interval until Halt is called. Meant to be driven from
// its own goroutine when progress printing is enabled.
func (r *Reporter) Run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sample()
		case <-r.done:
			return
		}
	}
}

// Reset zeroes the cumulative counters and restarts the interval clock. Only
// call it when no goroutine is inside Run, or the next periodic sample would
// misreport the rate.
func (r *Reporter) Reset() {
	atomic.StoreUint64(&r.messages, 0)
	atomic.StoreUint64(&r.bytes, 0)
	r.lastMessages = 0
	r.lastBytes = 0
	atomic.StoreInt64(&r.lastNanos, time.Now().UnixNano())
}

// Report forces one sample outside the periodic cadence.
func (r *Reporter) Report() { r.sample() }

func (r *Reporter) Halt() {
	r.haltOnce.Do(func() { close(r.done) })
}

func (r *Reporter) sample() {
	now := time.Now().UnixNano()
	elapsed := time.Duration(now - atomic.SwapInt64(&r.lastNanos, now))

	messages := atomic.LoadUint64(&r.messages)
	bytes := atomic.LoadUint64(&r.bytes)

	deltaMessages := int64(messages - r.lastMessages)
	deltaBytes := int64(bytes - r.lastBytes)
	r.lastMessages = messages
	r.lastBytes = bytes

	if r.report != nil {
		r.report(Compute(deltaMessages, deltaBytes, int64(messages), int64(bytes), elapsed))
	}
}
