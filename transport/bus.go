package transport

import (
	"sync"
	"sync/atomic"
)

var (
	DefaultMTU      = 1408
	DefaultCapacity = 1024
)

// Bus is an in-memory publish/subscribe medium. Streams are keyed by
// (channel, stream id); each stream owns a bounded frame queue that produces
// back pressure once full.
type Bus struct {
	MTU      int // frame size limit including the frame header
	Capacity int // frames buffered per stream before claims are rejected

	mu       sync.Mutex
	streams  map[streamKey]*stream
	sessions uint32
}

type streamKey struct {
	channel  string
	streamID uint32
}

type stream struct {
	mu          sync.Mutex
	frames      []*frame
	capacity    int
	subscribers int
}

func (b *Bus) mtu() int {
	if b.MTU <= 0 {
		return DefaultMTU
	}
	return b.MTU
}

func (b *Bus) capacity() int {
	if b.Capacity <= 0 {
		return DefaultCapacity
	}
	return b.Capacity
}

func (b *Bus) getStream(channel string, streamID uint32) *stream {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streams == nil {
		b.streams = make(map[streamKey]*stream)
	}

	key := streamKey{channel: channel, streamID: streamID}
	st, exists := b.streams[key]
	if !exists {
		st = &stream{capacity: b.capacity()}
		b.streams[key] = st
	}
	return st
}

// AddPublication resolves a publication handle for channel and streamID. The
// handle is immediately usable, though claims fail with ErrNotConnected until
// a subscription joins the same stream.
func (b *Bus) AddPublication(channel string, streamID uint32) *Publication {
	return &Publication{
		st:         b.getStream(channel, streamID),
		sessionID:  atomic.AddUint32(&b.sessions, 1),
		streamID:   streamID,
		maxPayload: b.mtu() - frameHeaderLength,
	}
}

// AddSubscription resolves a subscription handle and connects the stream.
func (b *Bus) AddSubscription(channel string, streamID uint32) *Subscription {
	st := b.getStream(channel, streamID)

	st.mu.Lock()
	st.subscribers++
	st.mu.Unlock()

	return &Subscription{st: st}
}
