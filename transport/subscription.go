package transport

import (
	"errors"
	"sync/atomic"
)

// ErrClosed is returned by Poll after the subscription has been closed. It is
// not retryable.
var ErrClosed = errors.New("subscription closed")

// FragmentHandler receives one frame's payload and metadata. The buffer is
// only valid for the duration of the call.
type FragmentHandler func(buf []byte, header Header)

type Subscription struct {
	st     *stream
	closed uint32
}

// Poll drains up to limit frames from the stream, invoking handler for each.
// It never blocks; the return value is the number of frames processed.
func (s *Subscription) Poll(handler FragmentHandler, limit int) (int, error) {
	if atomic.LoadUint32(&s.closed) == 1 {
		return 0, ErrClosed
	}
	if limit <= 0 {
		return 0, nil
	}

	s.st.mu.Lock()
	n := len(s.st.frames)
	if n > limit {
		n = limit
	}
	batch := s.st.frames[:n:n]
	s.st.frames = s.st.frames[n:]
	s.st.mu.Unlock()

	for _, fr := range batch {
		buf, header, err := fr.decode()
		if err != nil {
			releaseFrame(fr)
			return 0, err
		}
		handler(buf, header)
		releaseFrame(fr)
	}

	return n, nil
}

// Close disconnects the stream. Publications on it go back to ErrNotConnected
// once the last subscription is gone. Idempotent.
func (s *Subscription) Close() {
	if !atomic.CompareAndSwapUint32(&s.closed, 0, 1) {
		return
	}
	s.st.mu.Lock()
	s.st.subscribers--
	s.st.mu.Unlock()
}
