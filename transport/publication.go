package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrBackPressured signals the stream queue is saturated; retry.
	ErrBackPressured = errors.New("back pressured")

	// ErrNotConnected signals no live subscription on the stream; retry.
	ErrNotConnected = errors.New("not connected")

	// ErrAdminAction signals an administrative operation is in progress on
	// the stream; retry.
	ErrAdminAction = errors.New("administration action in progress")
)

// IsBackPressure reports whether a claim or offer failure is the transient
// kind a sender recovers from by retrying.
func IsBackPressure(err error) bool {
	return errors.Is(err, ErrBackPressured) ||
		errors.Is(err, ErrNotConnected) ||
		errors.Is(err, ErrAdminAction)
}

type Publication struct {
	st         *stream
	sessionID  uint32
	streamID   uint32
	maxPayload int
}

// MaxPayloadLength is the largest payload TryClaim accepts. Larger messages
// must go through Offer, which fragments them.
func (p *Publication) MaxPayloadLength() int { return p.maxPayload }

// Claim is reserved but not yet visible space for one message. Write the
// payload into Buf, then Commit to deliver or Abort to discard.
type Claim struct {
	Buf []byte

	p  *Publication
	fr *frame
}

func (c *Claim) Bytes() []byte { return c.Buf }

// TryClaim reserves space for a message of length bytes without blocking.
// Failures are either transient (IsBackPressure) or a length violation,
// which is a caller bug and never retryable.
func (p *Publication) TryClaim(length int) (*Claim, error) {
	if length > p.maxPayload {
		return nil, fmt.Errorf("claim of %d bytes exceeds max payload length %d: use offer instead", length, p.maxPayload)
	}

	p.st.mu.Lock()
	if p.st.subscribers == 0 {
		p.st.mu.Unlock()
		return nil, ErrNotConnected
	}
	if len(p.st.frames) >= p.st.capacity {
		p.st.mu.Unlock()
		return nil, ErrBackPressured
	}
	p.st.mu.Unlock()

	fr := acquireFrame(p.sessionID, p.streamID, FlagsUnfragmented)
	return &Claim{Buf: fr.payloadRegion(length), p: p, fr: fr}, nil
}

func (c *Claim) Commit() {
	c.p.st.mu.Lock()
	c.p.st.frames = append(c.p.st.frames, c.fr)
	c.p.st.mu.Unlock()
	c.fr = nil
	c.Buf = nil
}

func (c *Claim) Abort() {
	releaseFrame(c.fr)
	c.fr = nil
	c.Buf = nil
}

// Offer enqueues a whole message, fragmenting it when it exceeds the max
// claim payload. Fragments of one message are enqueued atomically: either
// the queue has room for all of them or the offer is back pressured.
func (p *Publication) Offer(payload []byte) error {
	numFrames := (len(payload) + p.maxPayload - 1) / p.maxPayload
	if numFrames == 0 {
		numFrames = 1
	}

	p.st.mu.Lock()
	defer p.st.mu.Unlock()

	if p.st.subscribers == 0 {
		return ErrNotConnected
	}
	if len(p.st.frames)+numFrames > p.st.capacity {
		return ErrBackPressured
	}

	for i := 0; i < numFrames; i++ {
		chunk := payload[i*p.maxPayload:]
		if len(chunk) > p.maxPayload {
			chunk = chunk[:p.maxPayload]
		}

		var flags uint8
		if i == 0 {
			flags |= FlagBegin
		}
		if i == numFrames-1 {
			flags |= FlagEnd
		}

		fr := acquireFrame(p.sessionID, p.streamID, flags)
		copy(fr.payloadRegion(len(chunk)), chunk)
		p.st.frames = append(p.st.frames, fr)
	}

	return nil
}
