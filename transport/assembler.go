package transport

import "github.com/valyala/bytebufferpool"

// Assembler rebuilds whole messages out of fragmented deliveries before
// handing them to the delegate. Unfragmented frames pass straight through.
// Partial messages are tracked per session, so interleaved sessions on one
// stream reassemble independently. Not safe for concurrent use; each polling
// goroutine gets its own.
type Assembler struct {
	delegate FragmentHandler
	builders map[uint32]*bytebufferpool.ByteBuffer
}

func NewAssembler(delegate FragmentHandler) *Assembler {
	return &Assembler{
		delegate: delegate,
		builders: make(map[uint32]*bytebufferpool.ByteBuffer),
	}
}

// OnFragment is the FragmentHandler to hand to Subscription.Poll.
func (a *Assembler) OnFragment(buf []byte, header Header) {
	if header.Flags&FlagBegin != 0 && header.Flags&FlagEnd != 0 {
		a.delegate(buf, header)
		return
	}

	if header.Flags&FlagBegin != 0 {
		b := bytebufferpool.Get()
		_, _ = b.Write(buf)
		a.builders[header.SessionID] = b
		return
	}

	b, exists := a.builders[header.SessionID]
	if !exists {
		// middle or end with no begin seen; drop it
		return
	}
	_, _ = b.Write(buf)

	if header.Flags&FlagEnd != 0 {
		delete(a.builders, header.SessionID)
		header.Flags |= FlagsUnfragmented
		a.delegate(b.B, header)
		bytebufferpool.Put(b)
	}
}
