package transport

import (
	"io"
	"sync"

	"github.com/lithdew/bytesutil"
	"github.com/valyala/bytebufferpool"
)

const (
	frameHeaderLength = 4 + 4 + 1 // session id, stream id, flags

	// A message that fits in one frame carries both flags; fragmented
	// messages open with FlagBegin and close with FlagEnd.
	FlagBegin uint8 = 0x80
	FlagEnd   uint8 = 0x40

	FlagsUnfragmented = FlagBegin | FlagEnd
)

// Header carries per-frame metadata to fragment handlers.
type Header struct {
	SessionID uint32
	StreamID  uint32
	Flags     uint8
}

// frame is one queued delivery: the encoded header followed by the payload,
// packed into a single pooled buffer.
type frame struct {
	buf *bytebufferpool.ByteBuffer
}

var framePool = &sync.Pool{}

func acquireFrame(sessionID, streamID uint32, flags uint8) *frame {
	v := framePool.Get()
	if v == nil {
		v = &frame{}
	}
	fr := v.(*frame)
	fr.buf = bytebufferpool.Get()
	fr.buf.B = bytesutil.AppendUint32BE(fr.buf.B[:0], sessionID)
	fr.buf.B = bytesutil.AppendUint32BE(fr.buf.B, streamID)
	fr.buf.B = append(fr.buf.B, flags)
	return fr
}

func releaseFrame(fr *frame) {
	bytebufferpool.Put(fr.buf)
	fr.buf = nil
	framePool.Put(fr)
}

func (fr *frame) decode() ([]byte, Header, error) {
	buf := fr.buf.B
	if len(buf) < frameHeaderLength {
		return nil, Header{}, io.ErrUnexpectedEOF
	}

	var header Header
	header.SessionID, buf = bytesutil.Uint32BE(buf[:4]), buf[4:]
	header.StreamID, buf = bytesutil.Uint32BE(buf[:4]), buf[4:]
	header.Flags, buf = buf[0], buf[1:]

	return buf, header, nil
}

// payloadRegion grows the frame to hold length payload bytes and returns the
// writable region after the header.
func (fr *frame) payloadRegion(length int) []byte {
	need := frameHeaderLength + length
	if cap(fr.buf.B) < need {
		grown := make([]byte, need)
		copy(grown, fr.buf.B)
		fr.buf.B = grown
	} else {
		fr.buf.B = fr.buf.B[:need]
	}
	return fr.buf.B[frameHeaderLength:]
}
