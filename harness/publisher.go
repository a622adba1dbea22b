package harness

import (
	"github.com/TheSmallBoat/tempo/idle"
	"github.com/TheSmallBoat/tempo/transport"
	"github.com/lithdew/bytesutil"
)

// Claim is reserved transport space for one message.
type Claim interface {
	Bytes() []byte
	Commit()
	Abort()
}

// Publication is the send half of the transport capability the harness
// consumes. Satisfied by transport publications through Publish, or by stubs
// in tests.
type Publication interface {
	MaxPayloadLength() int
	TryClaim(length int) (Claim, error)
}

// Publish adapts a transport publication to the Publication interface.
func Publish(p *transport.Publication) Publication { return transportPublication{p: p} }

type transportPublication struct{ p *transport.Publication }

func (t transportPublication) MaxPayloadLength() int { return t.p.MaxPayloadLength() }

func (t transportPublication) TryClaim(length int) (Claim, error) {
	claim, err := t.p.TryClaim(length)
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// Publisher is the producer hot path: it claims, stamps, and commits one
// message per sequence index as fast as the transport accepts them.
type Publisher struct {
	Pub  Publication
	Idle idle.Strategy
}

// Stream sends count messages of length bytes, the first 8 bytes of each
// carrying the zero-based sequence index big-endian. Rejected claims are
// retried against the same index until the coordinator stops running, and
// the number of rejections is returned. Only non-retryable claim failures
// surface as errors.
func (p *Publisher) Stream(coord *Coordinator, count int64, length int) (int64, error) {
	strategy := p.Idle
	if strategy == nil {
		strategy = idle.BusySpin{}
	}

	var backPressure int64

	for i := int64(0); i < count && coord.Running(); i++ {
		strategy.Reset()
		for {
			claim, err := p.Pub.TryClaim(length)
			if err != nil {
				if !transport.IsBackPressure(err) {
					return backPressure, err
				}
				backPressure++
				if !coord.Running() {
					return backPressure, nil
				}
				strategy.Idle(0)
				continue
			}

			bytesutil.AppendUint64BE(claim.Bytes()[:0], uint64(i))
			claim.Commit()
			break
		}
	}

	return backPressure, nil
}

// BackPressureRatio is rejected attempts over messages sent, 0 for an empty
// round.
func BackPressureRatio(backPressure, messages int64) float64 {
	if messages == 0 {
		return 0
	}
	return float64(backPressure) / float64(messages)
}
