package transport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClaimCommitPoll(t *testing.T) {
	bus := &Bus{}
	sub := bus.AddSubscription("mem://test", 7)
	pub := bus.AddPublication("mem://test", 7)

	claim, err := pub.TryClaim(16)
	require.NoError(t, err)
	require.Len(t, claim.Buf, 16)

	copy(claim.Buf, "hello from tempo")
	claim.Commit()

	var payloads [][]byte
	var headers []Header
	n, err := sub.Poll(func(buf []byte, header Header) {
		payloads = append(payloads, append([]byte(nil), buf...))
		headers = append(headers, header)
	}, 10)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []byte("hello from tempo"), payloads[0])
	require.Equal(t, FlagsUnfragmented, headers[0].Flags)
	require.EqualValues(t, 7, headers[0].StreamID)
	require.Equal(t, pub.sessionID, headers[0].SessionID)
}

func TestClaimNotConnected(t *testing.T) {
	bus := &Bus{}
	pub := bus.AddPublication("mem://test", 1)

	_, err := pub.TryClaim(8)
	require.Equal(t, ErrNotConnected, err)
	require.True(t, IsBackPressure(err))
}

func TestClaimBackPressure(t *testing.T) {
	bus := &Bus{Capacity: 2}
	sub := bus.AddSubscription("mem://test", 1)
	pub := bus.AddPublication("mem://test", 1)

	for i := 0; i < 2; i++ {
		claim, err := pub.TryClaim(8)
		require.NoError(t, err)
		claim.Commit()
	}

	_, err := pub.TryClaim(8)
	require.Equal(t, ErrBackPressured, err)
	require.True(t, IsBackPressure(err))

	n, err := sub.Poll(func([]byte, Header) {}, 10)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	claim, err := pub.TryClaim(8)
	require.NoError(t, err)
	claim.Abort()
}

func TestClaimExceedsMaxPayload(t *testing.T) {
	bus := &Bus{}
	bus.AddSubscription("mem://test", 1)
	pub := bus.AddPublication("mem://test", 1)

	_, err := pub.TryClaim(pub.MaxPayloadLength() + 1)
	require.Error(t, err)
	require.False(t, IsBackPressure(err))
}

func TestOfferFragmentsAndReassembles(t *testing.T) {
	bus := &Bus{MTU: frameHeaderLength + 16}
	sub := bus.AddSubscription("mem://test", 1)
	pub := bus.AddPublication("mem://test", 1)
	require.Equal(t, 16, pub.MaxPayloadLength())

	payload := make([]byte, 40)
	for i := range payload {
		payload[i] = byte(i)
	}
	require.NoError(t, pub.Offer(payload))

	var assembled [][]byte
	assembler := NewAssembler(func(buf []byte, header Header) {
		require.Equal(t, FlagsUnfragmented, header.Flags&FlagsUnfragmented)
		assembled = append(assembled, append([]byte(nil), buf...))
	})

	n, err := sub.Poll(assembler.OnFragment, 10)
	require.NoError(t, err)
	require.Equal(t, 3, n) // 16 + 16 + 8
	require.Len(t, assembled, 1)
	require.Equal(t, payload, assembled[0])
}

func TestOfferBackPressuredAtomically(t *testing.T) {
	bus := &Bus{MTU: frameHeaderLength + 16, Capacity: 2}
	sub := bus.AddSubscription("mem://test", 1)
	pub := bus.AddPublication("mem://test", 1)

	require.Equal(t, ErrBackPressured, pub.Offer(make([]byte, 40)))

	n, err := sub.Poll(func([]byte, Header) {}, 10)
	require.NoError(t, err)
	require.Zero(t, n) // nothing partially enqueued
}

func TestSubscriptionClose(t *testing.T) {
	bus := &Bus{}
	sub := bus.AddSubscription("mem://test", 1)
	pub := bus.AddPublication("mem://test", 1)

	claim, err := pub.TryClaim(8)
	require.NoError(t, err)
	claim.Commit()

	sub.Close()
	sub.Close()

	_, err = sub.Poll(func([]byte, Header) {}, 10)
	require.Equal(t, ErrClosed, err)
	require.False(t, IsBackPressure(err))

	_, err = pub.TryClaim(8)
	require.Equal(t, ErrNotConnected, err)
}
