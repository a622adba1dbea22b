package harness

import (
	"fmt"
	"time"
)

// SequenceLength is the size of the sequence index written at the head of
// every message payload.
const SequenceLength = 8

var (
	DefaultChannel              = "mem://throughput"
	DefaultStreamID      uint32 = 1001
	DefaultMessages      int64  = 1000000
	DefaultMessageLength        = 32
	DefaultFragmentLimit        = 10
)

// Settings is the immutable configuration for a harness run. Built once,
// read-only everywhere after Validate passes.
type Settings struct {
	PubChannel  string
	PubStreamID uint32
	SubChannel  string
	SubStreamID uint32

	Messages      int64
	MessageLength int

	Linger        time.Duration
	FragmentLimit int
	Progress      bool
	PollDelay     time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		PubChannel:    DefaultChannel,
		PubStreamID:   DefaultStreamID,
		SubChannel:    DefaultChannel,
		SubStreamID:   DefaultStreamID,
		Messages:      DefaultMessages,
		MessageLength: DefaultMessageLength,
		FragmentLimit: DefaultFragmentLimit,
	}
}

// Validate rejects configurations the harness must not start with. Anything
// it catches is fatal before the first round, never a per-message error.
func (s Settings) Validate() error {
	if s.MessageLength < SequenceLength {
		return fmt.Errorf("message length %d is below the %d byte sequence index", s.MessageLength, SequenceLength)
	}
	if s.Messages < 0 {
		return fmt.Errorf("message count %d is negative", s.Messages)
	}
	if s.FragmentLimit < 1 {
		return fmt.Errorf("fragment count limit %d must be at least 1", s.FragmentLimit)
	}
	if s.Linger < 0 {
		return fmt.Errorf("linger %s is negative", s.Linger)
	}
	if s.PollDelay < 0 {
		return fmt.Errorf("poll delay %s is negative", s.PollDelay)
	}
	return nil
}
