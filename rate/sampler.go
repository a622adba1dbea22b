package rate

import "time"

// Sample is an immutable snapshot of one sampling interval plus the running
// totals at the moment it was taken.
type Sample struct {
	MessagesPerSec float64
	BytesPerSec    float64
	TotalMessages  int64
	TotalBytes     int64
	Elapsed        time.Duration
}

type ReportFunc func(s Sample)

// Compute converts the deltas accumulated over elapsed into per-second rates.
// A zero or negative elapsed yields zero rates, never NaN or Inf.
func Compute(deltaMessages, deltaBytes, totalMessages, totalBytes int64, elapsed time.Duration) Sample {
	s := Sample{
		TotalMessages: totalMessages,
		TotalBytes:    totalBytes,
		Elapsed:       elapsed,
	}
	secs := elapsed.Seconds()
	if secs <= 0 {
		return s
	}
	s.MessagesPerSec = float64(deltaMessages) / secs
	s.BytesPerSec = float64(deltaBytes) / secs
	return s
}
