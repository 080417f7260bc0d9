package collector

import "time"

// StreamSummary is one stream's outcome.
type StreamSummary struct {
	Name    string `json:"name"`
	Emitted int    `json:"emitted"`
	Error   string `json:"error,omitempty"`
}

// Summary is the end-of-run report.
type Summary struct {
	Streams     []StreamSummary
	Total       int
	Bytes       int64
	WriteErrors int64
	Elapsed     time.Duration
	LinesPerSec float64
	Interrupted bool
	// Dropped is the count remainder no parallel stream was assigned.
	Dropped int
}

// NewSummary combines per-stream outcomes with the collector's counters.
// Total is the sum of what the streams report as emitted.
func NewSummary(stats Stats, streams []StreamSummary, interrupted bool) *Summary {
	s := &Summary{
		Streams:     streams,
		Bytes:       stats.Bytes,
		WriteErrors: stats.Failures,
		Elapsed:     stats.Elapsed,
		Interrupted: interrupted,
	}
	for _, st := range streams {
		s.Total += st.Emitted
	}
	if stats.Elapsed > 0 {
		s.LinesPerSec = float64(s.Total) / stats.Elapsed.Seconds()
	}
	return s
}

// Failed reports whether any stream ended with an error.
func (s *Summary) Failed() bool {
	for _, st := range s.Streams {
		if st.Error != "" {
			return true
		}
	}
	return false
}
