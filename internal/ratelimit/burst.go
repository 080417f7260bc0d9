package ratelimit

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"logsynth/internal/core"
)

// Segment is a contiguous part of a burst run with its own constant rate.
type Segment struct {
	Rate float64
	Span time.Duration
}

func (s Segment) String() string {
	return fmt.Sprintf("%s:%s", strconv.FormatFloat(s.Rate, 'f', -1, 64), s.Span)
}

// Schedule is a non-empty ordered list of burst segments.
type Schedule []Segment

// ParseBurst parses "rate:duration" pairs separated by commas, for example
// "100:5s,10:25s". Any malformed pair fails the whole parse.
func ParseBurst(pattern string) (Schedule, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("%w: empty burst pattern", core.ErrInvalidConfig)
	}

	parts := strings.Split(pattern, ",")
	schedule := make(Schedule, 0, len(parts))
	for i, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, fmt.Errorf("burst segment %d (%q): %w", i+1, part, err)
		}
		schedule = append(schedule, seg)
	}
	return schedule, nil
}

func parseSegment(part string) (Segment, error) {
	rateText, spanText, ok := strings.Cut(strings.TrimSpace(part), ":")
	if !ok {
		return Segment{}, fmt.Errorf("%w: expected rate:duration", core.ErrInvalidConfig)
	}

	rate, err := strconv.ParseFloat(strings.TrimSpace(rateText), 64)
	if err != nil {
		return Segment{}, fmt.Errorf("%w: invalid rate %q", core.ErrInvalidConfig, rateText)
	}
	if err := ValidateRate(rate); err != nil {
		return Segment{}, err
	}

	span, err := ParseDuration(spanText)
	if err != nil {
		return Segment{}, err
	}
	return Segment{Rate: rate, Span: span}, nil
}

// TotalSpan returns the sum of all segment spans.
func (s Schedule) TotalSpan() time.Duration {
	var total time.Duration
	for _, seg := range s {
		total += seg.Span
	}
	return total
}

func (s Schedule) String() string {
	parts := make([]string, len(s))
	for i, seg := range s {
		parts[i] = seg.String()
	}
	return strings.Join(parts, ",")
}

// Scheduler hands out burst segments in order, capping each one by what is
// left of an outer duration bound measured from the scheduler's creation.
type Scheduler struct {
	schedule Schedule
	clock    core.Clock
	end      time.Time
	next     int
}

// NewScheduler creates a Scheduler whose outer bound starts now.
func NewScheduler(clock core.Clock, schedule Schedule, outer time.Duration) *Scheduler {
	if clock == nil {
		clock = core.RealClock{}
	}
	return &Scheduler{
		schedule: schedule,
		clock:    clock,
		end:      clock.Now().Add(outer),
	}
}

// Next returns the next segment and the span it may run for. It reports
// false once the schedule is exhausted or the outer bound has elapsed.
func (s *Scheduler) Next() (Segment, time.Duration, bool) {
	if s.next >= len(s.schedule) {
		return Segment{}, 0, false
	}
	remaining := s.end.Sub(s.clock.Now())
	if remaining <= 0 {
		return Segment{}, 0, false
	}

	seg := s.schedule[s.next]
	s.next++

	span := seg.Span
	if remaining < span {
		span = remaining
	}
	return seg, span, true
}

// Index returns the number of segments handed out so far.
func (s *Scheduler) Index() int {
	return s.next
}
