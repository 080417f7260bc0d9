package core

import "sync"

// MemorySink is a thread-safe in-memory Sink for testing.
type MemorySink struct {
	mu     sync.Mutex
	lines  []string
	closed int
}

func (s *MemorySink) Write(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
	return nil
}

func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// Lines returns a copy of everything written so far.
func (s *MemorySink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// CloseCount reports how many times Close was called.
func (s *MemorySink) CloseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
