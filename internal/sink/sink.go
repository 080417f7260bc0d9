// Package sink opens the destinations generated lines are written to:
// stdout, files, TCP and UDP endpoints and HTTP collectors.
//
// Every sink serializes Write with a mutex so one instance can be shared by
// all parallel streams, and every Close is idempotent.
package sink

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"logsynth/internal/core"
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("sink closed")

const defaultTimeout = 5 * time.Second

// Options tunes network sinks.
type Options struct {
	// Timeout bounds dialing and each HTTP request. Zero means 5s.
	Timeout time.Duration
	// Verbose logs every HTTP request and response at debug level.
	Verbose bool
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return defaultTimeout
	}
	return o.Timeout
}

// Open parses target and returns the matching sink:
//
//	"" or "-"          stdout
//	tcp://host:port    newline-delimited lines over one TCP connection
//	udp://host:port    one datagram per line
//	http(s)://...      one POST per line
//	anything else      file path, created if missing and appended to
func Open(target string, opts Options) (core.Sink, error) {
	switch {
	case target == "" || target == "-":
		return FromWriter("stdout", os.Stdout), nil
	case strings.HasPrefix(target, "tcp://"):
		return dial("tcp", strings.TrimPrefix(target, "tcp://"), opts)
	case strings.HasPrefix(target, "udp://"):
		return dial("udp", strings.TrimPrefix(target, "udp://"), opts)
	case strings.HasPrefix(target, "http://"), strings.HasPrefix(target, "https://"):
		return NewHTTPSink(target, opts), nil
	}
	return OpenFile(target)
}

// IsStdout reports whether target writes to standard output.
func IsStdout(target string) bool {
	return target == "" || target == "-"
}

// OpenFile opens path for appending, creating it if needed.
func OpenFile(path string) (core.Sink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening output file: %w", err)
	}
	return NewWriterSink(path, f), nil
}

func dial(network, addr string, opts Options) (core.Sink, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return nil, fmt.Errorf("%w: %s address %q: %v", core.ErrInvalidConfig, network, addr, err)
	}
	conn, err := net.DialTimeout(network, addr, opts.timeout())
	if err != nil {
		return nil, fmt.Errorf("connecting to %s://%s: %w", network, addr, err)
	}
	log.WithFields(log.Fields{"network": network, "addr": addr}).Debug("sink connected")

	if network == "udp" {
		return &datagramSink{name: network + "://" + addr, conn: conn}, nil
	}
	return NewWriterSink(network+"://"+addr, conn), nil
}

// WriterSink writes newline-terminated lines to an io.WriteCloser.
type WriterSink struct {
	name   string
	mu     sync.Mutex
	w      io.WriteCloser
	closed bool
}

func NewWriterSink(name string, w io.WriteCloser) *WriterSink {
	return &WriterSink{name: name, w: w}
}

// FromWriter wraps w. Closing the sink leaves w open.
func FromWriter(name string, w io.Writer) *WriterSink {
	return NewWriterSink(name, nopCloser{w})
}

func (s *WriterSink) Write(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, err := io.WriteString(s.w, line+"\n"); err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	return nil
}

func (s *WriterSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.w.Close()
}

func (s *WriterSink) String() string { return s.name }

// datagramSink sends each line as its own datagram, without a newline.
type datagramSink struct {
	name   string
	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

func (s *datagramSink) Write(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, err := s.conn.Write([]byte(line)); err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	return nil
}

func (s *datagramSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

func (s *datagramSink) String() string { return s.name }

// nopCloser keeps borrowed writers open when the sink is closed.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
