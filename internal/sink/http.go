package sink

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	loghttp "github.com/motemen/go-loghttp"
	log "github.com/sirupsen/logrus"
)

// HTTPSink POSTs every line as a text/plain request body. Any status
// outside 2xx is a write error.
type HTTPSink struct {
	url    string
	client *http.Client
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewHTTPSink builds a sink with a clean (non-shared) HTTP client. In
// verbose mode requests and responses are logged at debug level.
func NewHTTPSink(url string, opts Options) *HTTPSink {
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = opts.timeout()

	if opts.Verbose {
		client.Transport = &loghttp.Transport{
			LogRequest: func(req *http.Request) {
				log.Debugf("http sink: %s %s", req.Method, req.URL)
			},
			LogResponse: func(resp *http.Response) {
				log.Debugf("http sink: %d %s", resp.StatusCode, resp.Request.URL)
			},
			Transport: client.Transport,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &HTTPSink{url: url, client: client, ctx: ctx, cancel: cancel}
}

// Client exposes the underlying client.
func (s *HTTPSink) Client() *http.Client { return s.client }

func (s *HTTPSink) Write(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.url, strings.NewReader(line))
	if err != nil {
		return fmt.Errorf("building request to %s: %w", s.url, err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to %s: %w", s.url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("got unexpected response code from %s: %d", s.url, resp.StatusCode)
	}
	return nil
}

// Close aborts any in-flight request and releases idle connections.
func (s *HTTPSink) Close() error {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.client.CloseIdleConnections()
	return nil
}

func (s *HTTPSink) String() string { return s.url }
