// Package httpclient provides the HTTP doer used for outbound marketing API
// calls. Every call gets its own bounded deadline and is timed into the
// upstream latency histogram. Nothing here retries: a failed or timed-out
// call is reported to the caller once.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ignite/landing-page/internal/metrics"
)

// DefaultTimeout bounds a single call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// ErrTimeout marks a call that exceeded its deadline.
var ErrTimeout = errors.New("httpclient: request timed out")

// HTTPDoer is the interface for executing HTTP requests.
// Both *http.Client and *Client satisfy this interface.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type operationKey struct{}

// WithOperation tags outbound requests made with ctx for metrics and logs.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

// Operation returns the tag set by WithOperation, or "unknown".
func Operation(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey{}).(string); ok && op != "" {
		return op
	}
	return "unknown"
}

// ObserveFunc receives the outcome of every call.
type ObserveFunc func(operation, status string, elapsed time.Duration)

// Client wraps an HTTPDoer with a per-call deadline and instrumentation.
type Client struct {
	client  HTTPDoer
	timeout time.Duration
	observe ObserveFunc
}

// New creates a Client. A nil client means a plain http.Client; a
// non-positive timeout means DefaultTimeout.
func New(client HTTPDoer, timeout time.Duration) *Client {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		client:  client,
		timeout: timeout,
		observe: observeUpstream,
	}
}

// Do executes req under the client's deadline. The deadline stays armed
// until the response body is closed.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(req.Context(), c.timeout)
	op := Operation(ctx)
	start := time.Now()

	resp, err := c.client.Do(req.WithContext(ctx))
	if err != nil {
		timedOut := errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded
		cancel()
		if timedOut {
			c.observe(op, "timeout", time.Since(start))
			return nil, fmt.Errorf("%w: %s %s after %s", ErrTimeout, req.Method, req.URL.Path, c.timeout)
		}
		c.observe(op, "error", time.Since(start))
		return nil, err
	}

	c.observe(op, strconv.Itoa(resp.StatusCode), time.Since(start))
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

func observeUpstream(operation, status string, elapsed time.Duration) {
	metrics.UpstreamRequestDuration.WithLabelValues(operation, status).Observe(elapsed.Seconds())
}
