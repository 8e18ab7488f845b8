package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Observer receives the outcome of every RPC call. internal/metrics
// implements it.
type Observer interface {
	Observe(method string, err error, started time.Time)
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for per-call debug output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithObserver attaches a call observer. It may be given more than once.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observers = append(c.observers, o) }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// Client is a JSON-RPC 2.0 client bound to a single endpoint. It makes one
// attempt per call and never dials until the first call.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
	observers  []Observer
	nextID     int
}

// NewClient builds a client for url. A zero timeout means no HTTP timeout.
func NewClient(url string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call executes method with params and returns the raw result payload.
func (c *Client) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	if params == nil {
		params = []interface{}{}
	}

	c.nextID++
	req := Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID,
	}

	start := time.Now()
	result, err := c.do(ctx, method, req)
	for _, o := range c.observers {
		o.Observe(method, err, start)
	}

	if err != nil {
		c.logger.Debug("rpc call failed",
			zap.String("method", method),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		return nil, err
	}
	c.logger.Debug("rpc call",
		zap.String("method", method),
		zap.Duration("latency", time.Since(start)),
		zap.Int("result_bytes", len(result)))
	return result, nil
}

func (c *Client) do(ctx context.Context, method string, req Request) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &Error{Type: ErrorTypeUnclassified, Method: method, Err: fmt.Errorf("encode request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, connectivityErr(method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, connectivityErr(method, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, connectivityErr(method, fmt.Errorf("HTTP %d", httpResp.StatusCode))
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, connectivityErr(method, err)
	}

	var resp Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, protocolErr(method, fmt.Errorf("invalid JSON response: %w", err))
	}

	if resp.Error != nil {
		return nil, connectivityErr(method, resp.Error)
	}

	return resp.Result, nil
}
