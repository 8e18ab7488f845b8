package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// newNode starts a fake JSON-RPC node that answers each method with the raw
// JSON in results. Methods missing from results get a -32601 error object.
func newNode(t *testing.T, results map[string]string) (*httptest.Server, func() []Request) {
	t.Helper()

	var (
		mu   sync.Mutex
		seen []Request
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		seen = append(seen, req)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		result, ok := results[req.Method]
		if !ok {
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"error":{"code":-32601,"message":"method not found"}}`, req.ID)
			return
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":%s}`, req.ID, result)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []Request {
		mu.Lock()
		defer mu.Unlock()
		return append([]Request(nil), seen...)
	}
}

// nodeClient binds a client to srv through the server's own HTTP client.
func nodeClient(srv *httptest.Server, opts ...Option) *Client {
	return NewClient(srv.URL, 0, append([]Option{WithHTTPClient(srv.Client())}, opts...)...)
}

type recordingObserver struct {
	methods []string
	errs    []error
}

func (o *recordingObserver) Observe(method string, err error, _ time.Time) {
	o.methods = append(o.methods, method)
	o.errs = append(o.errs, err)
}

func TestCallSendsEnvelope(t *testing.T) {
	srv, seen := newNode(t, map[string]string{"eth_mining": "true"})
	obs := &recordingObserver{}
	c := nodeClient(srv, WithObserver(obs))

	raw, err := c.Call(context.Background(), "eth_mining")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != "true" {
		t.Errorf("result = %s, want true", raw)
	}

	reqs := seen()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	req := reqs[0]
	if req.JSONRPC != "2.0" || req.Method != "eth_mining" {
		t.Errorf("request = %+v", req)
	}
	if req.Params == nil || len(req.Params) != 0 {
		t.Errorf("params = %#v, want empty list", req.Params)
	}

	if len(obs.methods) != 1 || obs.methods[0] != "eth_mining" || obs.errs[0] != nil {
		t.Errorf("observer saw %v / %v", obs.methods, obs.errs)
	}
}

func TestCallErrorTypes(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    ErrorType
	}{
		{
			name: "rpc_error_object",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"boom"}}`)
			},
			want: ErrorTypeConnectivity,
		},
		{
			name: "http_status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			want: ErrorTypeConnectivity,
		},
		{
			name: "invalid_json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `<html>`)
			},
			want: ErrorTypeProtocol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).Call(context.Background(), "eth_chainId")
			if err == nil {
				t.Fatal("expected error")
			}
			if got := TypeOf(err); got != tt.want {
				t.Errorf("TypeOf() = %s, want %s (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestCallUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Call(context.Background(), "eth_chainId")
	if TypeOf(err) != ErrorTypeConnectivity {
		t.Fatalf("TypeOf() = %s, want connectivity (err: %v)", TypeOf(err), err)
	}

	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Method != "eth_chainId" {
		t.Errorf("error does not carry method: %v", err)
	}
}

func TestConvenienceMethods(t *testing.T) {
	srv, seen := newNode(t, map[string]string{
		"eth_chainId":          `"0x539"`,
		"eth_blockNumber":      `"0x2a"`,
		"eth_getBlockByNumber": `{"number":"0x2a","hash":"0xabc","timestamp":"0x65920080","transactions":["0x1","0x2"]}`,
		"eth_getBalance":       `"0xde0b6b3a7640000"`,
	})
	c := nodeClient(srv)
	ctx := context.Background()

	id, err := c.ChainID(ctx)
	if err != nil || id.Int64() != 1337 {
		t.Errorf("ChainID() = %v, %v", id, err)
	}

	height, err := c.BlockNumber(ctx)
	if err != nil || height != 42 {
		t.Errorf("BlockNumber() = %d, %v", height, err)
	}

	block, err := c.BlockByNumber(ctx, height)
	if err != nil {
		t.Fatalf("BlockByNumber() error: %v", err)
	}
	if block.Timestamp != "0x65920080" || len(block.Transactions) != 2 {
		t.Errorf("block = %+v", block)
	}

	bal, err := c.BalanceAt(ctx, "0x00000000000000000000000000000000000000aa")
	if err != nil || bal.String() != "1000000000000000000" {
		t.Errorf("BalanceAt() = %v, %v", bal, err)
	}

	reqs := seen()
	blockReq := reqs[2]
	if len(blockReq.Params) != 2 || blockReq.Params[0] != "0x2a" || blockReq.Params[1] != false {
		t.Errorf("eth_getBlockByNumber params = %#v", blockReq.Params)
	}
	balReq := reqs[3]
	if len(balReq.Params) != 2 || balReq.Params[1] != "latest" {
		t.Errorf("eth_getBalance params = %#v", balReq.Params)
	}
}

func TestBlockByNumberNull(t *testing.T) {
	srv, _ := newNode(t, map[string]string{"eth_getBlockByNumber": "null"})

	_, err := nodeClient(srv).BlockByNumber(context.Background(), 7)
	if TypeOf(err) != ErrorTypeProtocol {
		t.Fatalf("TypeOf() = %s, want protocol (err: %v)", TypeOf(err), err)
	}
}

func TestBlockByNumberMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		result string
	}{
		{"no_transactions", `{"number":"0x10","timestamp":"0x0"}`},
		{"null_transactions", `{"number":"0x10","timestamp":"0x0","transactions":null}`},
		{"no_timestamp", `{"number":"0x10","transactions":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newNode(t, map[string]string{"eth_getBlockByNumber": tt.result})
			_, err := nodeClient(srv).BlockByNumber(context.Background(), 16)
			if TypeOf(err) != ErrorTypeProtocol {
				t.Errorf("TypeOf() = %s, want protocol (err: %v)", TypeOf(err), err)
			}
		})
	}

	srv, _ := newNode(t, map[string]string{"eth_getBlockByNumber": `{"number":"0x10","timestamp":"0x0","transactions":[]}`})
	block, err := nodeClient(srv).BlockByNumber(context.Background(), 16)
	if err != nil || block.Transactions == nil || len(block.Transactions) != 0 {
		t.Errorf("empty block = %+v, %v", block, err)
	}
}

func TestQuantityMalformed(t *testing.T) {
	tests := []struct {
		name   string
		result string
	}{
		{"not_a_string", `42`},
		{"not_hex", `"0xzz"`},
		{"empty", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newNode(t, map[string]string{"eth_blockNumber": tt.result})
			_, err := nodeClient(srv).BlockNumber(context.Background())
			if TypeOf(err) != ErrorTypeProtocol {
				t.Errorf("TypeOf() = %s, want protocol (err: %v)", TypeOf(err), err)
			}
		})
	}
}

func TestBalanceAtRejectsBadAddress(t *testing.T) {
	srv, seen := newNode(t, map[string]string{"eth_getBalance": `"0x0"`})

	_, err := nodeClient(srv).BalanceAt(context.Background(), "0x1234")
	if TypeOf(err) != ErrorTypeProtocol {
		t.Fatalf("TypeOf() = %s, want protocol", TypeOf(err))
	}
	if len(seen()) != 0 {
		t.Errorf("request sent for invalid address")
	}
}

type countingTransport struct {
	n    int
	next http.RoundTripper
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.n++
	return c.next.RoundTrip(r)
}

func TestWithHTTPClient(t *testing.T) {
	srv, _ := newNode(t, map[string]string{"eth_chainId": `"0x1"`})
	rt := &countingTransport{next: srv.Client().Transport}

	c := NewClient(srv.URL, 0, WithHTTPClient(&http.Client{Transport: rt}))
	if _, err := c.ChainID(context.Background()); err != nil {
		t.Fatalf("ChainID() error: %v", err)
	}
	if rt.n != 1 {
		t.Errorf("round trips through injected client = %d, want 1", rt.n)
	}
}
