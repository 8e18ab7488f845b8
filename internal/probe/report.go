package probe

import (
	"math/big"
	"time"

	"github.com/dmagro/eth-rpc-probe/internal/format"
)

// BlockSummary is the latest block as seen at the time of the run.
type BlockSummary struct {
	Number    uint64 `json:"number"`
	Timestamp uint64 `json:"timestamp"`
	Time      string `json:"time"`
	TxCount   int    `json:"tx_count"`
}

// AccountBalance is one point-in-time balance read.
type AccountBalance struct {
	Address string   `json:"address"`
	Wei     *big.Int `json:"wei"`
	Ether   string   `json:"ether"`
}

// Report accumulates what a run printed. Fields for steps that never ran
// stay nil.
type Report struct {
	Endpoint string           `json:"endpoint"`
	ChainID  *big.Int         `json:"chain_id,omitempty"`
	Block    *BlockSummary    `json:"block,omitempty"`
	Mining   *bool            `json:"mining,omitempty"`
	Peers    *uint64          `json:"peers,omitempty"`
	Accounts []string         `json:"accounts,omitempty"`
	Balances []AccountBalance `json:"balances,omitempty"`
	Calls    []Call           `json:"calls,omitempty"`
	Success  bool             `json:"success"`
	Error    string           `json:"error,omitempty"`
}

// Call is one RPC call as recorded by a Recorder.
type Call struct {
	Method    string `json:"method"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`

	latency time.Duration
	err     error
}

// Recorder collects every RPC call in order. It implements rpc.Observer.
type Recorder struct {
	calls []Call
}

func (r *Recorder) Observe(method string, err error, started time.Time) {
	latency := time.Since(started)
	c := Call{Method: method, LatencyMS: latency.Milliseconds(), latency: latency, err: err}
	if err != nil {
		c.Error = err.Error()
	}
	r.calls = append(r.calls, c)
}

// Calls returns the recorded calls in call order.
func (r *Recorder) Calls() []Call {
	return append([]Call(nil), r.calls...)
}

// Timings converts the recorded calls for format.Timings.
func (r *Recorder) Timings() []format.Timing {
	out := make([]format.Timing, len(r.calls))
	for i, c := range r.calls {
		out[i] = format.Timing{Method: c.Method, Latency: c.latency, Err: c.err}
	}
	return out
}
