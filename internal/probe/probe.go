// =============================================================================
// FILE: internal/probe/probe.go
// ROLE: Probe Runner, the ordered battery of read-only node checks
// =============================================================================
//
// A run is a fixed list of steps executed strictly in order:
//
//   connect ─▶ network ─▶ height ─▶ block ─▶ mining ─▶ peers ─▶ accounts ─▶ balances
//
// Each step prints its result before the next one starts; a step may read
// what an earlier step stored in the Report (block detail needs the height).
// The first error stops the run. Nothing is retried.
//
// OUTCOME
// =======
// Run never calls os.Exit and never lets a panic escape. Whatever happens it
// returns one Outcome, and cmd/probe turns that into the exit status:
//
//   step returned error  ──┐
//                          ├──▶ Outcome{Err} ──▶ "✗ Error: ..." + exit 1
//   step panicked        ──┘
//
//   all steps passed     ─────▶ Outcome{}    ──▶ exit 0
// =============================================================================

package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"

	"go.uber.org/zap"

	"github.com/dmagro/eth-rpc-probe/internal/format"
	"github.com/dmagro/eth-rpc-probe/internal/rpc"
)

// ErrUnclassified wraps faults that escaped a step as a panic.
var ErrUnclassified = errors.New("unclassified fault")

// Transport is what the runner needs from a JSON-RPC client. *rpc.Client
// satisfies it.
type Transport interface {
	Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error)
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	BlockByNumber(ctx context.Context, number uint64) (*rpc.Block, error)
	BalanceAt(ctx context.Context, addr string) (*big.Int, error)
}

// ConnectFunc builds the transport for a run. It must not dial eagerly.
type ConnectFunc func() (Transport, error)

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger for step tracing.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// Runner executes a probe run.
type Runner struct {
	endpoint string
	connect  ConnectFunc
	printer  *format.Printer
	logger   *zap.Logger
}

// New returns a runner that probes endpoint through connect and prints
// results to out.
func New(endpoint string, connect ConnectFunc, out io.Writer, opts ...Option) *Runner {
	r := &Runner{
		endpoint: endpoint,
		connect:  connect,
		printer:  format.NewPrinter(out),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Outcome is the single result of a run.
type Outcome struct {
	Report *Report
	Err    error
}

// Success reports whether every step passed.
func (o Outcome) Success() bool { return o.Err == nil }

// ExitCode maps the outcome to a process exit status.
func (o Outcome) ExitCode() int {
	if o.Err != nil {
		return 1
	}
	return 0
}

type step struct {
	name string
	run  func(ctx context.Context, s *session) error
}

// session carries the live transport and accumulated results between steps.
type session struct {
	transport Transport
	report    *Report
	printer   *format.Printer
}

// steps run after connect, in this order.
var steps = []step{
	{"identify network", identifyNetwork},
	{"latest block", latestBlock},
	{"block detail", blockDetail},
	{"mining status", miningStatus},
	{"peer count", peerCount},
	{"accounts", listAccounts},
	{"balances", fetchBalances},
}

// Run executes every step in order and stops at the first failure.
func (r *Runner) Run(ctx context.Context) (out Outcome) {
	report := &Report{Endpoint: r.endpoint}
	out.Report = report

	defer func() {
		if v := recover(); v != nil {
			r.logger.Error("probe step panicked", zap.Any("panic", v))
			out.Err = fmt.Errorf("%w: %v", ErrUnclassified, v)
			report.Error = out.Err.Error()
		}
	}()

	fail := func(name string, err error) Outcome {
		r.logger.Debug("probe step failed",
			zap.String("step", name),
			zap.String("error_type", string(rpc.TypeOf(err))),
			zap.Error(err))
		out.Err = fmt.Errorf("%s: %w", name, err)
		report.Error = out.Err.Error()
		return out
	}

	r.printer.Header()

	r.logger.Debug("probe step", zap.String("step", "connect"), zap.String("endpoint", r.endpoint))
	transport, err := r.connect()
	if err != nil {
		return fail("connect", err)
	}

	s := &session{transport: transport, report: report, printer: r.printer}
	for _, st := range steps {
		r.logger.Debug("probe step", zap.String("step", st.name))
		if err := st.run(ctx, s); err != nil {
			return fail(st.name, err)
		}
	}

	report.Success = true
	r.printer.Success()
	return out
}

func identifyNetwork(ctx context.Context, s *session) error {
	id, err := s.transport.ChainID(ctx)
	if err != nil {
		return err
	}
	s.report.ChainID = id
	s.printer.Network(id)
	return nil
}

func latestBlock(ctx context.Context, s *session) error {
	height, err := s.transport.BlockNumber(ctx)
	if err != nil {
		return err
	}
	s.report.Block = &BlockSummary{Number: height}
	s.printer.LatestBlock(height)
	return nil
}

func blockDetail(ctx context.Context, s *session) error {
	summary := s.report.Block

	block, err := s.transport.BlockByNumber(ctx, summary.Number)
	if err != nil {
		return err
	}

	const method = "eth_getBlockByNumber"
	ts, err := rpc.ParseHexUint64(block.Timestamp)
	if err != nil {
		return &rpc.Error{Type: rpc.ErrorTypeProtocol, Method: method, Err: fmt.Errorf("timestamp: %w", err)}
	}
	if ts > format.MaxTimestamp {
		return &rpc.Error{Type: rpc.ErrorTypeProtocol, Method: method, Err: fmt.Errorf("timestamp %d out of range", ts)}
	}
	if block.Transactions == nil {
		return &rpc.Error{Type: rpc.ErrorTypeProtocol, Method: method, Err: errors.New("block has no transactions")}
	}
	summary.Timestamp = ts
	summary.Time = format.FormatTimestamp(ts)
	summary.TxCount = len(block.Transactions)

	s.printer.BlockDetail(summary.Timestamp, summary.TxCount)
	return nil
}

func miningStatus(ctx context.Context, s *session) error {
	const method = "eth_mining"

	var mining *bool
	if err := callInto(ctx, s.transport, method, &mining); err != nil {
		return err
	}
	if mining == nil {
		return &rpc.Error{Type: rpc.ErrorTypeProtocol, Method: method, Err: errors.New("null result")}
	}
	s.report.Mining = mining
	s.printer.Mining(*mining)
	return nil
}

func peerCount(ctx context.Context, s *session) error {
	const method = "net_peerCount"

	var hexStr string
	if err := callInto(ctx, s.transport, method, &hexStr); err != nil {
		return err
	}

	peers, err := rpc.ParseHexUint64(hexStr)
	if err != nil {
		return &rpc.Error{Type: rpc.ErrorTypeProtocol, Method: method, Err: err}
	}
	s.report.Peers = &peers
	s.printer.Peers(peers)
	return nil
}

func listAccounts(ctx context.Context, s *session) error {
	const method = "eth_accounts"

	var accounts []string
	if err := callInto(ctx, s.transport, method, &accounts); err != nil {
		return err
	}
	if accounts == nil {
		accounts = []string{}
	}
	s.report.Accounts = accounts
	s.printer.Accounts(len(accounts))
	return nil
}

// fetchBalances queries each account in list order, one call at a time.
func fetchBalances(ctx context.Context, s *session) error {
	if len(s.report.Accounts) == 0 {
		return nil
	}

	s.printer.BalancesHeader()
	for _, addr := range s.report.Accounts {
		wei, err := s.transport.BalanceAt(ctx, addr)
		if err != nil {
			return fmt.Errorf("%s: %w", addr, err)
		}
		s.report.Balances = append(s.report.Balances, AccountBalance{
			Address: addr,
			Wei:     wei,
			Ether:   format.FormatEther(wei),
		})
		s.printer.Balance(addr, wei)
	}
	return nil
}

// callInto issues a raw call with no parameters and decodes its result.
func callInto(ctx context.Context, t Transport, method string, v interface{}) error {
	raw, err := t.Call(ctx, method)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &rpc.Error{Type: rpc.ErrorTypeProtocol, Method: method, Err: fmt.Errorf("unexpected result %s: %w", raw, err)}
	}
	return nil
}
