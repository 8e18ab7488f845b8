package format

import (
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/rodaine/table"
)

const (
	Title     = "Labracodabrador Blockchain Test"
	ruleWidth = 60
)

// Printer renders probe step results. Every method writes complete lines to
// the underlying writer immediately.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) rule() {
	fmt.Fprintln(p.w, strings.Repeat("=", ruleWidth))
}

// Header prints the opening banner.
func (p *Printer) Header() {
	p.rule()
	fmt.Fprintln(p.w, Bold(Title))
	p.rule()
}

func (p *Printer) Network(chainID *big.Int) {
	fmt.Fprintf(p.w, "\n%s Connected to network\n", Check())
	fmt.Fprintf(p.w, "  Chain ID: %s\n", chainID.String())
}

func (p *Printer) LatestBlock(number uint64) {
	fmt.Fprintf(p.w, "\n%s Latest block: %d\n", Check(), number)
}

func (p *Printer) BlockDetail(timestamp uint64, txCount int) {
	fmt.Fprintf(p.w, "  Timestamp: %s\n", FormatTimestamp(timestamp))
	fmt.Fprintf(p.w, "  Transactions: %d\n", txCount)
}

func (p *Printer) Mining(mining bool) {
	fmt.Fprintf(p.w, "\n%s Mining status: %s\n", Check(), ColorBool(mining))
}

func (p *Printer) Peers(count uint64) {
	fmt.Fprintf(p.w, "%s Connected peers: %d\n", Check(), count)
}

func (p *Printer) Accounts(count int) {
	fmt.Fprintf(p.w, "\n%s Available accounts: %d\n", Check(), count)
}

// BalancesHeader opens the balances section. Callers skip it entirely for an
// empty account list.
func (p *Printer) BalancesHeader() {
	fmt.Fprintf(p.w, "\n%s\n", Bold("Account balances:"))
}

func (p *Printer) Balance(address string, wei *big.Int) {
	fmt.Fprintf(p.w, "  %s: %s ETH\n", address, FormatEther(wei))
}

// Success prints the closing banner.
func (p *Printer) Success() {
	fmt.Fprintln(p.w)
	p.rule()
	fmt.Fprintln(p.w, Green("All tests passed!"))
	p.rule()
	fmt.Fprintln(p.w)
}

// Error prints the single failure line.
func Error(w io.Writer, err error) {
	fmt.Fprintf(w, "%s Error: %v\n", Cross(), err)
}

// Timing is one observed RPC call.
type Timing struct {
	Method  string
	Latency time.Duration
	Err     error
}

// Timings renders per-call latencies as a table, in call order.
func Timings(w io.Writer, rows []Timing) {
	fmt.Fprintf(w, "\n%s\n", Bold("RPC calls"))

	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New("Method", "Latency", "Status").
		WithWriter(w).
		WithHeaderFormatter(headerFmt).
		WithWidthFunc(visibleWidth)

	for _, r := range rows {
		status := Green("ok")
		if r.Err != nil {
			status = Red("error")
		}
		tbl.AddRow(r.Method, ColorLatency(r.Latency), status)
	}
	tbl.Print()
}

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// visibleWidth measures s as displayed, ignoring ANSI escape codes.
func visibleWidth(s string) int {
	return utf8.RuneCountInString(ansiRegex.ReplaceAllString(s, ""))
}
