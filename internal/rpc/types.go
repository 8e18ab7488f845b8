// =============================================================================
// FILE: internal/rpc/types.go
// ROLE: Wire types and the error taxonomy shared by the transport and the probe
// =============================================================================
//
// Ethereum's JSON-RPC returns numbers as hex strings ("0x1a2b"). The types here
// mirror the wire format exactly; conversion to native Go values happens in the
// convenience methods (methods.go) and the hex helpers (hex.go), never in the
// structs themselves.
//
//   cmd/probe ──▶ internal/probe ──▶ internal/rpc (this package) ──▶ net/http
//
// ERROR TAXONOMY
// ==============
//   connectivity  the endpoint could not be reached, answered non-200, or
//                 returned a JSON-RPC error object
//   protocol      a response arrived but its result does not have the
//                 expected shape (non-hex quantity, null block, ...)
//   unclassified  anything else; the probe maps recovered panics here
// =============================================================================

package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// Response is a JSON-RPC 2.0 response envelope. Result stays raw so each
// caller decodes it into the shape it expects.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the error object a node returns in place of a result.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Block is the subset of eth_getBlockByNumber the probe reads. Transactions
// holds hashes or full objects depending on the fullTx flag; only its length
// is used.
type Block struct {
	Number       string            `json:"number"`
	Hash         string            `json:"hash"`
	Timestamp    string            `json:"timestamp"`
	Transactions []json.RawMessage `json:"transactions"`
}

// ErrorType classifies a transport failure.
type ErrorType string

const (
	ErrorTypeConnectivity ErrorType = "connectivity"
	ErrorTypeProtocol     ErrorType = "protocol"
	ErrorTypeUnclassified ErrorType = "unclassified"
)

// Error is returned by every Client method.
type Error struct {
	Type   ErrorType
	Method string
	Err    error
}

func (e *Error) Error() string {
	if e.Method == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// TypeOf reports the ErrorType carried anywhere in err's chain, or
// ErrorTypeUnclassified when there is none.
func TypeOf(err error) ErrorType {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Type
	}
	return ErrorTypeUnclassified
}

func connectivityErr(method string, err error) error {
	return &Error{Type: ErrorTypeConnectivity, Method: method, Err: err}
}

func protocolErr(method string, err error) error {
	return &Error{Type: ErrorTypeProtocol, Method: method, Err: err}
}
