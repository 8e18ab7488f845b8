package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
)

// decodeResult unmarshals a raw result into v, reporting shape mismatches
// as protocol errors.
func decodeResult(method string, raw json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return protocolErr(method, fmt.Errorf("unexpected result %s: %w", truncate(raw), err))
	}
	return nil
}

func (c *Client) quantity(ctx context.Context, method string, params ...interface{}) (*big.Int, error) {
	raw, err := c.Call(ctx, method, params...)
	if err != nil {
		return nil, err
	}

	var hexStr string
	if err := decodeResult(method, raw, &hexStr); err != nil {
		return nil, err
	}

	val, err := ParseHexBigInt(hexStr)
	if err != nil {
		return nil, protocolErr(method, err)
	}
	return val, nil
}

// ChainID calls eth_chainId.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return c.quantity(ctx, "eth_chainId")
}

// BlockNumber calls eth_blockNumber and returns the current block height.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	val, err := c.quantity(ctx, "eth_blockNumber")
	if err != nil {
		return 0, err
	}
	if !val.IsUint64() {
		return 0, protocolErr("eth_blockNumber", fmt.Errorf("block number %s overflows uint64", val))
	}
	return val.Uint64(), nil
}

// BlockByNumber calls eth_getBlockByNumber with transaction hashes only.
// A null result (unknown block) or a block missing its timestamp or
// transactions field is a protocol error.
func (c *Client) BlockByNumber(ctx context.Context, number uint64) (*Block, error) {
	const method = "eth_getBlockByNumber"

	raw, err := c.Call(ctx, method, Uint64ToHex(number), false)
	if err != nil {
		return nil, err
	}

	var block *Block
	if err := decodeResult(method, raw, &block); err != nil {
		return nil, err
	}
	if block == nil {
		return nil, protocolErr(method, fmt.Errorf("block %d not found", number))
	}
	if block.Timestamp == "" {
		return nil, protocolErr(method, errors.New("block has no timestamp"))
	}
	// "transactions":[] decodes to an empty slice; absent or null stays nil.
	if block.Transactions == nil {
		return nil, protocolErr(method, errors.New("block has no transactions"))
	}
	return block, nil
}

// BalanceAt calls eth_getBalance for addr at the latest block and returns
// the balance in wei.
func (c *Client) BalanceAt(ctx context.Context, addr string) (*big.Int, error) {
	if err := ValidateAddress(addr); err != nil {
		return nil, protocolErr("eth_getBalance", err)
	}
	return c.quantity(ctx, "eth_getBalance", addr, "latest")
}

func truncate(raw json.RawMessage) string {
	const max = 64
	if len(raw) > max {
		return string(raw[:max]) + "..."
	}
	return string(raw)
}
