package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	logger "log/slog"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
)

// Caller is the JSON-RPC surface the adapter needs; *rpc.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, method string, params []any) (any, error)
}

// Metrics counts transactions dropped while decoding a block.
type Metrics interface {
	ObserveOutcome(outcome string)
}

// OutcomeUnparsable is reported for transactions whose fields cannot be decoded.
const OutcomeUnparsable = "unparsable"

type EVMAdapter struct {
	chainID domain.ChainID
	client  Caller
	metrics Metrics
	log     *logger.Logger
}

func NewEVMAdapter(chainID domain.ChainID, client Caller) *EVMAdapter {
	return &EVMAdapter{
		chainID: chainID,
		client:  client,
		log:     logger.Default().With("chain", chainID),
	}
}

// WithMetrics reports skipped transactions to m.
func (a *EVMAdapter) WithMetrics(m Metrics) *EVMAdapter {
	a.metrics = m
	return a
}

func (a *EVMAdapter) GetLatestBlock(ctx context.Context) (uint64, error) {
	result, err := a.client.Call(ctx, "eth_blockNumber", nil)
	if err != nil {
		return 0, fmt.Errorf("eth_blockNumber failed: %w", err)
	}

	blockHex, ok := result.(string)
	if !ok {
		return 0, fmt.Errorf("invalid block number response: %v", result)
	}

	return parseHexString(blockHex)
}

// GetBlock fetches a block with full transaction objects.
func (a *EVMAdapter) GetBlock(ctx context.Context, blockNumber uint64) (*domain.Block, error) {
	blockHex := fmt.Sprintf("0x%x", blockNumber)
	result, err := a.client.Call(ctx, "eth_getBlockByNumber", []any{blockHex, true})
	if err != nil {
		return nil, fmt.Errorf("eth_getBlockByNumber failed: %w", err)
	}
	if result == nil {
		return nil, nil // Not found/future
	}

	rawBlock, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid block format")
	}

	block, err := a.parseBlock(rawBlock)
	if err != nil {
		return nil, err
	}

	rawTxs, _ := rawBlock["transactions"].([]any)
	block.Transactions = make([]domain.TransactionEvent, 0, len(rawTxs))
	for i, txDataRaw := range rawTxs {
		txData, ok := txDataRaw.(map[string]any)
		if !ok {
			// Block was returned with hashes only.
			return nil, fmt.Errorf("block %d: transaction %d is not a full object", block.Number, i)
		}

		tx, err := a.parseTransaction(txData, block)
		if err != nil {
			a.log.Warn("parse tx failed", "error", err, "block", block.Number, "index", i)
			if a.metrics != nil {
				a.metrics.ObserveOutcome(OutcomeUnparsable)
			}
			continue
		}
		block.Transactions = append(block.Transactions, tx)
	}

	return block, nil
}

func (a *EVMAdapter) parseBlock(raw map[string]any) (*domain.Block, error) {
	number, err := parseHexString(getString(raw["number"]))
	if err != nil {
		return nil, fmt.Errorf("block number: %w", err)
	}
	timestamp, err := parseHexString(getString(raw["timestamp"]))
	if err != nil {
		return nil, fmt.Errorf("block %d timestamp: %w", number, err)
	}

	return &domain.Block{
		ChainID:    a.chainID,
		Number:     number,
		Hash:       getString(raw["hash"]),
		ParentHash: getString(raw["parentHash"]),
		Timestamp:  timestamp,
	}, nil
}

func (a *EVMAdapter) parseTransaction(raw map[string]any, block *domain.Block) (domain.TransactionEvent, error) {
	hash := getString(raw["hash"])
	value, err := hexToBigInt(getString(raw["value"]))
	if err != nil {
		return domain.TransactionEvent{}, fmt.Errorf("tx %s value: %w", hash, err)
	}

	return domain.TransactionEvent{
		ChainID:        a.chainID,
		Hash:           hash,
		BlockNumber:    block.Number,
		From:           strings.ToLower(getString(raw["from"])),
		To:             strings.ToLower(getString(raw["to"])), // empty for contract creation
		Value:          value,
		BlockTimestamp: block.Timestamp, // Inherit from block
	}, nil
}

func (a *EVMAdapter) GetChainID() domain.ChainID {
	return a.chainID
}

func hexToBigInt(hexStr string) (*big.Int, error) {
	if hexStr == "" || hexStr == "0x" {
		return new(big.Int), nil
	}
	return parseHexToBigInt(hexStr)
}

func parseHexToBigInt(hexStr string) (*big.Int, error) {
	n := new(big.Int)
	if _, ok := n.SetString(strings.TrimPrefix(hexStr, "0x"), 16); !ok {
		return nil, fmt.Errorf("invalid hex: %s", hexStr)
	}
	return n, nil
}

func parseHexString(hexStr string) (uint64, error) {
	n, err := parseHexToBigInt(hexStr)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("hex out of range: %s", hexStr)
	}
	return n.Uint64(), nil
}

func getString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
