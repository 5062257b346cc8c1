package transactionSigner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/thortx/thortx-go/pkg/clients/thorClient"
	"github.com/thortx/thortx-go/pkg/persistence"
	"github.com/thortx/thortx-go/pkg/signer"
	"github.com/thortx/thortx-go/pkg/thor"
	"github.com/thortx/thortx-go/pkg/tx"
	"go.uber.org/zap"
)

// ErrTransactionReverted is returned together with the receipt of a
// transaction that was included but reverted.
var ErrTransactionReverted = errors.New("transaction reverted")

// ThorTransactionSigner implements ITransactionSigner with an external key
// signer and a thor node.
type ThorTransactionSigner struct {
	cfg       SignerConfig
	client    IThorClient
	keySigner signer.ISigner
	journal   persistence.ITxJournal
	logger    *zap.Logger
	nonceFn   func() uint64
}

var _ ITransactionSigner = (*ThorTransactionSigner)(nil)

// NewThorTransactionSigner wires the pipeline. journal may be nil, in which
// case nothing is recorded.
func NewThorTransactionSigner(
	cfg *SignerConfig,
	client IThorClient,
	keySigner signer.ISigner,
	journal persistence.ITxJournal,
	logger *zap.Logger,
) *ThorTransactionSigner {
	return &ThorTransactionSigner{
		cfg:       *cfg,
		client:    client,
		keySigner: keySigner,
		journal:   journal,
		logger:    logger,
		nonceFn: func() uint64 {
			return uint64(time.Now().UnixMilli())
		},
	}
}

func (ts *ThorTransactionSigner) GetFromAddress() thor.Address {
	return ts.keySigner.Address()
}

func (ts *ThorTransactionSigner) NewBody(ctx context.Context, clauses []*tx.Clause, gas uint64) (*tx.Body, error) {
	chainTag := ts.cfg.ChainTag
	if chainTag == 0 {
		tag, err := ts.client.ChainTag(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get chain tag: %w", err)
		}
		chainTag = tag
	}

	blockRef, err := ts.client.BlockRef(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get block ref: %w", err)
	}

	if gas == 0 {
		gas, err = tx.IntrinsicGas(clauses...)
		if err != nil {
			return nil, fmt.Errorf("failed to compute intrinsic gas: %w", err)
		}
	}

	builder := tx.NewBuilder().
		ChainTag(chainTag).
		BlockRef(blockRef).
		Expiration(ts.cfg.Expiration).
		GasPriceCoef(ts.cfg.GasPriceCoef).
		Gas(gas).
		Nonce(ts.nonceFn())
	for _, c := range clauses {
		builder.Clause(c)
	}
	return builder.Build(), nil
}

func (ts *ThorTransactionSigner) SignTransaction(ctx context.Context, body *tx.Body) (*tx.Signed, error) {
	hash, err := tx.SigningHash(body)
	if err != nil {
		return nil, fmt.Errorf("failed to compute signing hash: %w", err)
	}

	sig, err := ts.keySigner.SignHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	signed, err := tx.Attach(body, sig)
	if err != nil {
		return nil, fmt.Errorf("failed to attach signature: %w", err)
	}

	origin, err := tx.Signer(signed)
	if err != nil {
		return nil, fmt.Errorf("failed to recover signer: %w", err)
	}
	if origin != ts.keySigner.Address() {
		return nil, fmt.Errorf("signature recovers to %s, expected %s", origin, ts.keySigner.Address())
	}
	return signed, nil
}

// SignAndSendTransaction signs body, submits it, journals it as pending and
// waits for its receipt. A reverted transaction returns its receipt and
// ErrTransactionReverted.
func (ts *ThorTransactionSigner) SignAndSendTransaction(ctx context.Context, body *tx.Body) (*thorClient.Receipt, error) {
	signed, err := ts.SignTransaction(ctx, body)
	if err != nil {
		return nil, err
	}

	raw, err := tx.EncodeSigned(signed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode signed transaction: %w", err)
	}
	localID, err := tx.ID(signed)
	if err != nil {
		return nil, fmt.Errorf("failed to compute transaction id: %w", err)
	}

	ts.logger.Info("SignAndSendTransaction: sending transaction",
		zap.String("txId", localID.String()),
		zap.String("origin", ts.GetFromAddress().String()),
		zap.Int("clauses", len(body.Clauses())),
		zap.Uint64("gas", body.Gas()),
		zap.String("blockRef", body.BlockRef().String()),
		zap.Uint64("nonce", body.Nonce()),
	)

	id, err := ts.client.SendRawTransaction(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}
	if id != localID {
		ts.logger.Warn("Node returned a different transaction id",
			zap.String("localId", localID.String()),
			zap.String("nodeId", id.String()),
		)
	}

	if ts.journal != nil {
		record := persistence.NewPendingRecord(id, ts.GetFromAddress(), hexutil.Encode(raw))
		if err := ts.journal.SaveTransaction(record); err != nil {
			ts.logger.Warn("Failed to journal transaction", zap.String("txId", id.String()), zap.Error(err))
		}
	}

	receipt, err := ts.client.WaitForReceipt(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for transaction receipt: %w", err)
	}
	ts.recordReceipt(id, receipt)

	if receipt.Reverted {
		ts.logger.Error("SignAndSendTransaction: transaction reverted",
			zap.String("txId", id.String()),
			zap.Uint64("gasUsed", receipt.GasUsed),
			zap.Uint32("blockNumber", receipt.Meta.BlockNumber),
		)
		return receipt, fmt.Errorf("%w: %s", ErrTransactionReverted, id)
	}

	ts.logger.Info("SignAndSendTransaction: transaction succeeded",
		zap.String("txId", id.String()),
		zap.Uint64("gasUsed", receipt.GasUsed),
		zap.Uint32("blockNumber", receipt.Meta.BlockNumber),
	)
	return receipt, nil
}

func (ts *ThorTransactionSigner) recordReceipt(id thor.Bytes32, receipt *thorClient.Receipt) {
	if ts.journal == nil {
		return
	}
	status := persistence.TxStatusConfirmed
	if receipt.Reverted {
		status = persistence.TxStatusReverted
	}
	err := ts.journal.UpdateStatus(id, &persistence.StatusUpdate{
		Status:      status,
		BlockNumber: receipt.Meta.BlockNumber,
		BlockID:     receipt.Meta.BlockID,
		GasUsed:     receipt.GasUsed,
	})
	if err != nil {
		ts.logger.Warn("Failed to update journal", zap.String("txId", id.String()), zap.Error(err))
	}
}

// SyncPending looks up receipts of journaled pending transactions once and
// records any that were included. It returns the records still pending.
func (ts *ThorTransactionSigner) SyncPending(ctx context.Context) ([]*persistence.TxRecord, error) {
	if ts.journal == nil {
		return nil, fmt.Errorf("no journal configured")
	}

	records, err := ts.journal.ListTransactions()
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}

	var pending []*persistence.TxRecord
	for _, record := range records {
		if record.Status != persistence.TxStatusPending {
			continue
		}
		receipt, err := ts.client.GetReceipt(ctx, record.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get receipt of %s: %w", record.ID, err)
		}
		if receipt == nil {
			pending = append(pending, record)
			continue
		}
		ts.recordReceipt(record.ID, receipt)
		ts.logger.Info("Pending transaction resolved",
			zap.String("txId", record.ID.String()),
			zap.Bool("reverted", receipt.Reverted),
		)
	}
	return pending, nil
}
