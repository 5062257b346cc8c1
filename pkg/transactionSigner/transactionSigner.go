package transactionSigner

import (
	"context"
	"fmt"

	"github.com/thortx/thortx-go/pkg/clients/thorClient"
	"github.com/thortx/thortx-go/pkg/persistence"
	"github.com/thortx/thortx-go/pkg/signer"
	"github.com/thortx/thortx-go/pkg/thor"
	"github.com/thortx/thortx-go/pkg/tx"
	"go.uber.org/zap"
)

// ITransactionSigner builds, signs and submits thor transactions.
type ITransactionSigner interface {
	// NewBody fills chain tag, block ref, expiration, nonce and gas for the
	// given clauses. A gas of 0 means the intrinsic gas of the clauses.
	NewBody(ctx context.Context, clauses []*tx.Clause, gas uint64) (*tx.Body, error)

	// SignTransaction signs body and checks the recovered signer.
	SignTransaction(ctx context.Context, body *tx.Body) (*tx.Signed, error)

	// SignAndSendTransaction signs body, submits it and waits for the receipt.
	SignAndSendTransaction(ctx context.Context, body *tx.Body) (*thorClient.Receipt, error)

	// GetFromAddress returns the address that will be used for signing
	GetFromAddress() thor.Address
}

// IThorClient is the part of the chain client the signer depends on.
type IThorClient interface {
	ChainTag(ctx context.Context) (byte, error)
	BlockRef(ctx context.Context) (thor.BlockRef, error)
	SendRawTransaction(ctx context.Context, raw []byte) (thor.Bytes32, error)
	GetReceipt(ctx context.Context, id thor.Bytes32) (*thorClient.Receipt, error)
	WaitForReceipt(ctx context.Context, id thor.Bytes32) (*thorClient.Receipt, error)
}

var _ IThorClient = (*thorClient.Client)(nil)

type SignerConfig struct {
	// Expiration in blocks, counted from the block ref.
	Expiration   uint32 `json:"expiration" yaml:"expiration"`
	GasPriceCoef uint8  `json:"gasPriceCoef" yaml:"gasPriceCoef"`
	// ChainTag skips the genesis lookup when non-zero.
	ChainTag byte `json:"chainTag" yaml:"chainTag"`
}

func NewTransactionSigner(
	cfg *SignerConfig,
	client IThorClient,
	keySigner signer.ISigner,
	journal persistence.ITxJournal,
	logger *zap.Logger,
) (ITransactionSigner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("signer config cannot be nil")
	}
	if client == nil {
		return nil, fmt.Errorf("thor client cannot be nil")
	}
	if keySigner == nil {
		return nil, fmt.Errorf("key signer cannot be nil")
	}
	return NewThorTransactionSigner(cfg, client, keySigner, journal, logger), nil
}
