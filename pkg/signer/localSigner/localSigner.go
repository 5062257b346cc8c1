package localSigner

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/thortx/thortx-go/pkg/signer"
	"github.com/thortx/thortx-go/pkg/thor"
	"go.uber.org/zap"
)

// LocalSigner signs with a secp256k1 key held in process memory.
type LocalSigner struct {
	logger     *zap.Logger
	keyId      string
	privateKey *ecdsa.PrivateKey
	address    thor.Address
}

var _ signer.ISigner = (*LocalSigner)(nil)

func newKeyId() string {
	return fmt.Sprintf("local-key-%s", uuid.New().String())
}

// NewLocalSigner wraps an existing private key.
func NewLocalSigner(privateKey *ecdsa.PrivateKey, logger *zap.Logger) (*LocalSigner, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("private key cannot be nil")
	}

	ls := &LocalSigner{
		logger:     logger,
		keyId:      newKeyId(),
		privateKey: privateKey,
		address:    thor.Address(crypto.PubkeyToAddress(privateKey.PublicKey)),
	}

	logger.Info("Loaded local signing key",
		zap.String("keyId", ls.keyId),
		zap.String("address", ls.address.String()),
	)
	return ls, nil
}

// NewLocalSignerFromHex loads a private key from hex. The "0x" prefix is optional.
func NewLocalSignerFromHex(privateKeyHex string, logger *zap.Logger) (*LocalSigner, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key from hex: %w", err)
	}
	return NewLocalSigner(privateKey, logger)
}

// GenerateLocalSigner creates a signer with a fresh random key.
func GenerateLocalSigner(logger *zap.Logger) (*LocalSigner, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate secp256k1 key: %w", err)
	}
	return NewLocalSigner(privateKey, logger)
}

func (l *LocalSigner) KeyId() string {
	return l.keyId
}

func (l *LocalSigner) Address() thor.Address {
	return l.address
}

func (l *LocalSigner) SignHash(ctx context.Context, hash thor.Bytes32) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	signature, err := crypto.Sign(hash[:], l.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign hash with key %s: %w", l.keyId, err)
	}

	l.logger.Debug("Signed hash with local key",
		zap.String("keyId", l.keyId),
		zap.String("hash", hash.String()),
		zap.Int("signatureLen", len(signature)),
	)
	return signature, nil
}
