package awsKmsSigner

import (
	"context"
	cryptoEcdsa "crypto/ecdsa"
	"encoding/asn1"
	"fmt"
	"math/big"

	"github.com/Layr-Labs/crypto-libs/pkg/ecdsa"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/thortx/thortx-go/pkg/signer"
	"github.com/thortx/thortx-go/pkg/thor"
	"go.uber.org/zap"
)

// KMSAPI is the subset of the KMS client the signer uses.
type KMSAPI interface {
	CreateKey(ctx context.Context, params *kms.CreateKeyInput, optFns ...func(*kms.Options)) (*kms.CreateKeyOutput, error)
	CreateAlias(ctx context.Context, params *kms.CreateAliasInput, optFns ...func(*kms.Options)) (*kms.CreateAliasOutput, error)
	GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error)
	Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error)
}

// secp256k1 curve order, for low-S normalization
var (
	curveOrder, _ = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)
	halfOrder     = new(big.Int).Rsh(curveOrder, 1)
)

// AWSKMSSigner signs transaction hashes with an ECC_SECG_P256K1 key held in AWS KMS.
type AWSKMSSigner struct {
	logger    *zap.Logger
	kmsClient KMSAPI
	keyId     string
	publicKey *cryptoEcdsa.PublicKey
	address   thor.Address
}

var _ signer.ISigner = (*AWSKMSSigner)(nil)

// NewAWSKMSSigner builds a KMS client from awsCfg and loads the public key of keyId.
func NewAWSKMSSigner(ctx context.Context, awsCfg aws.Config, keyId string, logger *zap.Logger) (*AWSKMSSigner, error) {
	return NewAWSKMSSignerWithClient(ctx, kms.NewFromConfig(awsCfg), keyId, logger)
}

// NewAWSKMSSignerWithClient is NewAWSKMSSigner with an explicit client.
func NewAWSKMSSignerWithClient(ctx context.Context, client KMSAPI, keyId string, logger *zap.Logger) (*AWSKMSSigner, error) {
	if keyId == "" {
		return nil, fmt.Errorf("kms key id cannot be empty")
	}

	s := &AWSKMSSigner{
		logger:    logger,
		kmsClient: client,
		keyId:     keyId,
	}

	pubKey, err := s.getPublicKey(ctx, keyId)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get public key for key %s", keyId)
	}

	addr, err := (&ecdsa.PublicKey{X: pubKey.X, Y: pubKey.Y}).DeriveAddress()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to derive address from public key for key %s", keyId)
	}
	address, err := thor.ParseAddress(addr.String())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse derived address for key %s", keyId)
	}

	s.publicKey = pubKey
	s.address = address

	logger.Info("Loaded AWS KMS signing key",
		zap.String("keyId", keyId),
		zap.String("address", address.String()),
	)
	return s, nil
}

func (k *AWSKMSSigner) Address() thor.Address {
	return k.address
}

func (k *AWSKMSSigner) KeyId() string {
	return k.keyId
}

// SignHash asks KMS for a DER signature of the digest and converts it into a
// recoverable [R || S || V] signature.
func (k *AWSKMSSigner) SignHash(ctx context.Context, hash thor.Bytes32) ([]byte, error) {
	signOutput, err := k.kmsClient.Sign(ctx, &kms.SignInput{
		KeyId:            aws.String(k.keyId),
		Message:          hash[:],
		SigningAlgorithm: types.SigningAlgorithmSpecEcdsaSha256,
		MessageType:      types.MessageTypeDigest,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to sign hash with kms key %s", k.keyId)
	}

	sig, err := toRecoverableSignature(hash, signOutput.Signature, k.publicKey)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to convert kms signature for key %s", k.keyId)
	}

	k.logger.Debug("Signed hash with AWS KMS key",
		zap.String("keyId", k.keyId),
		zap.String("hash", hash.String()),
	)
	return sig, nil
}

// CreateSigningKey creates a new secp256k1 signing key and an alias for it,
// returning the key id.
func CreateSigningKey(ctx context.Context, client KMSAPI, keyName, aliasName, environment string) (string, error) {
	keyRes, err := client.CreateKey(ctx, &kms.CreateKeyInput{
		KeyUsage:    types.KeyUsageTypeSignVerify,
		KeySpec:     types.KeySpecEccSecgP256k1,
		Description: aws.String(fmt.Sprintf("secp256k1 key for thor transaction signing - %s", keyName)),
		Tags: []types.Tag{
			{TagKey: aws.String("Name"), TagValue: aws.String(keyName)},
			{TagKey: aws.String("Environment"), TagValue: aws.String(environment)},
			{TagKey: aws.String("Purpose"), TagValue: aws.String("tx-signing-key")},
			{TagKey: aws.String("Curve"), TagValue: aws.String("secp256k1")},
		},
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to create kms key %s", keyName)
	}
	keyId := aws.ToString(keyRes.KeyMetadata.KeyId)

	if aliasName != "" {
		_, err = client.CreateAlias(ctx, &kms.CreateAliasInput{
			AliasName:   aws.String(fmt.Sprintf("alias/%s", aliasName)),
			TargetKeyId: aws.String(keyId),
		})
		if err != nil {
			return "", errors.Wrapf(err, "failed to create alias %s for key %s", aliasName, keyId)
		}
	}
	return keyId, nil
}

func (k *AWSKMSSigner) getPublicKey(ctx context.Context, keyId string) (*cryptoEcdsa.PublicKey, error) {
	result, err := k.kmsClient.GetPublicKey(ctx, &kms.GetPublicKeyInput{
		KeyId: aws.String(keyId),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get public key: %w", err)
	}
	return parseECDSAPublicKey(result.PublicKey)
}

// ASN.1 structures of KMS public keys and signatures
type asn1EcSig struct {
	R asn1.RawValue
	S asn1.RawValue
}

type asn1EcPublicKey struct {
	EcPublicKeyInfo asn1EcPublicKeyInfo
	PublicKey       asn1.BitString
}

type asn1EcPublicKeyInfo struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.ObjectIdentifier
}

// parseECDSAPublicKey parses the DER-encoded SubjectPublicKeyInfo from KMS
func parseECDSAPublicKey(derBytes []byte) (*cryptoEcdsa.PublicKey, error) {
	var asn1pubk asn1EcPublicKey
	if _, err := asn1.Unmarshal(derBytes, &asn1pubk); err != nil {
		return nil, fmt.Errorf("failed to parse ASN.1 public key: %w", err)
	}
	return crypto.UnmarshalPubkey(asn1pubk.PublicKey.Bytes)
}

func toRecoverableSignature(hash thor.Bytes32, der []byte, expected *cryptoEcdsa.PublicKey) ([]byte, error) {
	var sigAsn1 asn1EcSig
	if _, err := asn1.Unmarshal(der, &sigAsn1); err != nil {
		return nil, fmt.Errorf("failed to parse ASN.1 signature: %w", err)
	}

	r := new(big.Int).SetBytes(sigAsn1.R.Bytes)
	s := new(big.Int).SetBytes(sigAsn1.S.Bytes)
	if s.Cmp(halfOrder) > 0 {
		s = new(big.Int).Sub(curveOrder, s)
	}

	signature := make([]byte, 65)
	r.FillBytes(signature[0:32])
	s.FillBytes(signature[32:64])

	// only recovery ids 0 and 1 are valid on chain
	for recoveryId := byte(0); recoveryId < 2; recoveryId++ {
		signature[64] = recoveryId
		recovered, err := crypto.SigToPub(hash[:], signature)
		if err != nil {
			continue
		}
		if recovered.X.Cmp(expected.X) == 0 && recovered.Y.Cmp(expected.Y) == 0 {
			return signature, nil
		}
	}
	return nil, fmt.Errorf("could not determine valid recovery id")
}
