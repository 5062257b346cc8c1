package awsKmsSigner

import (
	"context"
	cryptoEcdsa "crypto/ecdsa"
	"encoding/asn1"
	"fmt"
	"math/big"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thortx/thortx-go/pkg/logger"
	"github.com/thortx/thortx-go/pkg/thor"
	"github.com/thortx/thortx-go/pkg/tx"
)

var (
	oidEcPublicKey = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidSecp256k1   = asn1.ObjectIdentifier{1, 3, 132, 0, 10}
)

// fakeKMS answers like KMS does, backed by a local key.
type fakeKMS struct {
	key       *cryptoEcdsa.PrivateKey
	highS     bool
	signCalls int
	aliases   map[string]string
}

func (f *fakeKMS) CreateKey(ctx context.Context, params *kms.CreateKeyInput, optFns ...func(*kms.Options)) (*kms.CreateKeyOutput, error) {
	if params.KeySpec != kmstypes.KeySpecEccSecgP256k1 {
		return nil, fmt.Errorf("unexpected key spec %s", params.KeySpec)
	}
	return &kms.CreateKeyOutput{KeyMetadata: &kmstypes.KeyMetadata{KeyId: aws.String("test-key-id")}}, nil
}

func (f *fakeKMS) CreateAlias(ctx context.Context, params *kms.CreateAliasInput, optFns ...func(*kms.Options)) (*kms.CreateAliasOutput, error) {
	f.aliases[aws.ToString(params.AliasName)] = aws.ToString(params.TargetKeyId)
	return &kms.CreateAliasOutput{}, nil
}

func (f *fakeKMS) GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error) {
	pub := crypto.FromECDSAPub(&f.key.PublicKey)
	der, err := asn1.Marshal(asn1EcPublicKey{
		EcPublicKeyInfo: asn1EcPublicKeyInfo{Algorithm: oidEcPublicKey, Parameters: oidSecp256k1},
		PublicKey:       asn1.BitString{Bytes: pub, BitLength: len(pub) * 8},
	})
	if err != nil {
		return nil, err
	}
	return &kms.GetPublicKeyOutput{PublicKey: der}, nil
}

func (f *fakeKMS) Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error) {
	f.signCalls++
	sig, err := crypto.Sign(params.Message, f.key)
	if err != nil {
		return nil, err
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if f.highS {
		s = new(big.Int).Sub(curveOrder, s)
	}
	der, err := asn1.Marshal(struct {
		R *big.Int
		S *big.Int
	}{r, s})
	if err != nil {
		return nil, err
	}
	return &kms.SignOutput{Signature: der}, nil
}

func Test_AWSKMSSigner(t *testing.T) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: true})
	require.NoError(t, err)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	expected := thor.Address(crypto.PubkeyToAddress(key.PublicKey))

	to := thor.MustParseAddress("0xd3ae78222beadb038203be21ed5ce7c9b1bff602")
	body := tx.NewBuilder().ChainTag(0x27).Expiration(32).Gas(21000).Nonce(7).Clause(tx.NewClause(&to)).Build()
	hash, err := tx.SigningHash(body)
	require.NoError(t, err)

	t.Run("Should derive the address from the KMS public key", func(t *testing.T) {
		s, err := NewAWSKMSSignerWithClient(context.Background(), &fakeKMS{key: key}, "test-key-id", l)
		require.NoError(t, err)
		assert.Equal(t, expected, s.Address())
		assert.Equal(t, "test-key-id", s.KeyId())
	})

	for _, highS := range []bool{false, true} {
		t.Run(fmt.Sprintf("Should produce a recoverable low-S signature (highS=%v)", highS), func(t *testing.T) {
			fake := &fakeKMS{key: key, highS: highS}
			s, err := NewAWSKMSSignerWithClient(context.Background(), fake, "test-key-id", l)
			require.NoError(t, err)

			sig, err := s.SignHash(context.Background(), hash)
			require.NoError(t, err)
			require.Len(t, sig, 65)
			assert.LessOrEqual(t, sig[64], byte(1))
			assert.LessOrEqual(t, new(big.Int).SetBytes(sig[32:64]).Cmp(halfOrder), 0)
			assert.Equal(t, 1, fake.signCalls)

			signed, err := tx.Attach(body, sig)
			require.NoError(t, err)
			signer, err := tx.Signer(signed)
			require.NoError(t, err)
			assert.Equal(t, expected, signer)
		})
	}

	t.Run("Should fail when the signature belongs to another key", func(t *testing.T) {
		other, err := crypto.GenerateKey()
		require.NoError(t, err)
		s, err := NewAWSKMSSignerWithClient(context.Background(), &fakeKMS{key: key}, "test-key-id", l)
		require.NoError(t, err)
		s.kmsClient = &fakeKMS{key: other}

		_, err = s.SignHash(context.Background(), hash)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "recovery id")
	})

	t.Run("Should create a key and its alias", func(t *testing.T) {
		fake := &fakeKMS{key: key, aliases: map[string]string{}}
		keyId, err := CreateSigningKey(context.Background(), fake, "tx-key", "thortx-test", "testnet")
		require.NoError(t, err)
		assert.Equal(t, "test-key-id", keyId)
		assert.Equal(t, "test-key-id", fake.aliases["alias/thortx-test"])
	})

	t.Run("Should require a key id", func(t *testing.T) {
		_, err := NewAWSKMSSignerWithClient(context.Background(), &fakeKMS{key: key}, "", l)
		assert.Error(t, err)
	})
}
