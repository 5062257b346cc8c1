package tx

import (
	"bytes"
	"encoding/hex"
	"errors"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thortx/thortx-go/pkg/thor"
)

// well-known solo network account, never use outside of tests
const testPrivateKey = "dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65"

// thor-devkit test key, its address, and the id of the multi-clause body it signs
const (
	devkitPrivateKey = "7582be841ca040aa940fff6c05773129e135623e41acce3e0b8ba520dc1ae26a"
	devkitSigner     = "0xd989829d88b0ed1b06edf5c50174ecfa64f14a64"
	devkitTxID       = "0xda90eaea52980bc4bb8d40cb2ff84d78433b3b4a6e7d50b75736c5e3e77b71ec"
)

// transfer body with the signature 0x11 * 64 || 0x01
const transferSignedWithFixedSig = "f86e278020e0df947567d83b7b8d80addcb281a71d54fc7b3364ffed880de0b6b3a764000080808252088001c0b841" +
	"1111111111111111111111111111111111111111111111111111111111111111" +
	"111111111111111111111111111111111111111111111111111111111111111101"

func signBody(t *testing.T, body *Body, keyHex string) []byte {
	t.Helper()
	key, err := crypto.HexToECDSA(keyHex)
	require.NoError(t, err)
	hash, err := SigningHash(body)
	require.NoError(t, err)
	sig, err := crypto.Sign(hash[:], key)
	require.NoError(t, err)
	return sig
}

// listPayload strips the RLP list header.
func listPayload(t *testing.T, enc []byte) []byte {
	t.Helper()
	content, rest, err := rlp.SplitList(enc)
	require.NoError(t, err)
	require.Empty(t, rest)
	return content
}

func Test_Attach(t *testing.T) {
	t.Run("Should fail without a signature", func(t *testing.T) {
		_, err := Attach(transferBody(), nil)
		var missing *MissingSignatureError
		require.True(t, errors.As(err, &missing))

		_, err = Attach(transferBody(), []byte{})
		require.True(t, errors.As(err, &missing))
	})

	t.Run("Should copy the signature", func(t *testing.T) {
		sig := bytes.Repeat([]byte{1}, SignatureLength)
		signed, err := Attach(transferBody(), sig)
		require.NoError(t, err)
		sig[0] = 2
		assert.Equal(t, byte(1), signed.Signature()[0])
	})

	t.Run("Should accept a signature it cannot verify", func(t *testing.T) {
		signed, err := Attach(transferBody(), []byte{0xde, 0xad})
		require.NoError(t, err)
		_, err = Signer(signed)
		var recErr *RecoveryError
		assert.True(t, errors.As(err, &recErr))
	})
}

func Test_EncodeSigned(t *testing.T) {
	body := transferBody()
	sig := signBody(t, body, testPrivateKey)
	signed, err := Attach(body, sig)
	require.NoError(t, err)

	t.Run("Should append the signature after the body fields", func(t *testing.T) {
		raw, err := EncodeSigned(signed)
		require.NoError(t, err)

		// 43 byte body payload + 67 byte signature string
		expected := "f86e" + transferEncoding[2:] + "b841" + hex.EncodeToString(sig)
		assert.Equal(t, expected, hex.EncodeToString(raw))
	})

	t.Run("Should produce the recorded raw bytes for a fixed signature", func(t *testing.T) {
		fixed := append(bytes.Repeat([]byte{0x11}, 64), 0x01)
		s, err := Attach(transferBody(), fixed)
		require.NoError(t, err)
		raw, err := EncodeSigned(s)
		require.NoError(t, err)
		assert.Equal(t, transferSignedWithFixedSig, hex.EncodeToString(raw))
	})

	t.Run("Should keep the unsigned payload as a prefix of the signed payload", func(t *testing.T) {
		for _, b := range []*Body{transferBody(), multiClauseBody(), NewBuilder().Build()} {
			enc, err := Encode(b)
			require.NoError(t, err)
			s, err := Attach(b, sig)
			require.NoError(t, err)
			raw, err := EncodeSigned(s)
			require.NoError(t, err)

			signedPayload := listPayload(t, raw)
			assert.True(t, bytes.HasPrefix(signedPayload, listPayload(t, enc)))
			assert.True(t, bytes.HasSuffix(signedPayload, sig))
		}
	})

	t.Run("Should decode back to the same signed transaction", func(t *testing.T) {
		raw, err := EncodeSigned(signed)
		require.NoError(t, err)
		decoded, err := DecodeSigned(raw)
		require.NoError(t, err)
		assert.Equal(t, sig, decoded.Signature())

		again, err := EncodeSigned(decoded)
		require.NoError(t, err)
		assert.Equal(t, raw, again)
	})

	t.Run("Should refuse to decode an unsigned encoding as signed", func(t *testing.T) {
		enc, err := Encode(body)
		require.NoError(t, err)
		_, err = DecodeSigned(enc)
		var missing *MissingSignatureError
		assert.True(t, errors.As(err, &missing))
	})
}

func Test_Signer(t *testing.T) {
	key, err := crypto.HexToECDSA(testPrivateKey)
	require.NoError(t, err)
	expected := thor.Address(crypto.PubkeyToAddress(key.PublicKey))

	body := transferBody()
	sig := signBody(t, body, testPrivateKey)
	signed, err := Attach(body, sig)
	require.NoError(t, err)

	t.Run("Should recover the address of the signing key", func(t *testing.T) {
		signer, err := Signer(signed)
		require.NoError(t, err)
		assert.Equal(t, expected, signer)
		assert.Equal(t, testAddress, signer.String())
	})

	t.Run("Should derive the id from signing hash and signer", func(t *testing.T) {
		id, err := ID(signed)
		require.NoError(t, err)
		hash, err := SigningHash(body)
		require.NoError(t, err)
		assert.Equal(t, thor.Blake2b256(hash[:], expected[:]), id)

		again, err := ID(signed)
		require.NoError(t, err)
		assert.Equal(t, id, again)
	})

	t.Run("Should match the recorded signer and id of the reference body", func(t *testing.T) {
		ref := multiClauseBody()
		s, err := Attach(ref, signBody(t, ref, devkitPrivateKey))
		require.NoError(t, err)

		signer, err := Signer(s)
		require.NoError(t, err)
		assert.Equal(t, devkitSigner, signer.String())

		id, err := ID(s)
		require.NoError(t, err)
		assert.Equal(t, devkitTxID, id.String())
	})

	t.Run("Should reject an invalid recovery id", func(t *testing.T) {
		bad := append([]byte(nil), sig...)
		bad[64] = 27
		s, err := Attach(body, bad)
		require.NoError(t, err)
		_, err = Signer(s)
		var recErr *RecoveryError
		require.True(t, errors.As(err, &recErr))
		assert.Contains(t, err.Error(), "recovery id")

		_, err = ID(s)
		assert.True(t, errors.As(err, &recErr))
	})

	t.Run("Should reject a signature of the wrong length", func(t *testing.T) {
		s, err := Attach(body, sig[:64])
		require.NoError(t, err)
		_, err = Signer(s)
		var recErr *RecoveryError
		assert.True(t, errors.As(err, &recErr))
	})

	t.Run("Should recover a different signer once the body changes", func(t *testing.T) {
		other := NewBuilder().ChainTag(0x27).Nonce(2).Build()
		s, err := Attach(other, sig)
		require.NoError(t, err)
		signer, err := Signer(s)
		if err == nil {
			assert.NotEqual(t, expected, signer)
		}
	})

	t.Run("Should be safe for concurrent use", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				signer, err := Signer(signed)
				assert.NoError(t, err)
				assert.Equal(t, expected, signer)
			}()
		}
		wg.Wait()
	})
}

func Test_Delegator(t *testing.T) {
	originKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	delegatorKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	origin := thor.Address(crypto.PubkeyToAddress(originKey.PublicKey))
	gasPayer := thor.Address(crypto.PubkeyToAddress(delegatorKey.PublicKey))

	to := thor.MustParseAddress(testAddress)
	body := NewBuilder().ChainTag(0x27).Gas(21000).Features(DelegationFeature).
		Clause(NewClause(&to).WithValue(oneVET())).Build()

	hash, err := SigningHash(body)
	require.NoError(t, err)
	originSig, err := crypto.Sign(hash[:], originKey)
	require.NoError(t, err)
	dHash, err := DelegatorSigningHash(body, origin)
	require.NoError(t, err)
	delegatorSig, err := crypto.Sign(dHash[:], delegatorKey)
	require.NoError(t, err)

	t.Run("Should recover origin and delegator", func(t *testing.T) {
		signed, err := Attach(body, append(originSig, delegatorSig...))
		require.NoError(t, err)

		signer, err := Signer(signed)
		require.NoError(t, err)
		assert.Equal(t, origin, signer)

		delegator, err := Delegator(signed)
		require.NoError(t, err)
		require.NotNil(t, delegator)
		assert.Equal(t, gasPayer, *delegator)
	})

	t.Run("Should fail when the delegator signature is missing", func(t *testing.T) {
		signed, err := Attach(body, originSig)
		require.NoError(t, err)
		_, err = Signer(signed)
		var recErr *RecoveryError
		assert.True(t, errors.As(err, &recErr))
	})

	t.Run("Should return nil for undelegated transactions", func(t *testing.T) {
		plain := transferBody()
		signed, err := Attach(plain, signBody(t, plain, testPrivateKey))
		require.NoError(t, err)
		delegator, err := Delegator(signed)
		require.NoError(t, err)
		assert.Nil(t, delegator)
	})
}
