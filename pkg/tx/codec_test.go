package tx

import (
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thortx/thortx-go/pkg/thor"
)

const (
	testAddress = "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"

	// chainTag 0x27, blockRef 0, expiration 32, 1 VET to testAddress, gas 21000, nonce 1
	transferEncoding = "eb278020e0df947567d83b7b8d80addcb281a71d54fc7b3364ffed880de0b6b3a764000080808252088001c0"

	// two clauses, blockRef 0x00000000aabbccdd, gasPriceCoef 128, nonce 12345678
	transferSigningHash = "0x3da1ed76243a69b127eb87ac09fe2a6848dea62d098904109432b7e59f1c2ab3"

	// thor-devkit reference body
	multiClauseEncoding    = "f8540184aabbccdd20f840df947567d83b7b8d80addcb281a71d54fc7b3364ffed82271086000000606060df947567d83b7b8d80addcb281a71d54fc7b3364ffed824e208600000060606081808252088083bc614ec0"
	multiClauseSigningHash = "0x2a1c25ce0d66f45276a5f308b99bf410e2fc7d5b6ea37a49f2ab9f1da9446478"
)

func oneVET() *uint256.Int {
	v, _ := uint256.FromDecimal("1000000000000000000")
	return v
}

func transferBody() *Body {
	to := thor.MustParseAddress(testAddress)
	return NewBuilder().
		ChainTag(0x27).
		BlockRef(thor.BlockRef{}).
		Expiration(32).
		Clause(NewClause(&to).WithValue(oneVET())).
		GasPriceCoef(0).
		Gas(21000).
		DependsOn(nil).
		Nonce(1).
		Build()
}

func multiClauseBody() *Body {
	to := thor.MustParseAddress(testAddress)
	data := []byte{0, 0, 0, 0x60, 0x60, 0x60}
	br, _ := thor.ParseBlockRef("0x00000000aabbccdd")
	return NewBuilder().
		ChainTag(1).
		BlockRef(br).
		Expiration(32).
		Clause(NewClause(&to).WithValue(uint256.NewInt(10000)).WithData(data)).
		Clause(NewClause(&to).WithValue(uint256.NewInt(20000)).WithData(data)).
		GasPriceCoef(128).
		Gas(21000).
		Nonce(12345678).
		Build()
}

func Test_Encode(t *testing.T) {
	t.Run("Should encode the transfer body to its fixed bytes", func(t *testing.T) {
		enc, err := Encode(transferBody())
		require.NoError(t, err)
		assert.Equal(t, transferEncoding, hex.EncodeToString(enc))
	})

	t.Run("Should encode multiple clauses in order", func(t *testing.T) {
		enc, err := Encode(multiClauseBody())
		require.NoError(t, err)
		assert.Equal(t, multiClauseEncoding, hex.EncodeToString(enc))
	})

	t.Run("Should be deterministic", func(t *testing.T) {
		body := multiClauseBody()
		first, err := Encode(body)
		require.NoError(t, err)
		second, err := Encode(body)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		h1, err := SigningHash(body)
		require.NoError(t, err)
		h2, err := SigningHash(multiClauseBody())
		require.NoError(t, err)
		assert.Equal(t, h1, h2)
	})

	t.Run("Should hash the encoding with blake2b-256", func(t *testing.T) {
		enc, err := Encode(transferBody())
		require.NoError(t, err)
		hash, err := SigningHash(transferBody())
		require.NoError(t, err)
		assert.Equal(t, thor.Blake2b256(enc), hash)
		assert.Len(t, hash.Bytes(), 32)
	})

	t.Run("Should produce the recorded signing hashes", func(t *testing.T) {
		hash, err := SigningHash(transferBody())
		require.NoError(t, err)
		assert.Equal(t, transferSigningHash, hash.String())

		hash, err = SigningHash(multiClauseBody())
		require.NoError(t, err)
		assert.Equal(t, multiClauseSigningHash, hash.String())
	})

	t.Run("Should encode a body without clauses", func(t *testing.T) {
		body := NewBuilder().ChainTag(0x27).Gas(21000).Build()
		enc, err := Encode(body)
		require.NoError(t, err)
		// chainTag, blockRef, expiration, [], coef, gas, dependsOn, nonce, reserved
		assert.Equal(t, "cb278080c0808252088080c0", hex.EncodeToString(enc))
	})

	t.Run("Should encode dependsOn with a presence marker", func(t *testing.T) {
		dep := thor.Blake2b256([]byte("dependency"))
		body := NewBuilder().ChainTag(0x27).Gas(21000).DependsOn(&dep).Build()
		enc, err := Encode(body)
		require.NoError(t, err)
		assert.Contains(t, hex.EncodeToString(enc), "a0"+hex.EncodeToString(dep[:]))
	})

	t.Run("Should encode features into the reserved list", func(t *testing.T) {
		body := NewBuilder().ChainTag(0x27).Features(DelegationFeature).Build()
		enc, err := Encode(body)
		require.NoError(t, err)
		assert.Equal(t, "c101", hex.EncodeToString(enc[len(enc)-2:]))
	})

	t.Run("Should fail on a nil body", func(t *testing.T) {
		_, err := Encode(nil)
		var encErr *EncodingError
		require.True(t, errors.As(err, &encErr))
	})
}

func Test_Encode_Sensitivity(t *testing.T) {
	to := thor.MustParseAddress(testAddress)
	other := thor.MustParseAddress("0xd3ae78222beadb038203be21ed5ce7c9b1bff602")
	dep := thor.Blake2b256([]byte("dep"))

	base := func() *Builder {
		return NewBuilder().ChainTag(0x27).Expiration(32).Gas(21000).Nonce(1).
			Clause(NewClause(&to).WithValue(uint256.NewInt(1))).
			Clause(NewClause(&other).WithValue(uint256.NewInt(2)))
	}
	reference, err := Encode(base().Build())
	require.NoError(t, err)
	referenceHash, err := SigningHash(base().Build())
	require.NoError(t, err)

	variants := map[string]*Body{
		"clause order": NewBuilder().ChainTag(0x27).Expiration(32).Gas(21000).Nonce(1).
			Clause(NewClause(&other).WithValue(uint256.NewInt(2))).
			Clause(NewClause(&to).WithValue(uint256.NewInt(1))).
			Build(),
		"value": NewBuilder().ChainTag(0x27).Expiration(32).Gas(21000).Nonce(1).
			Clause(NewClause(&to).WithValue(uint256.NewInt(3))).
			Clause(NewClause(&other).WithValue(uint256.NewInt(2))).
			Build(),
		"gas":        base().Gas(21001).Build(),
		"nonce":      base().Nonce(2).Build(),
		"dependency": base().DependsOn(&dep).Build(),
		"chain tag":  base().ChainTag(0x4a).Build(),
		"expiration": base().Expiration(720).Build(),
		"coef":       base().GasPriceCoef(1).Build(),
		"block ref":  base().BlockRef(thor.NewBlockRef(1)).Build(),
		"features":   base().Features(DelegationFeature).Build(),
		"data":       base().Clause(NewClause(nil).WithData([]byte{1})).Build(),
	}

	for name, body := range variants {
		t.Run("Should change the encoding when "+name+" differs", func(t *testing.T) {
			enc, err := Encode(body)
			require.NoError(t, err)
			assert.NotEqual(t, reference, enc)

			hash, err := SigningHash(body)
			require.NoError(t, err)
			assert.NotEqual(t, referenceHash, hash)
		})
	}
}

func Test_Decode(t *testing.T) {
	t.Run("Should decode an unsigned encoding back to the same body", func(t *testing.T) {
		raw, _ := hex.DecodeString(multiClauseEncoding)
		body, sig, err := Decode(raw)
		require.NoError(t, err)
		assert.Nil(t, sig)

		assert.Equal(t, byte(1), body.ChainTag())
		assert.Equal(t, uint64(0xaabbccdd), body.BlockRef().Uint64())
		assert.Equal(t, uint64(12345678), body.Nonce())
		require.Len(t, body.Clauses(), 2)
		assert.Equal(t, uint64(20000), body.Clauses()[1].Value().Uint64())

		again, err := Encode(body)
		require.NoError(t, err)
		assert.Equal(t, raw, again)
	})

	t.Run("Should decode contract creation clauses", func(t *testing.T) {
		body := NewBuilder().ChainTag(0x27).Clause(NewClause(nil).WithData([]byte{0x60, 0x80})).Build()
		enc, err := Encode(body)
		require.NoError(t, err)

		decoded, _, err := Decode(enc)
		require.NoError(t, err)
		require.Len(t, decoded.Clauses(), 1)
		assert.True(t, decoded.Clauses()[0].IsCreatingContract())
		assert.Equal(t, []byte{0x60, 0x80}, decoded.Clauses()[0].Data())
	})

	t.Run("Should keep features", func(t *testing.T) {
		body := NewBuilder().ChainTag(0x27).Features(DelegationFeature).Build()
		enc, err := Encode(body)
		require.NoError(t, err)
		decoded, _, err := Decode(enc)
		require.NoError(t, err)
		assert.True(t, decoded.Features().IsDelegated())
	})

	t.Run("Should reject untrimmed reserved fields", func(t *testing.T) {
		raw, err := rlp.EncodeToBytes(&bodyRLP{
			ChainTag: 0x27,
			Clauses:  []*clauseRLP{},
			Reserved: []rlp.RawValue{rlp.EmptyString},
		})
		require.NoError(t, err)
		_, _, err = Decode(raw)
		var encErr *EncodingError
		require.True(t, errors.As(err, &encErr))
		assert.Equal(t, "reserved", encErr.Field)
	})

	t.Run("Should reject garbage and wrong field counts", func(t *testing.T) {
		_, _, err := Decode([]byte{0x01, 0x02})
		assert.Error(t, err)

		raw, err := rlp.EncodeToBytes([]uint64{1, 2, 3})
		require.NoError(t, err)
		_, _, err = Decode(raw)
		var encErr *EncodingError
		assert.True(t, errors.As(err, &encErr))
	})
}

func Test_NewClauseFromBig(t *testing.T) {
	t.Run("Should reject negative values", func(t *testing.T) {
		_, err := NewClauseFromBig(nil, big.NewInt(-1), nil)
		var encErr *EncodingError
		require.True(t, errors.As(err, &encErr))
		assert.Equal(t, "value", encErr.Field)
	})

	t.Run("Should reject values wider than 256 bits", func(t *testing.T) {
		tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
		_, err := NewClauseFromBig(nil, tooBig, nil)
		var encErr *EncodingError
		require.True(t, errors.As(err, &encErr))
	})

	t.Run("Should accept the maximum 256-bit value", func(t *testing.T) {
		maxVal := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
		c, err := NewClauseFromBig(nil, maxVal, nil)
		require.NoError(t, err)
		assert.Equal(t, maxVal, c.Value().ToBig())
	})

	t.Run("Should not share data with the caller", func(t *testing.T) {
		data := []byte{1, 2, 3}
		c, err := NewClauseFromBig(nil, nil, data)
		require.NoError(t, err)
		data[0] = 9
		assert.Equal(t, []byte{1, 2, 3}, c.Data())
	})
}

func Test_Body(t *testing.T) {
	t.Run("Should not be affected by later builder calls", func(t *testing.T) {
		bd := NewBuilder().ChainTag(0x27).Nonce(1)
		body := bd.Build()
		bd.Nonce(2).Clause(NewClause(nil))
		assert.Equal(t, uint64(1), body.Nonce())
		assert.Empty(t, body.Clauses())
	})

	t.Run("Should report expiry relative to the block ref", func(t *testing.T) {
		body := NewBuilder().BlockRef(thor.NewBlockRef(100)).Expiration(32).Build()
		assert.False(t, body.IsExpired(132))
		assert.True(t, body.IsExpired(133))
	})
}
