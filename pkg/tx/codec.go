package tx

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/thortx/thortx-go/pkg/thor"
)

// Field order of the canonical encoding. Every field is positional and
// integers are minimal big-endian, so equal bodies always encode to equal bytes.
//
//	[chainTag, blockRef, expiration, [clause...], gasPriceCoef, gas, dependsOn, nonce, reserved]
//	clause   = [to, value, data]   (to is the empty string for contract creation)
//	reserved = [] or [features]
//
// A signed transaction appends the signature as a tenth element.
type clauseRLP struct {
	To    *thor.Address `rlp:"nil"`
	Value *big.Int
	Data  []byte
}

type bodyRLP struct {
	ChainTag     uint8
	BlockRef     uint64
	Expiration   uint32
	Clauses      []*clauseRLP
	GasPriceCoef uint8
	Gas          uint64
	DependsOn    *thor.Bytes32 `rlp:"nil"`
	Nonce        uint64
	Reserved     []rlp.RawValue
}

type signedRLP struct {
	ChainTag     uint8
	BlockRef     uint64
	Expiration   uint32
	Clauses      []*clauseRLP
	GasPriceCoef uint8
	Gas          uint64
	DependsOn    *thor.Bytes32 `rlp:"nil"`
	Nonce        uint64
	Reserved     []rlp.RawValue
	Signature    []byte
}

const (
	unsignedFieldCount = 9
	signedFieldCount   = 10
)

func encodeReserved(f Features) ([]rlp.RawValue, error) {
	if f == 0 {
		return []rlp.RawValue{}, nil
	}
	raw, err := rlp.EncodeToBytes(uint32(f))
	if err != nil {
		return nil, err
	}
	return []rlp.RawValue{raw}, nil
}

func decodeReserved(reserved []rlp.RawValue) (Features, error) {
	if len(reserved) == 0 {
		return 0, nil
	}
	// trailing empty values would give a second encoding of the same body
	last := reserved[len(reserved)-1]
	if bytes.Equal(last, rlp.EmptyString) || bytes.Equal(last, rlp.EmptyList) {
		return 0, newEncodingError("reserved", "reserved fields not trimmed")
	}
	if len(reserved) > 1 {
		return 0, newEncodingError("reserved", "unsupported reserved fields")
	}
	var f uint32
	if err := rlp.DecodeBytes(reserved[0], &f); err != nil {
		return 0, &EncodingError{Field: "reserved", Err: err}
	}
	return Features(f), nil
}

func toRLP(body *Body) (*bodyRLP, error) {
	if body == nil {
		return nil, newEncodingError("", "nil body")
	}
	reserved, err := encodeReserved(body.features)
	if err != nil {
		return nil, &EncodingError{Field: "reserved", Err: err}
	}
	br := &bodyRLP{
		ChainTag:     body.chainTag,
		BlockRef:     body.blockRef.Uint64(),
		Expiration:   body.expiration,
		Clauses:      make([]*clauseRLP, 0, len(body.clauses)),
		GasPriceCoef: body.gasPriceCoef,
		Gas:          body.gas,
		DependsOn:    body.dependsOn,
		Nonce:        body.nonce,
		Reserved:     reserved,
	}
	for i, c := range body.clauses {
		if c == nil {
			return nil, newEncodingError(fmt.Sprintf("clauses[%d]", i), "nil clause")
		}
		br.Clauses = append(br.Clauses, c.rlpValue())
	}
	return br, nil
}

func fromRLP(br *bodyRLP) (*Body, error) {
	features, err := decodeReserved(br.Reserved)
	if err != nil {
		return nil, err
	}
	bd := NewBuilder().
		ChainTag(br.ChainTag).
		BlockRef(thor.NewBlockRefFromUint64(br.BlockRef)).
		Expiration(br.Expiration).
		GasPriceCoef(br.GasPriceCoef).
		Gas(br.Gas).
		DependsOn(br.DependsOn).
		Nonce(br.Nonce).
		Features(features)
	for i, cr := range br.Clauses {
		c, err := clauseFromRLP(cr)
		if err != nil {
			return nil, fmt.Errorf("clauses[%d]: %w", i, err)
		}
		bd.Clause(c)
	}
	return bd.Build(), nil
}

// Encode returns the canonical encoding of an unsigned body.
func Encode(body *Body) ([]byte, error) {
	br, err := toRLP(body)
	if err != nil {
		return nil, err
	}
	out, err := rlp.EncodeToBytes(br)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	return out, nil
}

// SigningHash is the Blake2b-256 digest of Encode(body). It is the value an
// external signer signs.
func SigningHash(body *Body) (thor.Bytes32, error) {
	enc, err := Encode(body)
	if err != nil {
		return thor.Bytes32{}, err
	}
	return thor.Blake2b256(enc), nil
}

// DelegatorSigningHash is the digest a fee delegator signs: the signing hash
// bound to the origin that asked for delegation.
func DelegatorSigningHash(body *Body, origin thor.Address) (thor.Bytes32, error) {
	hash, err := SigningHash(body)
	if err != nil {
		return thor.Bytes32{}, err
	}
	return thor.Blake2b256(hash[:], origin[:]), nil
}

// Decode parses either an unsigned encoding (the signature is nil) or a raw
// signed transaction.
func Decode(raw []byte) (*Body, []byte, error) {
	var fields []rlp.RawValue
	if err := rlp.DecodeBytes(raw, &fields); err != nil {
		return nil, nil, &EncodingError{Err: err}
	}
	switch len(fields) {
	case unsignedFieldCount:
		var br bodyRLP
		if err := rlp.DecodeBytes(raw, &br); err != nil {
			return nil, nil, &EncodingError{Err: err}
		}
		body, err := fromRLP(&br)
		return body, nil, err
	case signedFieldCount:
		var sr signedRLP
		if err := rlp.DecodeBytes(raw, &sr); err != nil {
			return nil, nil, &EncodingError{Err: err}
		}
		body, err := fromRLP(&bodyRLP{
			ChainTag:     sr.ChainTag,
			BlockRef:     sr.BlockRef,
			Expiration:   sr.Expiration,
			Clauses:      sr.Clauses,
			GasPriceCoef: sr.GasPriceCoef,
			Gas:          sr.Gas,
			DependsOn:    sr.DependsOn,
			Nonce:        sr.Nonce,
			Reserved:     sr.Reserved,
		})
		if err != nil {
			return nil, nil, err
		}
		return body, sr.Signature, nil
	default:
		return nil, nil, newEncodingError("", "expected %d or %d fields, got %d", unsignedFieldCount, signedFieldCount, len(fields))
	}
}
