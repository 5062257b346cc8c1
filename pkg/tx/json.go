package tx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/thortx/thortx-go/pkg/thor"
)

// ClauseJSON is the clause literal accepted by ParseBody and produced by MarshalJSON.
type ClauseJSON struct {
	To    *string         `json:"to"`
	Value json.RawMessage `json:"value"`
	Data  string          `json:"data"`
}

// BodyJSON mirrors the body literal handed to wallets and signing tools.
// Integers may be JSON numbers, decimal strings or 0x hex strings.
type BodyJSON struct {
	ChainTag     json.RawMessage `json:"chainTag"`
	BlockRef     string          `json:"blockRef"`
	Expiration   json.RawMessage `json:"expiration"`
	Clauses      []ClauseJSON    `json:"clauses"`
	GasPriceCoef json.RawMessage `json:"gasPriceCoef"`
	Gas          json.RawMessage `json:"gas"`
	DependsOn    *string         `json:"dependsOn"`
	Nonce        json.RawMessage `json:"nonce"`
	Features     json.RawMessage `json:"features,omitempty"`
}

// parseUint reads an unsigned integer of at most bits width.
func parseUint(field string, raw json.RawMessage, bits int) (*big.Int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return new(big.Int), nil
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, &EncodingError{Field: field, Err: err}
		}
	} else {
		text = string(raw)
	}
	text = strings.TrimSpace(text)

	v := new(big.Int)
	var ok bool
	switch {
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		digits := text[2:]
		if digits == "" {
			return nil, newEncodingError(field, "empty hex number")
		}
		_, ok = v.SetString(digits, 16)
	case strings.HasPrefix(text, "-"):
		return nil, newEncodingError(field, "negative value %s", text)
	default:
		_, ok = v.SetString(text, 10)
	}
	if !ok {
		return nil, newEncodingError(field, "invalid number %q", text)
	}
	if v.Sign() < 0 {
		return nil, newEncodingError(field, "negative value %s", text)
	}
	if v.BitLen() > bits {
		return nil, newEncodingError(field, "value %s exceeds %d bits", text, bits)
	}
	return v, nil
}

func parseHexBytes(field, s string) ([]byte, error) {
	b, err := thor.DecodeHex(s)
	if err != nil {
		return nil, &EncodingError{Field: field, Err: err}
	}
	return b, nil
}

// ParseBody builds a Body from its JSON literal.
func ParseBody(data []byte) (*Body, error) {
	var bj BodyJSON
	if err := json.Unmarshal(data, &bj); err != nil {
		return nil, &EncodingError{Err: err}
	}
	return bj.ToBody()
}

// ToBody validates every field and builds the Body.
func (bj *BodyJSON) ToBody() (*Body, error) {
	chainTag, err := parseUint("chainTag", bj.ChainTag, 8)
	if err != nil {
		return nil, err
	}
	expiration, err := parseUint("expiration", bj.Expiration, 32)
	if err != nil {
		return nil, err
	}
	gasPriceCoef, err := parseUint("gasPriceCoef", bj.GasPriceCoef, 8)
	if err != nil {
		return nil, err
	}
	gas, err := parseUint("gas", bj.Gas, 64)
	if err != nil {
		return nil, err
	}
	nonce, err := parseUint("nonce", bj.Nonce, 64)
	if err != nil {
		return nil, err
	}
	features, err := parseUint("features", bj.Features, 32)
	if err != nil {
		return nil, err
	}

	blockRef, err := thor.ParseBlockRef(bj.BlockRef)
	if err != nil {
		return nil, &EncodingError{Field: "blockRef", Err: err}
	}

	bd := NewBuilder().
		ChainTag(byte(chainTag.Uint64())).
		BlockRef(blockRef).
		Expiration(uint32(expiration.Uint64())).
		GasPriceCoef(uint8(gasPriceCoef.Uint64())).
		Gas(gas.Uint64()).
		Nonce(nonce.Uint64()).
		Features(Features(features.Uint64()))

	if bj.DependsOn != nil {
		dep, err := thor.ParseBytes32(*bj.DependsOn)
		if err != nil {
			return nil, &EncodingError{Field: "dependsOn", Err: err}
		}
		bd.DependsOn(&dep)
	}

	for i, cj := range bj.Clauses {
		field := fmt.Sprintf("clauses[%d]", i)
		var to *thor.Address
		if cj.To != nil {
			addr, err := thor.ParseAddress(*cj.To)
			if err != nil {
				return nil, &EncodingError{Field: field + ".to", Err: err}
			}
			to = &addr
		}
		value, err := parseUint(field+".value", cj.Value, 256)
		if err != nil {
			return nil, err
		}
		data, err := parseHexBytes(field+".data", cj.Data)
		if err != nil {
			return nil, err
		}
		c, err := NewClauseFromBig(to, value, data)
		if err != nil {
			return nil, err
		}
		bd.Clause(c)
	}
	return bd.Build(), nil
}

func quoted(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

func number(v uint64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf("%d", v))
}

// ToJSON converts the body to its literal form. Round-trips through ToBody.
func (b *Body) ToJSON() *BodyJSON {
	bj := &BodyJSON{
		ChainTag:     number(uint64(b.chainTag)),
		BlockRef:     b.blockRef.String(),
		Expiration:   number(uint64(b.expiration)),
		Clauses:      make([]ClauseJSON, 0, len(b.clauses)),
		GasPriceCoef: number(uint64(b.gasPriceCoef)),
		Gas:          number(b.gas),
		Nonce:        quoted(hexutil.EncodeUint64(b.nonce)),
	}
	if b.features != 0 {
		bj.Features = number(uint64(b.features))
	}
	if b.dependsOn != nil {
		dep := b.dependsOn.String()
		bj.DependsOn = &dep
	}
	for _, c := range b.clauses {
		cj := ClauseJSON{
			Value: quoted(hexutil.EncodeBig(c.Value().ToBig())),
			Data:  hexutil.Encode(c.data),
		}
		if c.to != nil {
			to := c.to.String()
			cj.To = &to
		}
		bj.Clauses = append(bj.Clauses, cj)
	}
	return bj
}

func (b *Body) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.ToJSON())
}
