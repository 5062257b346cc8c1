package thor

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const (
	AddressLength  = 20
	Bytes32Length  = 32
	BlockRefLength = 8
)

// Address is a 20 byte account address. Derivation from a public key is the
// same as Ethereum's (last 20 bytes of keccak256 of the uncompressed key).
type Address common.Address

// Bytes32 is a 32 byte value, used for block ids, transaction ids and hashes.
type Bytes32 [Bytes32Length]byte

// BlockRef anchors a transaction to a block. The first 4 bytes are the
// big-endian block number, the rest is the prefix of the block id.
type BlockRef [BlockRefLength]byte

func decodeHex(s string, size int) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd length hex string")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string: %w", err)
	}
	if size >= 0 && len(b) != size {
		return nil, fmt.Errorf("expected %d bytes, got %d", size, len(b))
	}
	return b, nil
}

// DecodeHex decodes an optionally 0x prefixed hex string of any length.
func DecodeHex(s string) ([]byte, error) {
	return decodeHex(s, -1)
}

// ParseAddress parses a 0x prefixed (or bare) 40 character hex address.
func ParseAddress(s string) (Address, error) {
	var a Address
	b, err := decodeHex(s, AddressLength)
	if err != nil {
		return a, fmt.Errorf("invalid address %q: %w", s, err)
	}
	copy(a[:], b)
	return a, nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func BytesToAddress(b []byte) Address {
	return Address(common.BytesToAddress(b))
}

func (a Address) Bytes() []byte {
	return a[:]
}

// String returns the lower case 0x prefixed hex form.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func ParseBytes32(s string) (Bytes32, error) {
	var h Bytes32
	b, err := decodeHex(s, Bytes32Length)
	if err != nil {
		return h, fmt.Errorf("invalid bytes32 %q: %w", s, err)
	}
	copy(h[:], b)
	return h, nil
}

func MustParseBytes32(s string) Bytes32 {
	h, err := ParseBytes32(s)
	if err != nil {
		panic(err)
	}
	return h
}

func BytesToBytes32(b []byte) Bytes32 {
	var h Bytes32
	if len(b) > Bytes32Length {
		b = b[len(b)-Bytes32Length:]
	}
	copy(h[Bytes32Length-len(b):], b)
	return h
}

func (h Bytes32) Bytes() []byte {
	return h[:]
}

func (h Bytes32) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Bytes32) IsZero() bool {
	return h == Bytes32{}
}

func (h Bytes32) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Bytes32) UnmarshalText(text []byte) error {
	parsed, err := ParseBytes32(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// NewBlockRef creates a block ref that only carries a block number.
func NewBlockRef(blockNum uint32) BlockRef {
	var br BlockRef
	binary.BigEndian.PutUint32(br[:], blockNum)
	return br
}

// NewBlockRefFromID takes the first 8 bytes of a block id.
func NewBlockRefFromID(blockID Bytes32) BlockRef {
	var br BlockRef
	copy(br[:], blockID[:BlockRefLength])
	return br
}

// NewBlockRefFromUint64 is the inverse of BlockRef.Uint64.
func NewBlockRefFromUint64(v uint64) BlockRef {
	var br BlockRef
	binary.BigEndian.PutUint64(br[:], v)
	return br
}

func ParseBlockRef(s string) (BlockRef, error) {
	var br BlockRef
	b, err := decodeHex(s, BlockRefLength)
	if err != nil {
		return br, fmt.Errorf("invalid block ref %q: %w", s, err)
	}
	copy(br[:], b)
	return br, nil
}

// Number extracts the block number.
func (br BlockRef) Number() uint32 {
	return binary.BigEndian.Uint32(br[:])
}

// Uint64 is the form the block ref takes in the transaction encoding.
func (br BlockRef) Uint64() uint64 {
	return binary.BigEndian.Uint64(br[:])
}

func (br BlockRef) String() string {
	return "0x" + hex.EncodeToString(br[:])
}
