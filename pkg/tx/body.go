package tx

import (
	"github.com/thortx/thortx-go/pkg/thor"
)

// Features is the bitset carried in the reserved field of a transaction.
type Features uint32

// DelegationFeature marks a transaction whose gas is paid by a delegator (VIP-191).
const DelegationFeature Features = 1

func (f Features) IsDelegated() bool {
	return f&DelegationFeature == DelegationFeature
}

// SetDelegated returns f with the delegation bit set or cleared.
func (f Features) SetDelegated(flag bool) Features {
	if flag {
		return f | DelegationFeature
	}
	return f &^ DelegationFeature
}

// Body is an unsigned transaction. It is created by a Builder and never
// changes afterwards; accessors hand out copies.
type Body struct {
	chainTag     byte
	blockRef     thor.BlockRef
	expiration   uint32
	clauses      []*Clause
	gasPriceCoef uint8
	gas          uint64
	dependsOn    *thor.Bytes32
	nonce        uint64
	features     Features
}

func (b *Body) ChainTag() byte {
	return b.chainTag
}

func (b *Body) BlockRef() thor.BlockRef {
	return b.blockRef
}

// Expiration is the number of blocks after BlockRef the transaction stays valid.
func (b *Body) Expiration() uint32 {
	return b.expiration
}

// Clauses returns the clauses in execution order.
func (b *Body) Clauses() []*Clause {
	return append([]*Clause(nil), b.clauses...)
}

func (b *Body) GasPriceCoef() uint8 {
	return b.gasPriceCoef
}

func (b *Body) Gas() uint64 {
	return b.gas
}

// DependsOn returns the id of the transaction that must be processed first, or nil.
func (b *Body) DependsOn() *thor.Bytes32 {
	if b.dependsOn == nil {
		return nil
	}
	cpy := *b.dependsOn
	return &cpy
}

func (b *Body) Nonce() uint64 {
	return b.nonce
}

func (b *Body) Features() Features {
	return b.features
}

// IsExpired reports whether the transaction is no longer valid at blockNum.
func (b *Body) IsExpired(blockNum uint32) bool {
	return uint64(blockNum) > uint64(b.blockRef.Number())+uint64(b.expiration)
}

// Builder assembles a Body. The zero value is ready to use.
type Builder struct {
	body Body
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (bd *Builder) ChainTag(tag byte) *Builder {
	bd.body.chainTag = tag
	return bd
}

func (bd *Builder) BlockRef(br thor.BlockRef) *Builder {
	bd.body.blockRef = br
	return bd
}

func (bd *Builder) Expiration(exp uint32) *Builder {
	bd.body.expiration = exp
	return bd
}

// Clause appends a clause. Order is execution order.
func (bd *Builder) Clause(c *Clause) *Builder {
	if c != nil {
		bd.body.clauses = append(bd.body.clauses, c)
	}
	return bd
}

func (bd *Builder) GasPriceCoef(coef uint8) *Builder {
	bd.body.gasPriceCoef = coef
	return bd
}

func (bd *Builder) Gas(gas uint64) *Builder {
	bd.body.gas = gas
	return bd
}

func (bd *Builder) DependsOn(txID *thor.Bytes32) *Builder {
	if txID == nil {
		bd.body.dependsOn = nil
	} else {
		cpy := *txID
		bd.body.dependsOn = &cpy
	}
	return bd
}

func (bd *Builder) Nonce(nonce uint64) *Builder {
	bd.body.nonce = nonce
	return bd
}

func (bd *Builder) Features(feat Features) *Builder {
	bd.body.features = feat
	return bd
}

// Build returns an independent Body; further builder calls do not affect it.
func (bd *Builder) Build() *Body {
	body := bd.body
	body.clauses = append([]*Clause(nil), bd.body.clauses...)
	if bd.body.dependsOn != nil {
		cpy := *bd.body.dependsOn
		body.dependsOn = &cpy
	}
	return &body
}
