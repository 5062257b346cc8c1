package tx

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/thortx/thortx-go/pkg/thor"
)

// Clause is one transfer or call unit of a transaction. A nil destination
// means contract creation. Clauses are immutable: the With* methods return
// modified copies.
type Clause struct {
	to    *thor.Address
	value *uint256.Int
	data  []byte
}

// NewClause creates a clause with zero value and no data.
func NewClause(to *thor.Address) *Clause {
	c := &Clause{value: new(uint256.Int)}
	if to != nil {
		cpy := *to
		c.to = &cpy
	}
	return c
}

// NewClauseFromBig builds a clause from an arbitrary precision value. Values
// that are negative or do not fit 256 bits are rejected.
func NewClauseFromBig(to *thor.Address, value *big.Int, data []byte) (*Clause, error) {
	c := NewClause(to).WithData(data)
	if value == nil {
		return c, nil
	}
	if value.Sign() < 0 {
		return nil, newEncodingError("value", "negative value %s", value)
	}
	v, overflow := uint256.FromBig(value)
	if overflow {
		return nil, newEncodingError("value", "value %s exceeds 256 bits", value)
	}
	c.value = v
	return c, nil
}

func (c *Clause) copy() *Clause {
	cpy := *c
	if c.value != nil {
		cpy.value = new(uint256.Int).Set(c.value)
	}
	return &cpy
}

// WithValue returns a copy of the clause carrying value.
func (c *Clause) WithValue(value *uint256.Int) *Clause {
	cpy := c.copy()
	cpy.value = new(uint256.Int)
	if value != nil {
		cpy.value.Set(value)
	}
	return cpy
}

// WithData returns a copy of the clause carrying data.
func (c *Clause) WithData(data []byte) *Clause {
	cpy := c.copy()
	cpy.data = append([]byte(nil), data...)
	return cpy
}

// To returns the destination, or nil for contract creation.
func (c *Clause) To() *thor.Address {
	if c.to == nil {
		return nil
	}
	cpy := *c.to
	return &cpy
}

func (c *Clause) Value() *uint256.Int {
	if c.value == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(c.value)
}

func (c *Clause) Data() []byte {
	return append([]byte(nil), c.data...)
}

// IsCreatingContract reports whether the clause deploys a contract.
func (c *Clause) IsCreatingContract() bool {
	return c.to == nil
}

func (c *Clause) rlpValue() *clauseRLP {
	cr := &clauseRLP{
		To:    c.to,
		Value: new(big.Int),
		Data:  c.data,
	}
	if c.value != nil {
		cr.Value = c.value.ToBig()
	}
	if cr.Data == nil {
		cr.Data = []byte{}
	}
	return cr
}

func clauseFromRLP(cr *clauseRLP) (*Clause, error) {
	return NewClauseFromBig(cr.To, cr.Value, cr.Data)
}
