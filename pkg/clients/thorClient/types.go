package thorClient

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/thortx/thortx-go/pkg/thor"
)

// Block is the subset of a block the client needs.
type Block struct {
	Number       uint32         `json:"number"`
	ID           thor.Bytes32   `json:"id"`
	ParentID     thor.Bytes32   `json:"parentID"`
	Timestamp    uint64         `json:"timestamp"`
	GasLimit     uint64         `json:"gasLimit"`
	GasUsed      uint64         `json:"gasUsed"`
	IsTrunk      bool           `json:"isTrunk"`
	Transactions []thor.Bytes32 `json:"transactions"`
}

type ReceiptMeta struct {
	BlockID        thor.Bytes32 `json:"blockID"`
	BlockNumber    uint32       `json:"blockNumber"`
	BlockTimestamp uint64       `json:"blockTimestamp"`
	TxID           thor.Bytes32 `json:"txID"`
	TxOrigin       thor.Address `json:"txOrigin"`
}

type Event struct {
	Address thor.Address   `json:"address"`
	Topics  []thor.Bytes32 `json:"topics"`
	Data    hexutil.Bytes  `json:"data"`
}

type Transfer struct {
	Sender    thor.Address `json:"sender"`
	Recipient thor.Address `json:"recipient"`
	Amount    *hexutil.Big `json:"amount"`
}

type Output struct {
	ContractAddress *thor.Address `json:"contractAddress"`
	Events          []*Event      `json:"events"`
	Transfers       []*Transfer   `json:"transfers"`
}

// Receipt of an executed transaction.
type Receipt struct {
	GasUsed  uint64       `json:"gasUsed"`
	GasPayer thor.Address `json:"gasPayer"`
	Paid     *hexutil.Big `json:"paid"`
	Reward   *hexutil.Big `json:"reward"`
	Reverted bool         `json:"reverted"`
	Meta     ReceiptMeta  `json:"meta"`
	Outputs  []*Output    `json:"outputs"`
}

type rawTxRequest struct {
	Raw string `json:"raw"`
}

type txIDResponse struct {
	ID thor.Bytes32 `json:"id"`
}

// CallClause is a clause in the shape the node's call endpoint expects.
type CallClause struct {
	To    *thor.Address `json:"to"`
	Value *hexutil.Big  `json:"value"`
	Data  string        `json:"data"`
}

type callRequest struct {
	Clauses []*CallClause `json:"clauses"`
	Caller  *thor.Address `json:"caller,omitempty"`
	Gas     uint64        `json:"gas,omitempty"`
}

// CallResult is the outcome of one clause of a read-only call.
type CallResult struct {
	Data      hexutil.Bytes `json:"data"`
	Events    []*Event      `json:"events"`
	Transfers []*Transfer   `json:"transfers"`
	GasUsed   uint64        `json:"gasUsed"`
	Reverted  bool          `json:"reverted"`
	VMError   string        `json:"vmError"`
}
