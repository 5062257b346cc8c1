package persistence

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/thortx/thortx-go/pkg/thor"
)

type TxStatus string

const (
	TxStatusPending   TxStatus = "pending"
	TxStatusConfirmed TxStatus = "confirmed"
	TxStatusReverted  TxStatus = "reverted"
)

// TxRecord is the journal entry of one submitted transaction.
type TxRecord struct {
	ID     thor.Bytes32 `json:"id"`
	Origin thor.Address `json:"origin"`
	// Raw is the 0x-prefixed signed encoding as sent to the node.
	Raw         string       `json:"raw"`
	Status      TxStatus     `json:"status"`
	SubmittedAt int64        `json:"submittedAt"`
	BlockNumber uint32       `json:"blockNumber,omitempty"`
	BlockID     thor.Bytes32 `json:"blockId"`
	GasUsed     uint64       `json:"gasUsed,omitempty"`
	UpdatedAt   int64        `json:"updatedAt"`
}

// StatusUpdate carries the result of a receipt lookup.
type StatusUpdate struct {
	Status      TxStatus
	BlockNumber uint32
	BlockID     thor.Bytes32
	GasUsed     uint64
}

// NewPendingRecord builds the record written right after submission.
func NewPendingRecord(id thor.Bytes32, origin thor.Address, raw string) *TxRecord {
	now := time.Now().Unix()
	return &TxRecord{
		ID:          id,
		Origin:      origin,
		Raw:         raw,
		Status:      TxStatusPending,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
}

// Validate checks a record before it is stored.
func (r *TxRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("cannot save nil TxRecord")
	}
	if r.Raw == "" {
		return fmt.Errorf("TxRecord %s has no raw encoding", r.ID)
	}
	return r.Status.Validate()
}

func (s TxStatus) Validate() error {
	switch s {
	case TxStatusPending, TxStatusConfirmed, TxStatusReverted:
		return nil
	default:
		return fmt.Errorf("unknown transaction status %q", s)
	}
}

// Apply copies an update onto the record.
func (r *TxRecord) Apply(update *StatusUpdate) error {
	if update == nil {
		return fmt.Errorf("cannot apply nil StatusUpdate")
	}
	if err := update.Status.Validate(); err != nil {
		return err
	}
	r.Status = update.Status
	r.BlockNumber = update.BlockNumber
	r.BlockID = update.BlockID
	r.GasUsed = update.GasUsed
	r.UpdatedAt = time.Now().Unix()
	return nil
}

// Copy returns a deep copy of the record.
func (r *TxRecord) Copy() *TxRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// SortRecords orders records by submission time, then id.
func SortRecords(records []*TxRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].SubmittedAt != records[j].SubmittedAt {
			return records[i].SubmittedAt < records[j].SubmittedAt
		}
		return bytes.Compare(records[i].ID[:], records[j].ID[:]) < 0
	})
}
