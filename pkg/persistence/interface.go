package persistence

import "github.com/thortx/thortx-go/pkg/thor"

// ITxJournal records the transactions this process has submitted so a restart
// can resume waiting for their receipts.
// All implementations must be thread-safe.
type ITxJournal interface {
	// SaveTransaction persists a record keyed by its transaction id.
	// Overwrites any existing record with the same id.
	SaveTransaction(record *TxRecord) error

	// LoadTransaction returns the record for id.
	// Returns nil if it doesn't exist, error only on storage failure.
	LoadTransaction(id thor.Bytes32) (*TxRecord, error)

	// ListTransactions returns all records sorted by submission time, then id.
	// Returns an empty slice if there are none.
	ListTransactions() ([]*TxRecord, error)

	// UpdateStatus sets the outcome of a submitted transaction.
	// Returns an error if the record does not exist.
	UpdateStatus(id thor.Bytes32, update *StatusUpdate) error

	// DeleteTransaction removes a record. Idempotent.
	DeleteTransaction(id thor.Bytes32) error

	// Close cleanly shuts down the journal. Idempotent.
	Close() error

	// HealthCheck verifies the journal is operational.
	HealthCheck() error
}
