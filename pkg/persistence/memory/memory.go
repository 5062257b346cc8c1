package memory

import (
	"fmt"
	"sync"

	"github.com/thortx/thortx-go/pkg/persistence"
	"github.com/thortx/thortx-go/pkg/thor"
)

// MemoryJournal is an in-memory implementation of ITxJournal.
//
// All data is lost when the process exits. Records are copied on the way in
// and out so callers cannot mutate stored state.
type MemoryJournal struct {
	mu      sync.RWMutex
	records map[thor.Bytes32]*persistence.TxRecord
	closed  bool
}

var _ persistence.ITxJournal = (*MemoryJournal)(nil)

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{
		records: make(map[thor.Bytes32]*persistence.TxRecord),
	}
}

func (m *MemoryJournal) SaveTransaction(record *persistence.TxRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("journal is closed")
	}

	m.records[record.ID] = record.Copy()
	return nil
}

func (m *MemoryJournal) LoadTransaction(id thor.Bytes32) (*persistence.TxRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("journal is closed")
	}

	record, exists := m.records[id]
	if !exists {
		return nil, nil
	}
	return record.Copy(), nil
}

func (m *MemoryJournal) ListTransactions() ([]*persistence.TxRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("journal is closed")
	}

	records := make([]*persistence.TxRecord, 0, len(m.records))
	for _, record := range m.records {
		records = append(records, record.Copy())
	}
	persistence.SortRecords(records)
	return records, nil
}

func (m *MemoryJournal) UpdateStatus(id thor.Bytes32, update *persistence.StatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("journal is closed")
	}

	record, exists := m.records[id]
	if !exists {
		return fmt.Errorf("transaction %s not found in journal", id)
	}
	updated := record.Copy()
	if err := updated.Apply(update); err != nil {
		return err
	}
	m.records[id] = updated
	return nil
}

func (m *MemoryJournal) DeleteTransaction(id thor.Bytes32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("journal is closed")
	}

	delete(m.records, id)
	return nil
}

func (m *MemoryJournal) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.records = nil
	return nil
}

func (m *MemoryJournal) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("journal is closed")
	}
	return nil
}
