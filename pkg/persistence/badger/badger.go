package badger

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/thortx/thortx-go/pkg/persistence"
	"github.com/thortx/thortx-go/pkg/thor"
	"go.uber.org/zap"
)

const (
	keyPrefixTx          = "tx:"
	keySchemaVersion     = "metadata:schema_version"
	currentSchemaVersion = "v1"
)

// BadgerJournal stores the transaction journal on disk with Badger.
type BadgerJournal struct {
	db       *badgerdb.DB
	logger   *zap.Logger
	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

var _ persistence.ITxJournal = (*BadgerJournal)(nil)

// NewBadgerJournal opens the database at dataPath with SyncWrites enabled and
// starts a background value log GC.
func NewBadgerJournal(dataPath string, logger *zap.Logger) (*BadgerJournal, error) {
	absPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	opts := badgerdb.DefaultOptions(absPath)
	opts.Logger = newJournalLogger(logger, absPath)
	opts.SyncWrites = true
	opts.CompactL0OnClose = true
	opts.NumVersionsToKeep = 1

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", absPath, err)
	}

	bj := &BadgerJournal{
		db:     db,
		logger: logger,
	}

	if err := bj.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bj.gcCancel = cancel
	bj.gcWg.Add(1)
	go bj.runGC(ctx)

	logger.Sugar().Infow("Badger journal initialized", "path", absPath)

	return bj, nil
}

func (b *BadgerJournal) initSchema() error {
	return b.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keySchemaVersion))
		if err == badgerdb.ErrKeyNotFound {
			return txn.Set([]byte(keySchemaVersion), []byte(currentSchemaVersion))
		}
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

		var existingVersion string
		err = item.Value(func(val []byte) error {
			existingVersion = string(val)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to read schema version value: %w", err)
		}

		if existingVersion != currentSchemaVersion {
			return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
		}
		return nil
	})
}

func (b *BadgerJournal) runGC(ctx context.Context) {
	defer b.gcWg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := b.db.RunValueLogGC(0.5)
			if err != nil && err != badgerdb.ErrNoRewrite {
				b.logger.Sugar().Warnw("Badger GC error", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func txKey(id thor.Bytes32) []byte {
	return []byte(keyPrefixTx + id.String())
}

func (b *BadgerJournal) SaveTransaction(record *persistence.TxRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("journal is closed")
	}

	data, err := persistence.MarshalTxRecord(record)
	if err != nil {
		return fmt.Errorf("failed to marshal TxRecord: %w", err)
	}

	return b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(txKey(record.ID), data)
	})
}

func readRecord(txn *badgerdb.Txn, id thor.Bytes32) (*persistence.TxRecord, error) {
	item, err := txn.Get(txKey(id))
	if err == badgerdb.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record *persistence.TxRecord
	err = item.Value(func(val []byte) error {
		record, err = persistence.UnmarshalTxRecord(val)
		return err
	})
	return record, err
}

func (b *BadgerJournal) LoadTransaction(id thor.Bytes32) (*persistence.TxRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("journal is closed")
	}

	var record *persistence.TxRecord
	err := b.db.View(func(txn *badgerdb.Txn) error {
		var err error
		record, err = readRecord(txn, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load TxRecord %s: %w", id, err)
	}
	return record, nil
}

func (b *BadgerJournal) ListTransactions() ([]*persistence.TxRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("journal is closed")
	}

	records := make([]*persistence.TxRecord, 0)

	err := b.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefixTx)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			var data []byte
			err := item.Value(func(val []byte) error {
				data = append([]byte{}, val...)
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to read value: %w", err)
			}

			record, err := persistence.UnmarshalTxRecord(data)
			if err != nil {
				b.logger.Sugar().Warnw("Failed to unmarshal TxRecord, skipping",
					"key", string(item.Key()), "error", err)
				continue
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list TxRecords: %w", err)
	}

	persistence.SortRecords(records)
	return records, nil
}

func (b *BadgerJournal) UpdateStatus(id thor.Bytes32, update *persistence.StatusUpdate) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("journal is closed")
	}

	return b.db.Update(func(txn *badgerdb.Txn) error {
		record, err := readRecord(txn, id)
		if err != nil {
			return fmt.Errorf("failed to load TxRecord %s: %w", id, err)
		}
		if record == nil {
			return fmt.Errorf("transaction %s not found in journal", id)
		}
		if err := record.Apply(update); err != nil {
			return err
		}
		data, err := persistence.MarshalTxRecord(record)
		if err != nil {
			return fmt.Errorf("failed to marshal TxRecord: %w", err)
		}
		return txn.Set(txKey(id), data)
	})
}

func (b *BadgerJournal) DeleteTransaction(id thor.Bytes32) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("journal is closed")
	}

	return b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(txKey(id))
	})
}

// Close stops the GC goroutine and closes the database. Idempotent.
func (b *BadgerJournal) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if b.gcCancel != nil {
		b.gcCancel()
	}
	b.gcWg.Wait()

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger database: %w", err)
	}

	b.logger.Sugar().Info("Badger journal closed")
	return nil
}

func (b *BadgerJournal) HealthCheck() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("journal is closed")
	}

	return b.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte(keySchemaVersion))
		if err == badgerdb.ErrKeyNotFound {
			return fmt.Errorf("schema version not found - database may be corrupted")
		}
		return err
	})
}
