package testutil

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thortx/thortx-go/pkg/persistence"
	"github.com/thortx/thortx-go/pkg/thor"
)

// NewTestRecord returns a pending record with a unique id derived from seed.
func NewTestRecord(seed string, submittedAt int64) *persistence.TxRecord {
	return &persistence.TxRecord{
		ID:          thor.Blake2b256([]byte(seed)),
		Origin:      thor.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"),
		Raw:         "0xf86e" + fmt.Sprintf("%x", seed),
		Status:      persistence.TxStatusPending,
		SubmittedAt: submittedAt,
		UpdatedAt:   submittedAt,
	}
}

// RunTxJournalTests exercises the ITxJournal contract against a fresh journal
// from newJournal for every subtest. seedPrefix keeps ids unique on shared
// backends.
func RunTxJournalTests(t *testing.T, seedPrefix string, newJournal func(t *testing.T) persistence.ITxJournal) {
	t.Run("Should save and load a record", func(t *testing.T) {
		j := newJournal(t)
		defer func() { _ = j.Close() }()

		record := NewTestRecord(seedPrefix+"save", 1000)
		require.NoError(t, j.SaveTransaction(record))

		loaded, err := j.LoadTransaction(record.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, record, loaded)
	})

	t.Run("Should return nil for unknown ids", func(t *testing.T) {
		j := newJournal(t)
		defer func() { _ = j.Close() }()

		loaded, err := j.LoadTransaction(thor.Blake2b256([]byte(seedPrefix + "missing")))
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("Should reject nil and incomplete records", func(t *testing.T) {
		j := newJournal(t)
		defer func() { _ = j.Close() }()

		err := j.SaveTransaction(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nil TxRecord")

		record := NewTestRecord(seedPrefix+"no-raw", 1)
		record.Raw = ""
		assert.Error(t, j.SaveTransaction(record))
	})

	t.Run("Should not share state with callers", func(t *testing.T) {
		j := newJournal(t)
		defer func() { _ = j.Close() }()

		record := NewTestRecord(seedPrefix+"copy", 1000)
		require.NoError(t, j.SaveTransaction(record))
		record.Status = persistence.TxStatusConfirmed

		loaded, err := j.LoadTransaction(record.ID)
		require.NoError(t, err)
		assert.Equal(t, persistence.TxStatusPending, loaded.Status)
	})

	t.Run("Should list records by submission time then id", func(t *testing.T) {
		j := newJournal(t)
		defer func() { _ = j.Close() }()

		late := NewTestRecord(seedPrefix+"late", 3000)
		a := NewTestRecord(seedPrefix+"a", 2000)
		b := NewTestRecord(seedPrefix+"b", 2000)
		for _, r := range []*persistence.TxRecord{late, a, b} {
			require.NoError(t, j.SaveTransaction(r))
		}

		records, err := j.ListTransactions()
		require.NoError(t, err)
		require.Len(t, records, 3)
		expected := []*persistence.TxRecord{a, b}
		persistence.SortRecords(expected)
		assert.Equal(t, expected[0].ID, records[0].ID)
		assert.Equal(t, expected[1].ID, records[1].ID)
		assert.Equal(t, late.ID, records[2].ID)
	})

	t.Run("Should update the status of a record", func(t *testing.T) {
		j := newJournal(t)
		defer func() { _ = j.Close() }()

		record := NewTestRecord(seedPrefix+"update", 1000)
		require.NoError(t, j.SaveTransaction(record))

		blockID := thor.Blake2b256([]byte("block"))
		require.NoError(t, j.UpdateStatus(record.ID, &persistence.StatusUpdate{
			Status:      persistence.TxStatusConfirmed,
			BlockNumber: 77,
			BlockID:     blockID,
			GasUsed:     21000,
		}))

		loaded, err := j.LoadTransaction(record.ID)
		require.NoError(t, err)
		assert.Equal(t, persistence.TxStatusConfirmed, loaded.Status)
		assert.Equal(t, uint32(77), loaded.BlockNumber)
		assert.Equal(t, blockID, loaded.BlockID)
		assert.Equal(t, uint64(21000), loaded.GasUsed)
		assert.Equal(t, record.Raw, loaded.Raw)
	})

	t.Run("Should fail to update unknown records", func(t *testing.T) {
		j := newJournal(t)
		defer func() { _ = j.Close() }()

		err := j.UpdateStatus(thor.Blake2b256([]byte(seedPrefix+"ghost")), &persistence.StatusUpdate{Status: persistence.TxStatusConfirmed})
		assert.Error(t, err)
	})

	t.Run("Should delete records idempotently", func(t *testing.T) {
		j := newJournal(t)
		defer func() { _ = j.Close() }()

		record := NewTestRecord(seedPrefix+"delete", 1000)
		require.NoError(t, j.SaveTransaction(record))
		require.NoError(t, j.DeleteTransaction(record.ID))
		require.NoError(t, j.DeleteTransaction(record.ID))

		loaded, err := j.LoadTransaction(record.ID)
		require.NoError(t, err)
		assert.Nil(t, loaded)

		records, err := j.ListTransactions()
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Should handle concurrent writers", func(t *testing.T) {
		j := newJournal(t)
		defer func() { _ = j.Close() }()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, j.SaveTransaction(NewTestRecord(fmt.Sprintf("%sconcurrent-%d", seedPrefix, i), int64(i))))
			}(i)
		}
		wg.Wait()

		records, err := j.ListTransactions()
		require.NoError(t, err)
		assert.Len(t, records, 10)
	})

	t.Run("Should refuse work after close", func(t *testing.T) {
		j := newJournal(t)
		require.NoError(t, j.HealthCheck())
		require.NoError(t, j.Close())
		require.NoError(t, j.Close())

		assert.Error(t, j.HealthCheck())
		assert.Error(t, j.SaveTransaction(NewTestRecord(seedPrefix+"closed", 1)))
		_, err := j.ListTransactions()
		assert.Error(t, err)
	})
}
