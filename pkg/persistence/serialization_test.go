package persistence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thortx/thortx-go/pkg/thor"
)

func Test_TxRecordSerialization(t *testing.T) {
	id := thor.Blake2b256([]byte("tx-1"))
	origin := thor.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")

	t.Run("Should keep hex ids and addresses readable", func(t *testing.T) {
		record := NewPendingRecord(id, origin, "0xf86e01")
		data, err := MarshalTxRecord(record)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(data), id.String()))
		assert.True(t, strings.Contains(string(data), `"status":"pending"`))

		loaded, err := UnmarshalTxRecord(data)
		require.NoError(t, err)
		assert.Equal(t, record, loaded)
	})

	t.Run("Should reject nil and empty input", func(t *testing.T) {
		_, err := MarshalTxRecord(nil)
		assert.Error(t, err)
		_, err = UnmarshalTxRecord(nil)
		assert.Error(t, err)
		_, err = UnmarshalTxRecord([]byte("{"))
		assert.Error(t, err)
	})
}

func Test_TxRecord(t *testing.T) {
	id := thor.Blake2b256([]byte("tx-1"))

	t.Run("Should apply a receipt outcome", func(t *testing.T) {
		record := NewPendingRecord(id, thor.Address{}, "0x01")
		blockID := thor.Blake2b256([]byte("block"))
		require.NoError(t, record.Apply(&StatusUpdate{
			Status:      TxStatusReverted,
			BlockNumber: 42,
			BlockID:     blockID,
			GasUsed:     21000,
		}))
		assert.Equal(t, TxStatusReverted, record.Status)
		assert.Equal(t, uint32(42), record.BlockNumber)
		assert.Equal(t, blockID, record.BlockID)
		assert.Equal(t, uint64(21000), record.GasUsed)
	})

	t.Run("Should reject unknown statuses", func(t *testing.T) {
		record := NewPendingRecord(id, thor.Address{}, "0x01")
		assert.Error(t, record.Apply(&StatusUpdate{Status: "lost"}))
		record.Status = "lost"
		assert.Error(t, record.Validate())
	})

	t.Run("Should sort by submission time then id", func(t *testing.T) {
		a := &TxRecord{ID: thor.Bytes32{0x02}, SubmittedAt: 10}
		b := &TxRecord{ID: thor.Bytes32{0x01}, SubmittedAt: 10}
		c := &TxRecord{ID: thor.Bytes32{0x00}, SubmittedAt: 20}
		records := []*TxRecord{c, a, b}
		SortRecords(records)
		assert.Equal(t, []*TxRecord{b, a, c}, records)
	})
}
