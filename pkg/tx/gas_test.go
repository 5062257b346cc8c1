package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thortx/thortx-go/pkg/thor"
)

func Test_IntrinsicGas(t *testing.T) {
	to := thor.MustParseAddress(testAddress)

	t.Run("Should charge a plain transfer 21000", func(t *testing.T) {
		gas, err := IntrinsicGas(NewClause(&to))
		require.NoError(t, err)
		assert.Equal(t, uint64(21000), gas)
	})

	t.Run("Should charge an empty transaction like a transfer", func(t *testing.T) {
		gas, err := IntrinsicGas()
		require.NoError(t, err)
		assert.Equal(t, uint64(21000), gas)
	})

	t.Run("Should charge contract creation and data", func(t *testing.T) {
		gas, err := IntrinsicGas(NewClause(nil).WithData([]byte{0, 0, 1}))
		require.NoError(t, err)
		assert.Equal(t, TxGas+ClauseGasContractCreation+4+4+68, gas)
	})

	t.Run("Should sum over clauses", func(t *testing.T) {
		data := []byte{0, 0, 0, 0x60, 0x60, 0x60}
		gas, err := IntrinsicGas(NewClause(&to).WithData(data), NewClause(&to).WithData(data))
		require.NoError(t, err)
		assert.Equal(t, uint64(37432), gas)
	})
}
