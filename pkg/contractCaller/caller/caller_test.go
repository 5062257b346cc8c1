package caller

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thortx/thortx-go/pkg/clients/thorClient"
	"github.com/thortx/thortx-go/pkg/contract"
	"github.com/thortx/thortx-go/pkg/logger"
	"github.com/thortx/thortx-go/pkg/signer/localSigner"
	"github.com/thortx/thortx-go/pkg/testutil"
	"github.com/thortx/thortx-go/pkg/thor"
	"github.com/thortx/thortx-go/pkg/transactionSigner"
)

func newTestCaller(t *testing.T) (*ContractCaller, *testutil.MockThorNode) {
	t.Helper()

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	require.NoError(t, err)

	node := testutil.NewMockThorNode(t)
	client, err := thorClient.NewClient(&thorClient.ClientConfig{
		BaseUrl:      node.URL(),
		PollInterval: time.Millisecond,
	}, l)
	require.NoError(t, err)

	keySigner, err := localSigner.NewLocalSignerFromHex("dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65", l)
	require.NoError(t, err)

	ts, err := transactionSigner.NewTransactionSigner(&transactionSigner.SignerConfig{Expiration: 32}, client, keySigner, nil, l)
	require.NoError(t, err)

	cc, err := NewContractCaller(client, ts, l)
	require.NoError(t, err)
	return cc, node
}

func Test_ContractCaller(t *testing.T) {
	ctx := context.Background()
	parsed, err := contract.ParseABI(contract.KVStorageABI)
	require.NoError(t, err)

	kvAddress := thor.MustParseAddress("0xd3ae78222beadb038203be21ed5ce7c9b1bff602")
	key := thor.MustParseBytes32("0x496699b551fae009387328298b517b0b8be1c99f42d31ef2793ffcee5a7a316b")
	value := thor.MustParseBytes32("0x4de71f2d588aa8a1ea00fe8312d92966da424d9939a511fc0be81e65fad52af8")

	t.Run("Should deploy and report the created address", func(t *testing.T) {
		cc, node := newTestCaller(t)

		address, receipt, err := cc.Deploy(ctx, parsed, []byte{0x60, 0x80, 0x60, 0x40}, 3000000, "test-contract-1")
		require.NoError(t, err)
		assert.Equal(t, testutil.MockContractAddress(receipt.Meta.TxID, 0), address)

		submitted := node.Submitted()
		require.Len(t, submitted, 1)
		assert.Equal(t, uint64(3000000), submitted[0].Body().Gas())
		require.Len(t, submitted[0].Body().Clauses(), 1)
		assert.True(t, submitted[0].Body().Clauses()[0].IsCreatingContract())
	})

	t.Run("Should call a view method", func(t *testing.T) {
		cc, node := newTestCaller(t)
		encoded, err := contract.EncodeString("test-contract-1")
		require.NoError(t, err)
		node.CallResult = map[string]interface{}{"data": hexutil.Encode(encoded), "gasUsed": 900, "reverted": false, "vmError": ""}

		values, err := cc.CallMethod(ctx, parsed, kvAddress, "namespace")
		require.NoError(t, err)
		require.Len(t, values, 1)
		assert.Equal(t, "test-contract-1", values[0])

		call := node.LastCall()
		assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", call["caller"])
		clauses, ok := call["clauses"].([]interface{})
		require.True(t, ok)
		require.Len(t, clauses, 1)
		assert.Equal(t, kvAddress.String(), clauses[0].(map[string]interface{})["to"])
		assert.Empty(t, node.Submitted())
	})

	t.Run("Should surface reverted calls", func(t *testing.T) {
		cc, node := newTestCaller(t)
		node.CallResult = map[string]interface{}{"data": "0x", "reverted": true, "vmError": "execution reverted"}

		_, err := cc.CallMethod(ctx, parsed, kvAddress, "get", [32]byte(key))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "execution reverted")
	})

	t.Run("Should invoke a state changing method", func(t *testing.T) {
		cc, node := newTestCaller(t)

		receipt, err := cc.Invoke(ctx, parsed, kvAddress, "set", 500000, [32]byte(key), [32]byte(value))
		require.NoError(t, err)
		assert.False(t, receipt.Reverted)

		submitted := node.Submitted()
		require.Len(t, submitted, 1)
		clause := submitted[0].Body().Clauses()[0]
		require.NotNil(t, clause.To())
		assert.Equal(t, kvAddress, *clause.To())
		assert.Equal(t, parsed.Methods["set"].ID, clause.Data()[:4])
	})

	t.Run("Should require its collaborators", func(t *testing.T) {
		_, err := NewContractCaller(nil, nil, nil)
		assert.Error(t, err)
	})
}
