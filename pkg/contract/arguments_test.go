package contract

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustArgs(t *testing.T, types ...string) abi.Arguments {
	t.Helper()
	args := make(abi.Arguments, len(types))
	for i, ty := range types {
		typ, err := abi.NewType(ty, "", nil)
		require.NoError(t, err)
		args[i] = abi.Argument{Type: typ}
	}
	return args
}

func Test_ParseArguments(t *testing.T) {
	t.Run("Should convert supported kinds", func(t *testing.T) {
		args := mustArgs(t, "string", "bool", "address", "bytes", "bytes32", "uint8", "uint256", "int64")
		values, err := ParseArguments(args, []string{
			"test-contract-1",
			"true",
			"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed",
			"0xabcd",
			"0x496699b551fae009387328298b517b0b8be1c99f42d31ef2793ffcee5a7a316b",
			"255",
			"0xde0b6b3a7640000",
			"-5",
		})
		require.NoError(t, err)

		assert.Equal(t, "test-contract-1", values[0])
		assert.Equal(t, true, values[1])
		assert.Equal(t, common.HexToAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"), values[2])
		assert.Equal(t, []byte{0xab, 0xcd}, values[3])
		assert.IsType(t, [32]byte{}, values[4])
		assert.Equal(t, uint8(255), values[5])
		assert.Equal(t, 0, values[6].(*big.Int).Cmp(big.NewInt(1_000_000_000_000_000_000)))
		assert.Equal(t, int64(-5), values[7])

		_, err = args.Pack(values...)
		assert.NoError(t, err)
	})

	t.Run("Should report which argument is wrong", func(t *testing.T) {
		tests := []struct {
			name   string
			types  []string
			values []string
		}{
			{"count mismatch", []string{"string"}, []string{}},
			{"bad bool", []string{"bool"}, []string{"maybe"}},
			{"bad address", []string{"address"}, []string{"0x1234"}},
			{"short bytes32", []string{"bytes32"}, []string{"0xabcd"}},
			{"uint8 overflow", []string{"uint8"}, []string{"256"}},
			{"negative uint", []string{"uint256"}, []string{"-1"}},
			{"int8 overflow", []string{"int8"}, []string{"128"}},
			{"not a number", []string{"uint256"}, []string{"ten"}},
			{"signed hex", []string{"int256"}, []string{"0x-5"}},
			{"plus after hex prefix", []string{"uint256"}, []string{"0x+5"}},
			{"empty hex", []string{"uint256"}, []string{"0x"}},
			{"long bytes3", []string{"bytes3"}, []string{"0x01020304"}},
			{"unsupported", []string{"uint256[]"}, []string{"1"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := ParseArguments(mustArgs(t, tt.types...), tt.values)
				assert.Error(t, err)
			})
		}
	})

	t.Run("Should accept the int8 lower bound", func(t *testing.T) {
		values, err := ParseArguments(mustArgs(t, "int8"), []string{"-128"})
		require.NoError(t, err)
		assert.Equal(t, int8(-128), values[0])
	})

	t.Run("Should build any fixed bytes width", func(t *testing.T) {
		args := mustArgs(t, "bytes1", "bytes3", "bytes31")
		values, err := ParseArguments(args, []string{"0xff", "0x010203", "0x" + strings.Repeat("ab", 31)})
		require.NoError(t, err)

		assert.Equal(t, [1]byte{0xff}, values[0])
		assert.Equal(t, [3]byte{1, 2, 3}, values[1])
		require.IsType(t, [31]byte{}, values[2])
		assert.Equal(t, byte(0xab), values[2].([31]byte)[30])

		_, err = args.Pack(values...)
		assert.NoError(t, err)
	})
}
