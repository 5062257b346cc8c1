package contract

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseArguments converts command line strings into values abi.Pack accepts
// for the given inputs. Supported kinds are string, bool, address, bytes,
// bytes1 to bytes32 and (u)int of any width.
func ParseArguments(inputs abi.Arguments, values []string) ([]interface{}, error) {
	if len(inputs) != len(values) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(inputs), len(values))
	}

	out := make([]interface{}, len(values))
	for i, input := range inputs {
		v, err := parseArgument(input.Type, values[i])
		if err != nil {
			name := input.Name
			if name == "" {
				name = strconv.Itoa(i)
			}
			return nil, fmt.Errorf("argument %s (%s): %w", name, input.Type.String(), err)
		}
		out[i] = v
	}
	return out, nil
}

func parseArgument(t abi.Type, s string) (interface{}, error) {
	switch t.T {
	case abi.StringTy:
		return s, nil
	case abi.BoolTy:
		return strconv.ParseBool(s)
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil
	case abi.BytesTy:
		return hexutil.Decode(s)
	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(b))
		}
		return toFixedBytes(t, b), nil
	case abi.UintTy, abi.IntTy:
		n, ok := parseBigInt(s)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		return toSizedInt(t, n)
	default:
		return nil, fmt.Errorf("unsupported argument type")
	}
}

// parseBigInt accepts decimal with an optional sign, or unsigned 0x hex.
func parseBigInt(s string) (*big.Int, bool) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := s[2:]
		if digits == "" || digits[0] == '-' || digits[0] == '+' {
			return nil, false
		}
		return new(big.Int).SetString(digits, 16)
	}
	return new(big.Int).SetString(s, 10)
}

// toFixedBytes returns the [N]byte array the ABI encoder expects for bytesN.
func toFixedBytes(t abi.Type, b []byte) interface{} {
	arr := reflect.New(t.GetType()).Elem()
	reflect.Copy(arr, reflect.ValueOf(b))
	return arr.Interface()
}

// toSizedInt maps n onto the Go type the ABI encoder uses for the width.
func toSizedInt(t abi.Type, n *big.Int) (interface{}, error) {
	if t.T == abi.UintTy && n.Sign() < 0 {
		return nil, fmt.Errorf("negative value for unsigned type")
	}
	bits := t.Size
	if t.T == abi.IntTy {
		bits--
	}
	magnitude := n
	if n.Sign() < 0 {
		magnitude = new(big.Int).Add(n, big.NewInt(1))
	}
	if magnitude.BitLen() > bits {
		return nil, fmt.Errorf("value does not fit %s", t.String())
	}
	switch {
	case t.T == abi.UintTy && t.Size == 8:
		return uint8(n.Uint64()), nil
	case t.T == abi.UintTy && t.Size == 16:
		return uint16(n.Uint64()), nil
	case t.T == abi.UintTy && t.Size == 32:
		return uint32(n.Uint64()), nil
	case t.T == abi.UintTy && t.Size == 64:
		return n.Uint64(), nil
	case t.T == abi.IntTy && t.Size == 8:
		return int8(n.Int64()), nil
	case t.T == abi.IntTy && t.Size == 16:
		return int16(n.Int64()), nil
	case t.T == abi.IntTy && t.Size == 32:
		return int32(n.Int64()), nil
	case t.T == abi.IntTy && t.Size == 64:
		return n.Int64(), nil
	default:
		return n, nil
	}
}
