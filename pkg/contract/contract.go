package contract

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/thortx/thortx-go/pkg/thor"
	"github.com/thortx/thortx-go/pkg/tx"
)

// KVStorageABI is the interface of the key/value storage contract used by the
// deploy, call and invoke commands.
const KVStorageABI = `[
	{"type":"constructor","inputs":[{"name":"_namespace","type":"string"}],"stateMutability":"nonpayable"},
	{"type":"function","name":"namespace","inputs":[],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"},
	{"type":"function","name":"get","inputs":[{"name":"key","type":"bytes32"}],"outputs":[{"name":"","type":"bytes32"}],"stateMutability":"view"},
	{"type":"function","name":"set","inputs":[{"name":"key","type":"bytes32"},{"name":"value","type":"bytes32"}],"outputs":[],"stateMutability":"nonpayable"}
]`

func ParseABI(abiJSON string) (*abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}
	return &parsed, nil
}

// DeployClause builds a contract creation clause: bytecode followed by the
// packed constructor arguments.
func DeployClause(parsed *abi.ABI, bytecode []byte, args ...interface{}) (*tx.Clause, error) {
	if len(bytecode) == 0 {
		return nil, fmt.Errorf("bytecode cannot be empty")
	}
	packed, err := parsed.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack constructor arguments: %w", err)
	}
	data := make([]byte, 0, len(bytecode)+len(packed))
	data = append(data, bytecode...)
	data = append(data, packed...)
	return tx.NewClause(nil).WithData(data), nil
}

// CallClause builds a clause invoking method on the contract at to.
func CallClause(parsed *abi.ABI, to thor.Address, method string, args ...interface{}) (*tx.Clause, error) {
	if _, ok := parsed.Methods[method]; !ok {
		return nil, fmt.Errorf("method %q not found in ABI", method)
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack arguments of %s: %w", method, err)
	}
	return tx.NewClause(&to).WithData(data), nil
}

// UnpackCall decodes the return data of method.
func UnpackCall(parsed *abi.ABI, method string, data []byte) ([]interface{}, error) {
	values, err := parsed.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack result of %s: %w", method, err)
	}
	return values, nil
}

// EncodeString ABI-encodes a single string argument.
func EncodeString(str string) ([]byte, error) {
	stringType, _ := abi.NewType("string", "", nil)
	arguments := abi.Arguments{{Type: stringType}}
	return arguments.Pack(str)
}
