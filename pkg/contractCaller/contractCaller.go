package contractCaller

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/thortx/thortx-go/pkg/clients/thorClient"
	"github.com/thortx/thortx-go/pkg/thor"
)

// IContractCaller deploys and talks to contracts through ABI definitions.
type IContractCaller interface {
	// Deploy creates a contract and returns its address once included.
	Deploy(ctx context.Context, parsed *abi.ABI, bytecode []byte, gas uint64, args ...interface{}) (thor.Address, *thorClient.Receipt, error)

	// CallMethod runs a read-only call and unpacks the result.
	CallMethod(ctx context.Context, parsed *abi.ABI, to thor.Address, method string, args ...interface{}) ([]interface{}, error)

	// Invoke sends a transaction calling method and waits for its receipt.
	Invoke(ctx context.Context, parsed *abi.ABI, to thor.Address, method string, gas uint64, args ...interface{}) (*thorClient.Receipt, error)
}
