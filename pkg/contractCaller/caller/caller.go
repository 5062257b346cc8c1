package caller

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/thortx/thortx-go/pkg/clients/thorClient"
	"github.com/thortx/thortx-go/pkg/contract"
	"github.com/thortx/thortx-go/pkg/contractCaller"
	"github.com/thortx/thortx-go/pkg/thor"
	"github.com/thortx/thortx-go/pkg/transactionSigner"
	"github.com/thortx/thortx-go/pkg/tx"
	"go.uber.org/zap"
)

// ICallClient runs read-only calls against the best block.
type ICallClient interface {
	Call(ctx context.Context, clauses []*tx.Clause, caller *thor.Address) ([]*thorClient.CallResult, error)
}

type ContractCaller struct {
	client ICallClient
	signer transactionSigner.ITransactionSigner
	logger *zap.Logger
}

var _ contractCaller.IContractCaller = (*ContractCaller)(nil)

func NewContractCaller(
	client ICallClient,
	signer transactionSigner.ITransactionSigner,
	logger *zap.Logger,
) (*ContractCaller, error) {
	if client == nil {
		return nil, fmt.Errorf("call client cannot be nil")
	}
	if signer == nil {
		return nil, fmt.Errorf("transaction signer cannot be nil")
	}
	return &ContractCaller{
		client: client,
		signer: signer,
		logger: logger,
	}, nil
}

func (cc *ContractCaller) Deploy(ctx context.Context, parsed *abi.ABI, bytecode []byte, gas uint64, args ...interface{}) (thor.Address, *thorClient.Receipt, error) {
	clause, err := contract.DeployClause(parsed, bytecode, args...)
	if err != nil {
		return thor.Address{}, nil, err
	}

	receipt, err := cc.signAndSendTransaction(ctx, []*tx.Clause{clause}, gas, "deploy")
	if err != nil {
		return thor.Address{}, receipt, err
	}

	if len(receipt.Outputs) == 0 || receipt.Outputs[0].ContractAddress == nil {
		return thor.Address{}, receipt, fmt.Errorf("receipt of %s has no contract address", receipt.Meta.TxID)
	}
	address := *receipt.Outputs[0].ContractAddress

	cc.logger.Sugar().Infow("Contract deployed",
		zap.String("address", address.String()),
		zap.String("txId", receipt.Meta.TxID.String()),
	)
	return address, receipt, nil
}

func (cc *ContractCaller) CallMethod(ctx context.Context, parsed *abi.ABI, to thor.Address, method string, args ...interface{}) ([]interface{}, error) {
	clause, err := contract.CallClause(parsed, to, method, args...)
	if err != nil {
		return nil, err
	}

	from := cc.signer.GetFromAddress()
	results, err := cc.client.Call(ctx, []*tx.Clause{clause}, &from)
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, fmt.Errorf("expected 1 call result, got %d", len(results))
	}

	result := results[0]
	if result.Reverted {
		return nil, fmt.Errorf("call to %s.%s reverted: %s", to, method, result.VMError)
	}
	return contract.UnpackCall(parsed, method, result.Data)
}

func (cc *ContractCaller) Invoke(ctx context.Context, parsed *abi.ABI, to thor.Address, method string, gas uint64, args ...interface{}) (*thorClient.Receipt, error) {
	clause, err := contract.CallClause(parsed, to, method, args...)
	if err != nil {
		return nil, err
	}
	return cc.signAndSendTransaction(ctx, []*tx.Clause{clause}, gas, method)
}
