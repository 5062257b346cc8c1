package caller

import (
	"context"

	"github.com/thortx/thortx-go/pkg/clients/thorClient"
	"github.com/thortx/thortx-go/pkg/tx"
	"go.uber.org/zap"
)

func (cc *ContractCaller) signAndSendTransaction(ctx context.Context, clauses []*tx.Clause, gas uint64, operation string) (*thorClient.Receipt, error) {
	body, err := cc.signer.NewBody(ctx, clauses, gas)
	if err != nil {
		return nil, err
	}

	cc.logger.Sugar().Infow("Signing and sending transaction",
		zap.String("operation", operation),
		zap.String("from", cc.signer.GetFromAddress().String()),
		zap.Uint64("gas", body.Gas()),
	)

	return cc.signer.SignAndSendTransaction(ctx, body)
}
