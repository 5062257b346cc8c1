package signerFactory

import (
	"context"
	"fmt"

	"github.com/thortx/thortx-go/internal/aws"
	"github.com/thortx/thortx-go/pkg/config"
	"github.com/thortx/thortx-go/pkg/signer"
	"github.com/thortx/thortx-go/pkg/signer/awsKmsSigner"
	"github.com/thortx/thortx-go/pkg/signer/localSigner"
	"go.uber.org/zap"
)

// NewSigner builds the key signer selected by cfg.
func NewSigner(ctx context.Context, cfg *config.SignerConfig, logger *zap.Logger) (signer.ISigner, error) {
	switch cfg.Type {
	case config.SignerType_Local:
		return localSigner.NewLocalSignerFromHex(cfg.PrivateKey, logger)
	case config.SignerType_AWSKMS:
		awsCfg, err := aws.LoadAWSConfig(ctx, aws.Options{Region: cfg.AWSRegion})
		if err != nil {
			return nil, err
		}
		return awsKmsSigner.NewAWSKMSSigner(ctx, awsCfg, cfg.KMSKeyID, logger)
	default:
		return nil, fmt.Errorf("unsupported signer type: %s", cfg.Type)
	}
}
