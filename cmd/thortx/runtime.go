package main

import (
	"fmt"

	"github.com/thortx/thortx-go/pkg/clients/thorClient"
	"github.com/thortx/thortx-go/pkg/config"
	"github.com/thortx/thortx-go/pkg/contractCaller/caller"
	"github.com/thortx/thortx-go/pkg/logger"
	"github.com/thortx/thortx-go/pkg/persistence"
	"github.com/thortx/thortx-go/pkg/persistence/factory"
	"github.com/thortx/thortx-go/pkg/signer/signerFactory"
	"github.com/thortx/thortx-go/pkg/transactionSigner"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// runtime holds the collaborators of the online commands.
type runtime struct {
	cfg     *config.ClientConfig
	logger  *zap.Logger
	client  *thorClient.Client
	journal persistence.ITxJournal
	signer  *transactionSigner.ThorTransactionSigner
}

func newRuntime(c *cli.Context) (*runtime, error) {
	cfg, err := parseConfig(c)
	if err != nil {
		return nil, err
	}

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	client, err := thorClient.NewClient(&thorClient.ClientConfig{BaseUrl: cfg.NodeURL}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create thor client: %w", err)
	}

	keySigner, err := signerFactory.NewSigner(c.Context, &cfg.Signer, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}

	journal, err := factory.NewJournal(&cfg.Journal, l)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	ts := transactionSigner.NewThorTransactionSigner(&transactionSigner.SignerConfig{
		Expiration:   cfg.Expiration,
		GasPriceCoef: cfg.GasPriceCoef,
	}, client, keySigner, journal, l)

	return &runtime{
		cfg:     cfg,
		logger:  l,
		client:  client,
		journal: journal,
		signer:  ts,
	}, nil
}

func (r *runtime) contractCaller() (*caller.ContractCaller, error) {
	return caller.NewContractCaller(r.client, r.signer, r.logger)
}

func (r *runtime) close() {
	if err := r.journal.Close(); err != nil {
		r.logger.Warn("Failed to close journal", zap.Error(err))
	}
	_ = r.logger.Sync()
}

func withRuntime(c *cli.Context, action func(r *runtime) error) error {
	r, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer r.close()
	return action(r)
}
