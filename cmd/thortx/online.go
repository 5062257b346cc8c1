package main

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/thortx/thortx-go/internal/aws"
	"github.com/thortx/thortx-go/pkg/clients/thorClient"
	"github.com/thortx/thortx-go/pkg/contract"
	"github.com/thortx/thortx-go/pkg/logger"
	"github.com/thortx/thortx-go/pkg/signer/awsKmsSigner"
	"github.com/thortx/thortx-go/pkg/thor"
	"github.com/thortx/thortx-go/pkg/tx"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// parseAmount accepts a decimal or 0x hex wei amount.
func parseAmount(s string) (*big.Int, error) {
	var (
		v  *big.Int
		ok bool
	)
	if rest, hex := strings.CutPrefix(s, "0x"); hex {
		v, ok = new(big.Int).SetString(rest, 16)
	} else {
		v, ok = new(big.Int).SetString(s, 10)
	}
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

func loadABI(c *cli.Context) (*abi.ABI, error) {
	path := c.String("abi-file")
	if path == "" {
		return contract.ParseABI(contract.KVStorageABI)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ABI file: %w", err)
	}
	return contract.ParseABI(string(data))
}

func methodArgs(parsed *abi.ABI, method string, values []string) ([]interface{}, error) {
	m, ok := parsed.Methods[method]
	if !ok {
		return nil, fmt.Errorf("method %q not found in ABI", method)
	}
	return contract.ParseArguments(m.Inputs, values)
}

// sendAndReport sends body and prints the receipt, which a reverted
// transaction also has.
func sendAndReport(c *cli.Context, r *runtime, body *tx.Body) (*thorClient.Receipt, error) {
	if r.cfg.Verbose {
		if err := printJSON(c.App.ErrWriter, body.ToJSON()); err != nil {
			return nil, err
		}
	}
	receipt, err := r.signer.SignAndSendTransaction(c.Context, body)
	if receipt != nil {
		if perr := printJSON(c.App.Writer, receipt); perr != nil {
			return nil, perr
		}
	}
	return receipt, err
}

func transferCommand(c *cli.Context) error {
	return withRuntime(c, func(r *runtime) error {
		to, err := thor.ParseAddress(c.String("to"))
		if err != nil {
			return fmt.Errorf("invalid recipient: %w", err)
		}
		amount, err := parseAmount(c.String("value"))
		if err != nil {
			return err
		}
		clause, err := tx.NewClauseFromBig(&to, amount, nil)
		if err != nil {
			return err
		}

		body, err := r.signer.NewBody(c.Context, []*tx.Clause{clause}, c.Uint64("gas"))
		if err != nil {
			return err
		}
		_, err = sendAndReport(c, r, body)
		return err
	})
}

func deployCommand(c *cli.Context) error {
	return withRuntime(c, func(r *runtime) error {
		parsed, err := loadABI(c)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(c.String("bytecode-file"))
		if err != nil {
			return fmt.Errorf("failed to read bytecode file: %w", err)
		}
		bytecode, err := hexutil.Decode(strings.TrimSpace(string(data)))
		if err != nil {
			return fmt.Errorf("invalid bytecode hex: %w", err)
		}
		args, err := contract.ParseArguments(parsed.Constructor.Inputs, c.StringSlice("arg"))
		if err != nil {
			return err
		}

		cc, err := r.contractCaller()
		if err != nil {
			return err
		}
		address, _, err := cc.Deploy(c.Context, parsed, bytecode, c.Uint64("gas"), args...)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(c.App.Writer, "Contract deployed at %s\n", address)
		return err
	})
}

func callCommand(c *cli.Context) error {
	return withRuntime(c, func(r *runtime) error {
		parsed, err := loadABI(c)
		if err != nil {
			return err
		}
		to, err := thor.ParseAddress(c.String("contract"))
		if err != nil {
			return fmt.Errorf("invalid contract address: %w", err)
		}
		method := c.String("method")
		args, err := methodArgs(parsed, method, c.StringSlice("arg"))
		if err != nil {
			return err
		}

		cc, err := r.contractCaller()
		if err != nil {
			return err
		}
		values, err := cc.CallMethod(c.Context, parsed, to, method, args...)
		if err != nil {
			return err
		}
		for _, v := range values {
			if b, ok := v.([32]byte); ok {
				v = hexutil.Encode(b[:])
			}
			if _, err := fmt.Fprintln(c.App.Writer, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func invokeCommand(c *cli.Context) error {
	return withRuntime(c, func(r *runtime) error {
		parsed, err := loadABI(c)
		if err != nil {
			return err
		}
		to, err := thor.ParseAddress(c.String("contract"))
		if err != nil {
			return fmt.Errorf("invalid contract address: %w", err)
		}
		method := c.String("method")
		args, err := methodArgs(parsed, method, c.StringSlice("arg"))
		if err != nil {
			return err
		}

		clause, err := contract.CallClause(parsed, to, method, args...)
		if err != nil {
			return err
		}
		body, err := r.signer.NewBody(c.Context, []*tx.Clause{clause}, c.Uint64("gas"))
		if err != nil {
			return err
		}
		_, err = sendAndReport(c, r, body)
		return err
	})
}

func receiptCommand(c *cli.Context) error {
	return withRuntime(c, func(r *runtime) error {
		id, err := thor.ParseBytes32(c.String("id"))
		if err != nil {
			return fmt.Errorf("invalid transaction id: %w", err)
		}

		var receipt *thorClient.Receipt
		if c.Bool("wait") {
			receipt, err = r.client.WaitForReceipt(c.Context, id)
		} else {
			receipt, err = r.client.GetReceipt(c.Context, id)
		}
		if err != nil {
			return err
		}
		if receipt == nil {
			_, err = fmt.Fprintf(c.App.Writer, "Transaction %s is pending\n", id)
			return err
		}
		return printJSON(c.App.Writer, receipt)
	})
}

func journalListCommand(c *cli.Context) error {
	return withRuntime(c, func(r *runtime) error {
		records, err := r.journal.ListTransactions()
		if err != nil {
			return err
		}
		return printJSON(c.App.Writer, records)
	})
}

func journalSyncCommand(c *cli.Context) error {
	return withRuntime(c, func(r *runtime) error {
		pending, err := r.signer.SyncPending(c.Context)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(c.App.Writer, "%d transaction(s) still pending\n", len(pending))
		return err
	})
}

func kmsCreateKeyCommand(c *cli.Context) error {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("debug")})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	awsCfg, err := aws.LoadAWSConfig(c.Context, aws.Options{Region: c.String("aws-region")})
	if err != nil {
		return err
	}
	identity, err := aws.GetCallerIdentity(c.Context, awsCfg)
	if err != nil {
		return err
	}
	l.Info("Using AWS identity", zap.String("account", identity.Account), zap.String("arn", identity.Arn))

	client := kms.NewFromConfig(awsCfg)
	keyId, err := awsKmsSigner.CreateSigningKey(c.Context, client, c.String("key-name"), c.String("alias"), c.String("environment"))
	if err != nil {
		return err
	}
	s, err := awsKmsSigner.NewAWSKMSSignerWithClient(c.Context, client, keyId, l)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "Created KMS key %s with address %s\n", keyId, s.Address())
	return err
}
