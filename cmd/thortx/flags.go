package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thortx/thortx-go/pkg/config"
	"github.com/urfave/cli/v2"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "node-url",
			Usage:   "Thor node REST endpoint",
			EnvVars: []string{config.EnvNodeURL},
		},
		&cli.StringFlag{
			Name:    "network",
			Usage:   "Network whose default node is used when --node-url is unset: " + config.GetSupportedNetworksString(),
			Value:   string(config.NetworkName_Solo),
			EnvVars: []string{config.EnvNetwork},
		},
		&cli.StringFlag{
			Name:    "signer-type",
			Usage:   "Key signer: local or aws-kms",
			Value:   string(config.SignerType_Local),
			EnvVars: []string{config.EnvSignerType},
		},
		&cli.StringFlag{
			Name:    "private-key",
			Usage:   "Hex secp256k1 private key for the local signer",
			EnvVars: []string{config.EnvPrivateKey},
		},
		&cli.StringFlag{
			Name:    "kms-key-id",
			Usage:   "AWS KMS key id or alias for the aws-kms signer",
			EnvVars: []string{config.EnvKMSKeyID},
		},
		&cli.StringFlag{
			Name:    "aws-region",
			Usage:   "AWS region override",
			EnvVars: []string{config.EnvAWSRegion},
		},
		&cli.StringFlag{
			Name:    "journal-type",
			Usage:   "Transaction journal backend: memory, badger or redis",
			Value:   string(config.JournalType_Memory),
			EnvVars: []string{config.EnvJournalType},
		},
		&cli.StringFlag{
			Name:    "journal-path",
			Usage:   "Data directory of the badger journal",
			EnvVars: []string{config.EnvJournalPath},
		},
		&cli.StringFlag{
			Name:    "redis-address",
			Usage:   "Redis address (host:port) of the redis journal",
			EnvVars: []string{config.EnvRedisAddress},
		},
		&cli.StringFlag{
			Name:    "redis-password",
			Usage:   "Redis password",
			EnvVars: []string{config.EnvRedisPassword},
		},
		&cli.IntFlag{
			Name:    "redis-db",
			Usage:   "Redis database number (0-15)",
			EnvVars: []string{config.EnvRedisDB},
		},
		&cli.StringFlag{
			Name:    "redis-key-prefix",
			Usage:   "Prefix for all journal keys in Redis",
			EnvVars: []string{config.EnvRedisKeyPrefix},
		},
		&cli.UintFlag{
			Name:  "expiration",
			Usage: "Transaction expiration in blocks",
			Value: uint(config.DefaultExpiration),
		},
		&cli.UintFlag{
			Name:  "gas-price-coef",
			Usage: "Gas price coefficient (0-255)",
			Value: uint(config.DefaultGasPriceCoef),
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Usage:   "Print the transaction body before sending",
			EnvVars: []string{config.EnvVerbose},
		},
	}
}

func bodyFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "body",
		Usage:    "Transaction body as JSON, @path to read it from a file, or - for stdin",
		Required: true,
	}
}

func delegatorForFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "delegator-for",
		Usage: "Print the gas payer's hash for this origin address instead",
	}
}

func gasFlag(value uint64) cli.Flag {
	return &cli.Uint64Flag{
		Name:  "gas",
		Usage: "Gas limit, 0 for the intrinsic gas",
		Value: value,
	}
}

func abiFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "abi-file",
		Usage: "Contract ABI JSON file (defaults to the KVStorage ABI)",
	}
}

func argsFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "arg",
		Usage: "Method or constructor argument, repeat for each one",
	}
}

func contractFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "contract",
		Usage:    "Contract address",
		Required: true,
	}
}

func methodFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "method",
		Usage:    "Contract method name",
		Required: true,
	}
}

// readInput returns s, the contents of the file when s starts with "@", or
// stdin when s is "-".
func readInput(s string) ([]byte, error) {
	if s == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	if path, ok := strings.CutPrefix(s, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return data, nil
	}
	return []byte(s), nil
}

// parseConfig builds and validates the client configuration from flags.
func parseConfig(c *cli.Context) (*config.ClientConfig, error) {
	if c.Uint("gas-price-coef") > 255 {
		return nil, fmt.Errorf("gas-price-coef must be between 0 and 255")
	}

	cfg := &config.ClientConfig{
		NodeURL:      c.String("node-url"),
		Network:      config.NetworkName(c.String("network")),
		Expiration:   uint32(c.Uint("expiration")),
		GasPriceCoef: uint8(c.Uint("gas-price-coef")),
		Signer: config.SignerConfig{
			Type:       config.SignerType(c.String("signer-type")),
			PrivateKey: c.String("private-key"),
			KMSKeyID:   c.String("kms-key-id"),
			AWSRegion:  c.String("aws-region"),
		},
		Journal: config.JournalConfig{
			Type:     config.JournalType(c.String("journal-type")),
			DataPath: c.String("journal-path"),
		},
		Debug:   c.Bool("debug"),
		Verbose: c.Bool("verbose"),
	}
	if cfg.Journal.Type == config.JournalType_Redis {
		cfg.Journal.Redis = &config.RedisConfig{
			Address:   c.String("redis-address"),
			Password:  c.String("redis-password"),
			DB:        c.Int("redis-db"),
			KeyPrefix: c.String("redis-key-prefix"),
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
