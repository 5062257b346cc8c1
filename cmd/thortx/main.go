package main

import (
	"log"
	"os"

	"github.com/thortx/thortx-go/pkg/config"
	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "thortx",
		Usage: "Build, sign and send VeChain Thor transactions",
		Description: `A client for the VeChain Thor transaction format.

Offline commands work on JSON transaction bodies and raw encodings:
- encode, signing-hash, intrinsic-gas, attach, decode

Online commands talk to a thor node and sign with a local key or an AWS KMS key:
- transfer, deploy, call, invoke, receipt, journal

Supported networks: ` + config.GetSupportedNetworksString(),
		Version: "1.0.0",
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			{
				Name:   "encode",
				Usage:  "Print the RLP encoding of an unsigned transaction body",
				Flags:  []cli.Flag{bodyFlag()},
				Action: encodeCommand,
			},
			{
				Name:   "signing-hash",
				Usage:  "Print the blake2b-256 signing hash of a transaction body",
				Flags:  []cli.Flag{bodyFlag(), delegatorForFlag()},
				Action: signingHashCommand,
			},
			{
				Name:   "intrinsic-gas",
				Usage:  "Print the intrinsic gas of a transaction body's clauses",
				Flags:  []cli.Flag{bodyFlag()},
				Action: intrinsicGasCommand,
			},
			{
				Name:  "attach",
				Usage: "Attach an externally produced signature and print the signed encoding",
				Flags: []cli.Flag{
					bodyFlag(),
					&cli.StringFlag{
						Name:     "signature",
						Aliases:  []string{"sig"},
						Usage:    "65-byte [R || S || V] signature as hex (130 bytes for delegated transactions)",
						Required: true,
					},
				},
				Action: attachCommand,
			},
			{
				Name:   "sign",
				Usage:  "Sign a transaction body with the configured signer without sending it",
				Flags:  []cli.Flag{bodyFlag()},
				Action: signCommand,
			},
			{
				Name:  "decode",
				Usage: "Decode a raw transaction and print its body, signer and id",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "raw",
						Usage:    "Signed or unsigned raw transaction as hex",
						Required: true,
					},
				},
				Action: decodeCommand,
			},
			{
				Name:  "transfer",
				Usage: "Transfer VET to an address",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "to",
						Usage:    "Recipient address",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "value",
						Usage:    "Amount in wei, decimal or 0x hex",
						Required: true,
					},
					gasFlag(0),
				},
				Action: transferCommand,
			},
			{
				Name:  "deploy",
				Usage: "Deploy a contract",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "bytecode-file",
						Usage:    "File holding the contract creation bytecode as hex",
						Required: true,
					},
					abiFileFlag(),
					argsFlag(),
					gasFlag(3000000),
				},
				Action: deployCommand,
			},
			{
				Name:  "call",
				Usage: "Run a read-only contract call against the best block",
				Flags: []cli.Flag{
					contractFlag(),
					methodFlag(),
					abiFileFlag(),
					argsFlag(),
				},
				Action: callCommand,
			},
			{
				Name:  "invoke",
				Usage: "Send a transaction calling a contract method",
				Flags: []cli.Flag{
					contractFlag(),
					methodFlag(),
					abiFileFlag(),
					argsFlag(),
					gasFlag(500000),
				},
				Action: invokeCommand,
			},
			{
				Name:  "receipt",
				Usage: "Print the receipt of a transaction",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Transaction id",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "Wait until the transaction is included",
					},
				},
				Action: receiptCommand,
			},
			{
				Name:  "journal",
				Usage: "Inspect the journal of submitted transactions",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List journaled transactions",
						Action: journalListCommand,
					},
					{
						Name:   "sync",
						Usage:  "Look up receipts of pending transactions",
						Action: journalSyncCommand,
					},
				},
			},
			{
				Name:  "kms-create-key",
				Usage: "Create a secp256k1 signing key in AWS KMS",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "key-name",
						Usage:    "Name tag of the key",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "alias",
						Usage: "Alias to create for the key (without the alias/ prefix)",
					},
					&cli.StringFlag{
						Name:  "environment",
						Usage: "Environment tag of the key",
						Value: "dev",
					},
				},
				Action: kmsCreateKeyCommand,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
