package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/thortx/thortx-go/pkg/logger"
	"github.com/thortx/thortx-go/pkg/signer/signerFactory"
	"github.com/thortx/thortx-go/pkg/thor"
	"github.com/thortx/thortx-go/pkg/tx"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func readBody(c *cli.Context) (*tx.Body, error) {
	data, err := readInput(c.String("body"))
	if err != nil {
		return nil, err
	}
	body, err := tx.ParseBody(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transaction body: %w", err)
	}
	return body, nil
}

func encodeCommand(c *cli.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	encoded, err := tx.Encode(body)
	if err != nil {
		return fmt.Errorf("failed to encode transaction: %w", err)
	}
	_, err = fmt.Fprintln(c.App.Writer, hexutil.Encode(encoded))
	return err
}

func signingHashCommand(c *cli.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}

	var hash thor.Bytes32
	if origin := c.String("delegator-for"); origin != "" {
		addr, err := thor.ParseAddress(origin)
		if err != nil {
			return fmt.Errorf("invalid delegator-for address: %w", err)
		}
		hash, err = tx.DelegatorSigningHash(body, addr)
		if err != nil {
			return fmt.Errorf("failed to compute delegator signing hash: %w", err)
		}
	} else {
		hash, err = tx.SigningHash(body)
		if err != nil {
			return fmt.Errorf("failed to compute signing hash: %w", err)
		}
	}
	_, err = fmt.Fprintln(c.App.Writer, hash.String())
	return err
}

func intrinsicGasCommand(c *cli.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	gas, err := tx.IntrinsicGas(body.Clauses()...)
	if err != nil {
		return fmt.Errorf("failed to compute intrinsic gas: %w", err)
	}
	_, err = fmt.Fprintln(c.App.Writer, gas)
	return err
}

func attachCommand(c *cli.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	sig, err := hexutil.Decode(c.String("signature"))
	if err != nil {
		return fmt.Errorf("invalid signature hex: %w", err)
	}
	signed, err := tx.Attach(body, sig)
	if err != nil {
		return err
	}
	return printSigned(c, signed)
}

// signCommand signs with the configured key without touching a node.
func signCommand(c *cli.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	cfg, err := parseConfig(c)
	if err != nil {
		return err
	}
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	keySigner, err := signerFactory.NewSigner(c.Context, &cfg.Signer, l)
	if err != nil {
		return fmt.Errorf("failed to create signer: %w", err)
	}

	hash, err := tx.SigningHash(body)
	if err != nil {
		return fmt.Errorf("failed to compute signing hash: %w", err)
	}
	sig, err := keySigner.SignHash(c.Context, hash)
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	signed, err := tx.Attach(body, sig)
	if err != nil {
		return err
	}
	return printSigned(c, signed)
}

type decodedTx struct {
	Body      *tx.BodyJSON  `json:"body"`
	Signature string        `json:"signature,omitempty"`
	Origin    *thor.Address `json:"origin,omitempty"`
	Delegator *thor.Address `json:"delegator,omitempty"`
	ID        *thor.Bytes32 `json:"id,omitempty"`
	Raw       string        `json:"raw,omitempty"`
}

// describeSigned always reports the raw encoding. Origin, id and delegator
// are only filled when the signature recovers; attach does not validate
// signatures, so an opaque one still yields raw bytes.
func describeSigned(signed *tx.Signed, logger *zap.Logger) (*decodedTx, error) {
	raw, err := tx.EncodeSigned(signed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode signed transaction: %w", err)
	}
	out := &decodedTx{
		Body:      signed.Body().ToJSON(),
		Signature: hexutil.Encode(signed.Signature()),
		Raw:       hexutil.Encode(raw),
	}

	var recErr *tx.RecoveryError
	origin, err := tx.Signer(signed)
	switch {
	case err == nil:
		out.Origin = &origin
		id, err := tx.ID(signed)
		if err != nil {
			return nil, fmt.Errorf("failed to compute transaction id: %w", err)
		}
		out.ID = &id
	case errors.As(err, &recErr):
		logger.Warn("Signature does not recover an origin, omitting origin and id", zap.Error(err))
	default:
		return nil, fmt.Errorf("failed to recover signer: %w", err)
	}
	if out.Origin == nil {
		return out, nil
	}

	delegator, err := tx.Delegator(signed)
	switch {
	case err == nil:
		out.Delegator = delegator
	case errors.As(err, &recErr):
		logger.Warn("Signature does not recover a delegator, omitting delegator", zap.Error(err))
	default:
		return nil, fmt.Errorf("failed to recover delegator: %w", err)
	}
	return out, nil
}

func printSigned(c *cli.Context, signed *tx.Signed) error {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("debug")})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	out, err := describeSigned(signed, l)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, out)
}

func decodeCommand(c *cli.Context) error {
	raw, err := hexutil.Decode(c.String("raw"))
	if err != nil {
		return fmt.Errorf("invalid raw hex: %w", err)
	}
	body, sig, err := tx.Decode(raw)
	if err != nil {
		return fmt.Errorf("failed to decode transaction: %w", err)
	}
	if sig == nil {
		return printJSON(c.App.Writer, &decodedTx{Body: body.ToJSON()})
	}
	signed, err := tx.Attach(body, sig)
	if err != nil {
		return err
	}
	return printSigned(c, signed)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
