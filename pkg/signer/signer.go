package signer

import (
	"context"

	"github.com/thortx/thortx-go/pkg/thor"
)

// ISigner is an external signing authority. It only ever sees the signing
// hash of a transaction and answers with a signature; it never sees or
// changes the transaction itself.
type ISigner interface {
	// SignHash signs a 32 byte digest and returns a 65 byte recoverable
	// secp256k1 signature laid out as [R || S || V] with V in {0, 1}.
	SignHash(ctx context.Context, hash thor.Bytes32) ([]byte, error)

	// Address returns the account address of the signing key.
	Address() thor.Address
}
