package tx

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/thortx/thortx-go/pkg/thor"
)

// SignatureLength is the size of a recoverable secp256k1 signature [R || S || V], V in {0, 1}.
const SignatureLength = 65

// Signed is a body with a signature attached. It cannot be re-signed or
// mutated; attach to a new body instead.
type Signed struct {
	body      *Body
	signature []byte
}

// Attach stores sig alongside body. The signature is not checked against the
// signing hash; that is the node's job.
func Attach(body *Body, sig []byte) (*Signed, error) {
	if len(sig) == 0 {
		return nil, &MissingSignatureError{}
	}
	if body == nil {
		return nil, newEncodingError("", "nil body")
	}
	return &Signed{
		body:      body,
		signature: append([]byte(nil), sig...),
	}, nil
}

func (s *Signed) Body() *Body {
	return s.body
}

func (s *Signed) Signature() []byte {
	return append([]byte(nil), s.signature...)
}

// EncodeSigned returns the raw transaction: the body fields followed by the
// signature as the last element of the same list.
func EncodeSigned(signed *Signed) ([]byte, error) {
	if signed == nil {
		return nil, newEncodingError("", "nil signed transaction")
	}
	br, err := toRLP(signed.body)
	if err != nil {
		return nil, err
	}
	out, err := rlp.EncodeToBytes(&signedRLP{
		ChainTag:     br.ChainTag,
		BlockRef:     br.BlockRef,
		Expiration:   br.Expiration,
		Clauses:      br.Clauses,
		GasPriceCoef: br.GasPriceCoef,
		Gas:          br.Gas,
		DependsOn:    br.DependsOn,
		Nonce:        br.Nonce,
		Reserved:     br.Reserved,
		Signature:    signed.signature,
	})
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	return out, nil
}

// DecodeSigned parses a raw transaction and attaches its signature.
func DecodeSigned(raw []byte) (*Signed, error) {
	body, sig, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if sig == nil {
		return nil, &MissingSignatureError{}
	}
	return Attach(body, sig)
}

func recoverAddress(hash thor.Bytes32, sig []byte) (thor.Address, error) {
	if len(sig) != SignatureLength {
		return thor.Address{}, &RecoveryError{Err: fmt.Errorf("invalid signature length %d", len(sig))}
	}
	if sig[64] > 1 {
		return thor.Address{}, &RecoveryError{Err: fmt.Errorf("invalid recovery id %d", sig[64])}
	}
	pub, err := crypto.SigToPub(hash[:], sig)
	if err != nil {
		return thor.Address{}, &RecoveryError{Err: err}
	}
	return thor.Address(crypto.PubkeyToAddress(*pub)), nil
}

func originSignature(signed *Signed) ([]byte, error) {
	sig := signed.signature
	if signed.body.features.IsDelegated() {
		if len(sig) != SignatureLength*2 {
			return nil, &RecoveryError{Err: fmt.Errorf("delegated transaction needs a %d byte signature, got %d", SignatureLength*2, len(sig))}
		}
		return sig[:SignatureLength], nil
	}
	return sig, nil
}

// Signer recovers the origin address from the signature over the signing hash.
func Signer(signed *Signed) (thor.Address, error) {
	if signed == nil {
		return thor.Address{}, &RecoveryError{Err: fmt.Errorf("nil signed transaction")}
	}
	hash, err := SigningHash(signed.body)
	if err != nil {
		return thor.Address{}, err
	}
	sig, err := originSignature(signed)
	if err != nil {
		return thor.Address{}, err
	}
	return recoverAddress(hash, sig)
}

// Delegator recovers the gas payer of a delegated transaction. It returns
// nil for transactions without the delegation feature.
func Delegator(signed *Signed) (*thor.Address, error) {
	if signed == nil {
		return nil, &RecoveryError{Err: fmt.Errorf("nil signed transaction")}
	}
	if !signed.body.features.IsDelegated() {
		return nil, nil
	}
	origin, err := Signer(signed)
	if err != nil {
		return nil, err
	}
	hash, err := DelegatorSigningHash(signed.body, origin)
	if err != nil {
		return nil, err
	}
	delegator, err := recoverAddress(hash, signed.signature[SignatureLength:])
	if err != nil {
		return nil, err
	}
	return &delegator, nil
}

// ID identifies a signed transaction on chain: Blake2b256(signingHash || signer).
func ID(signed *Signed) (thor.Bytes32, error) {
	signer, err := Signer(signed)
	if err != nil {
		return thor.Bytes32{}, err
	}
	hash, err := SigningHash(signed.body)
	if err != nil {
		return thor.Bytes32{}, err
	}
	return thor.Blake2b256(hash[:], signer[:]), nil
}
