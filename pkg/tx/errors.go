package tx

import (
	"fmt"
)

// EncodingError reports a malformed or out-of-range field met while building,
// encoding or decoding a transaction. It is never transient.
type EncodingError struct {
	Field string
	Err   error
}

func (e *EncodingError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("tx encoding: %v", e.Err)
	}
	return fmt.Sprintf("tx encoding: field %s: %v", e.Field, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

func newEncodingError(field string, format string, args ...interface{}) *EncodingError {
	return &EncodingError{Field: field, Err: fmt.Errorf(format, args...)}
}

// MissingSignatureError is returned when a signature is attached that has no bytes.
type MissingSignatureError struct{}

func (e *MissingSignatureError) Error() string {
	return "tx signature: signature is empty"
}

// RecoveryError reports a signature the signer (or delegator) cannot be recovered from.
type RecoveryError struct {
	Err error
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("tx signature: recovery failed: %v", e.Err)
}

func (e *RecoveryError) Unwrap() error {
	return e.Err
}
