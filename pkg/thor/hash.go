package thor

import (
	"golang.org/x/crypto/blake2b"
)

// Blake2b256 computes the 256-bit Blake2b digest over the concatenation of data.
func Blake2b256(data ...[]byte) Bytes32 {
	h, err := blake2b.New256(nil)
	if err != nil {
		// only fails for keys longer than 64 bytes
		panic(err)
	}
	for _, d := range data {
		_, _ = h.Write(d)
	}
	var out Bytes32
	h.Sum(out[:0])
	return out
}
