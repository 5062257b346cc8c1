package tx

import (
	"math"
)

const (
	TxGas                     uint64 = 5000
	ClauseGas                 uint64 = 16000
	ClauseGasContractCreation uint64 = 48000

	zeroDataGas    uint64 = 4
	nonZeroDataGas uint64 = 68
)

// IntrinsicGas returns the gas a transaction with the given clauses consumes
// before any execution.
func IntrinsicGas(clauses ...*Clause) (uint64, error) {
	if len(clauses) == 0 {
		return TxGas + ClauseGas, nil
	}

	total := TxGas
	for i, c := range clauses {
		if c == nil {
			return 0, newEncodingError("clauses", "nil clause at %d", i)
		}
		dgas, err := dataGas(c.data)
		if err != nil {
			return 0, err
		}
		cgas := ClauseGas
		if c.IsCreatingContract() {
			cgas = ClauseGasContractCreation
		}
		if total > math.MaxUint64-cgas-dgas {
			return 0, newEncodingError("gas", "intrinsic gas overflows uint64")
		}
		total += cgas + dgas
	}
	return total, nil
}

func dataGas(data []byte) (uint64, error) {
	var zeros, nonZeros uint64
	for _, b := range data {
		if b == 0 {
			zeros++
		} else {
			nonZeros++
		}
	}
	if nonZeros > math.MaxUint64/nonZeroDataGas {
		return 0, newEncodingError("data", "data gas overflows uint64")
	}
	return zeros*zeroDataGas + nonZeros*nonZeroDataGas, nil
}
