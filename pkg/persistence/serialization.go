package persistence

import (
	"encoding/json"
	"fmt"
)

// MarshalTxRecord serializes a TxRecord to JSON bytes.
func MarshalTxRecord(record *TxRecord) ([]byte, error) {
	if record == nil {
		return nil, fmt.Errorf("cannot marshal nil TxRecord")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal TxRecord to JSON: %w", err)
	}

	return data, nil
}

// UnmarshalTxRecord deserializes a TxRecord from JSON bytes.
func UnmarshalTxRecord(data []byte) (*TxRecord, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var record TxRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to TxRecord: %w", err)
	}

	return &record, nil
}
