package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/thortx/thortx-go/pkg/thor"
	"github.com/thortx/thortx-go/pkg/tx"
)

// Testnet genesis id, so the chain tag is 0x27.
const MockGenesisID = "0x000000000b2bce3c70bc649a02749e8687721b09ed2e15997f466536b20bb127"

// MockThorNode serves the subset of the thor REST API used by the client.
// Submitted transactions are decoded and their receipts appear after
// PendingPolls "null" answers.
type MockThorNode struct {
	Server *httptest.Server

	mu           sync.Mutex
	BestNumber   uint32
	BestID       thor.Bytes32
	PendingPolls int
	Revert       bool
	// RejectWith makes POST /transactions answer 400 with this body.
	RejectWith string
	CallResult map[string]interface{}

	submitted    map[thor.Bytes32]*tx.Signed
	polls        map[thor.Bytes32]int
	order        []thor.Bytes32
	lastCallBody map[string]interface{}
}

func NewMockThorNode(t *testing.T) *MockThorNode {
	t.Helper()

	m := &MockThorNode{
		BestNumber: 0x1234,
		BestID:     thor.MustParseBytes32("0x00001234aabbccdd000000000000000000000000000000000000000000000000"),
		submitted:  make(map[thor.Bytes32]*tx.Signed),
		polls:      make(map[thor.Bytes32]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/blocks/", m.handleBlock)
	mux.HandleFunc("/transactions", m.handleSend)
	mux.HandleFunc("/transactions/", m.handleReceipt)
	mux.HandleFunc("/accounts/", m.handleCall)

	m.Server = httptest.NewServer(mux)
	t.Cleanup(m.Server.Close)
	return m
}

// MockContractAddress is the address the mock node reports for a contract
// created by clause i of transaction id.
func MockContractAddress(id thor.Bytes32, i int) thor.Address {
	h := thor.Blake2b256(id[:], []byte{byte(i)})
	return thor.BytesToAddress(h[12:])
}

func (m *MockThorNode) URL() string {
	return m.Server.URL
}

// Submitted returns the decoded transactions in submission order.
func (m *MockThorNode) Submitted() []*tx.Signed {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*tx.Signed, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.submitted[id])
	}
	return out
}

// LastCall returns the body of the last POST /accounts/* request.
func (m *MockThorNode) LastCall() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCallBody
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (m *MockThorNode) handleBlock(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch strings.TrimPrefix(r.URL.Path, "/blocks/") {
	case "0":
		writeJSON(w, map[string]interface{}{"number": 0, "id": MockGenesisID, "isTrunk": true})
	case "best":
		writeJSON(w, map[string]interface{}{"number": m.BestNumber, "id": m.BestID.String(), "isTrunk": true})
	default:
		_, _ = w.Write([]byte("null"))
	}
}

func (m *MockThorNode) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RejectWith != "" {
		http.Error(w, m.RejectWith, http.StatusBadRequest)
		return
	}

	var req struct {
		Raw string `json:"raw"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "body: "+err.Error(), http.StatusBadRequest)
		return
	}
	raw, err := hexutil.Decode(req.Raw)
	if err != nil {
		http.Error(w, "raw: "+err.Error(), http.StatusBadRequest)
		return
	}
	signed, err := tx.DecodeSigned(raw)
	if err != nil {
		http.Error(w, "raw: "+err.Error(), http.StatusBadRequest)
		return
	}
	id, err := tx.ID(signed)
	if err != nil {
		http.Error(w, "bad signature: "+err.Error(), http.StatusBadRequest)
		return
	}

	if _, exists := m.submitted[id]; !exists {
		m.order = append(m.order, id)
	}
	m.submitted[id] = signed
	writeJSON(w, map[string]string{"id": id.String()})
}

func (m *MockThorNode) handleReceipt(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/transactions/")
	idHex := strings.TrimSuffix(path, "/receipt")
	id, err := thor.ParseBytes32(idHex)
	if err != nil {
		http.Error(w, "id: "+err.Error(), http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	signed, exists := m.submitted[id]
	if !exists || m.polls[id] < m.PendingPolls {
		m.polls[id]++
		_, _ = w.Write([]byte("null"))
		return
	}

	origin, _ := tx.Signer(signed)
	outputs := []interface{}{}
	if !m.Revert {
		for i, c := range signed.Body().Clauses() {
			var created interface{}
			if c.IsCreatingContract() {
				created = MockContractAddress(id, i).String()
			}
			outputs = append(outputs, map[string]interface{}{"contractAddress": created, "events": []interface{}{}, "transfers": []interface{}{}})
		}
	}
	gasUsed, _ := tx.IntrinsicGas(signed.Body().Clauses()...)

	writeJSON(w, map[string]interface{}{
		"gasUsed":  gasUsed,
		"gasPayer": origin.String(),
		"paid":     "0x0",
		"reward":   "0x0",
		"reverted": m.Revert,
		"meta": map[string]interface{}{
			"blockID":     m.BestID.String(),
			"blockNumber": m.BestNumber,
			"txID":        id.String(),
			"txOrigin":    origin.String(),
		},
		"outputs": outputs,
	})
}

func (m *MockThorNode) handleCall(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "body: "+err.Error(), http.StatusBadRequest)
		return
	}
	m.lastCallBody = body

	result := m.CallResult
	if result == nil {
		result = map[string]interface{}{"data": "0x", "gasUsed": 0, "reverted": false, "vmError": ""}
	}
	writeJSON(w, []interface{}{result})
}
