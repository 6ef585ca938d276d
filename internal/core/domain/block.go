package domain

// BlockHeader is the subset of an Algorand block header the explorer needs.
// Immutable once fetched; the resolver reads GenesisID/GenesisHash as the
// default genesis parameters when recomputing inner transaction IDs.
type BlockHeader struct {
	Round             uint64 `json:"round"`
	GenesisID         string `json:"genesis-id"`
	GenesisHash       []byte `json:"genesis-hash"`
	PreviousBlockHash []byte `json:"previous-block-hash,omitempty"`
	Seed              []byte `json:"seed,omitempty"`
	Timestamp         int64  `json:"timestamp"`
	TxnCounter        uint64 `json:"txn-counter"`
}

// SearchResultType discriminates SearchByID results.
type SearchResultType string

const (
	SearchResultBlock       SearchResultType = "block"
	SearchResultTransaction SearchResultType = "transaction"
)

// SearchResult is the outcome of interpreting a free-form search string as a
// round number or a transaction ID.
type SearchResult struct {
	Type        SearchResultType `json:"type"`
	Block       *BlockHeader     `json:"block,omitempty"`
	Transaction *Transaction     `json:"transaction,omitempty"`
}
