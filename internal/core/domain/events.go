package domain

// Event payloads pushed over the scan hub. Field tags follow the hub's JSON
// encoding (camelCase).

// Trade is a single AMM trade record. Also returned by the trade-history REST
// API.
type Trade struct {
	ID        string  `json:"id"`
	Timestamp int64   `json:"timestamp"`
	Pool      string  `json:"pool"`
	AssetA    string  `json:"assetA"`
	AssetB    string  `json:"assetB"`
	AmountA   float64 `json:"amountA"`
	AmountB   float64 `json:"amountB"`
	Price     float64 `json:"price"`
	Type      string  `json:"type"` // "buy" or "sell"
	TxID      string  `json:"txId"`
	Sender    string  `json:"sender"`
}

// Liquidity is an AMM liquidity add/remove record.
type Liquidity struct {
	ID        string  `json:"id"`
	Timestamp int64   `json:"timestamp"`
	Pool      string  `json:"pool"`
	AssetA    string  `json:"assetA"`
	AssetB    string  `json:"assetB"`
	AmountA   float64 `json:"amountA"`
	AmountB   float64 `json:"amountB"`
	Direction string  `json:"direction"` // "add" or "remove"
	TxID      string  `json:"txId"`
	Sender    string  `json:"sender"`
}

// Pool is the state of a single AMM pool.
type Pool struct {
	Address     string  `json:"address"`
	AssetIDA    uint64  `json:"assetIdA"`
	AssetIDB    uint64  `json:"assetIdB"`
	A           float64 `json:"a"`
	B           float64 `json:"b"`
	Protocol    string  `json:"protocol,omitempty"`
	LastUpdated string  `json:"lastUpdated,omitempty"` // ISO 8601
}

// AggregatedPool folds every pool of an asset pair into one record. ID is
// "<AssetIdA>-<AssetIdB>".
type AggregatedPool struct {
	ID          string  `json:"id"`
	AssetIDA    uint64  `json:"assetIdA"`
	AssetIDB    uint64  `json:"assetIdB"`
	A           float64 `json:"a"`
	B           float64 `json:"b"`
	TVLA        float64 `json:"tvL_A"`
	TVLB        float64 `json:"tvL_B"`
	PoolCount   int     `json:"poolCount"`
	LastUpdated string  `json:"lastUpdated,omitempty"` // ISO 8601
}

// BlockEvent is the lightweight new-block notification.
type BlockEvent struct {
	Round             uint64 `json:"round"`
	Timestamp         string `json:"timestamp"` // ISO 8601
	GenesisID         string `json:"genesisId"`
	Transactions      uint64 `json:"transactions"`
	TotalTransactions uint64 `json:"totalTransactions"`
}

// AssetEvent is the new/updated asset notification.
type AssetEvent struct {
	Index    uint64 `json:"index"`
	Name     string `json:"name"`
	UnitName string `json:"unitName"`
	Total    uint64 `json:"total"`
	Decimals uint32 `json:"decimals"`
}
