package domain

// AssetParams is the display metadata cached per asset ID.
type AssetParams struct {
	Name     string `json:"name"`
	UnitName string `json:"unit-name"`
	Total    uint64 `json:"total"`
	Decimals uint32 `json:"decimals"`
}

// AlgoAssetID is the asset ID of the network's native unit.
const AlgoAssetID uint64 = 0

// AlgoParams returns the hard-coded metadata for asset 0. The native unit is
// never fetched from the node.
func AlgoParams() *AssetParams {
	return &AssetParams{
		Name:     "Algorand",
		UnitName: "ALGO",
		Total:    10_000_000_000,
		Decimals: 6,
	}
}
