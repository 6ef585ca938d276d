package domain

// TxType identifies one of the closed set of Algorand transaction types.
type TxType string

const (
	TxTypePay        TxType = "pay"    // payment
	TxTypeAssetXfer  TxType = "axfer"  // asset transfer
	TxTypeAppCall    TxType = "appl"   // application call
	TxTypeAssetCfg   TxType = "acfg"   // asset configuration
	TxTypeAssetFrz   TxType = "afrz"   // asset freeze
	TxTypeKeyReg     TxType = "keyreg" // key registration
	TxTypeStateProof TxType = "stpf"   // state proof
)

// Transaction is the indexer-shaped transaction record. The JSON tags follow
// the Algorand indexer REST encoding (kebab-case, byte fields base64).
//
// For inner transactions produced by application calls the ID is derived, not
// authoritative: the indexer omits it and the genesis/group fields may be
// absent until filled in from the enclosing transaction or block header.
type Transaction struct {
	ID     string `json:"id,omitempty"`
	TxType TxType `json:"tx-type"`
	Sender string `json:"sender"`
	Fee    uint64 `json:"fee"`

	FirstValid uint64 `json:"first-valid"`
	LastValid  uint64 `json:"last-valid"`

	GenesisHash []byte `json:"genesis-hash,omitempty"`
	GenesisID   string `json:"genesis-id,omitempty"`
	Group       []byte `json:"group,omitempty"`
	Note        []byte `json:"note,omitempty"`
	Lease       []byte `json:"lease,omitempty"`
	RekeyTo     string `json:"rekey-to,omitempty"`

	ConfirmedRound   uint64 `json:"confirmed-round,omitempty"`
	RoundTime        uint64 `json:"round-time,omitempty"`
	IntraRoundOffset uint64 `json:"intra-round-offset,omitempty"`

	Payment       *PaymentFields       `json:"payment-transaction,omitempty"`
	AssetTransfer *AssetTransferFields `json:"asset-transfer-transaction,omitempty"`
	AppCall       *AppCallFields       `json:"application-transaction,omitempty"`
	AssetConfig   *AssetConfigFields   `json:"asset-config-transaction,omitempty"`
	AssetFreeze   *AssetFreezeFields   `json:"asset-freeze-transaction,omitempty"`
	KeyReg        *KeyRegFields        `json:"keyreg-transaction,omitempty"`
	StateProof    *StateProofFields    `json:"state-proof-transaction,omitempty"`

	InnerTxns []Transaction `json:"inner-txns,omitempty"`
}

// PaymentFields carries the pay-type payload.
type PaymentFields struct {
	Receiver         string `json:"receiver"`
	Amount           uint64 `json:"amount"`
	CloseRemainderTo string `json:"close-remainder-to,omitempty"`
	CloseAmount      uint64 `json:"close-amount,omitempty"`
}

// AssetTransferFields carries the axfer-type payload. Sender here is the
// clawback source, only set on clawback transfers.
type AssetTransferFields struct {
	AssetID     uint64 `json:"asset-id"`
	Amount      uint64 `json:"amount"`
	Receiver    string `json:"receiver"`
	Sender      string `json:"sender,omitempty"`
	CloseTo     string `json:"close-to,omitempty"`
	CloseAmount uint64 `json:"close-amount,omitempty"`
}

// AppCallFields carries the appl-type payload.
type AppCallFields struct {
	ApplicationID     uint64       `json:"application-id"`
	OnCompletion      string       `json:"on-completion"`
	ApplicationArgs   [][]byte     `json:"application-args,omitempty"`
	Accounts          []string     `json:"accounts,omitempty"`
	ForeignApps       []uint64     `json:"foreign-apps,omitempty"`
	ForeignAssets     []uint64     `json:"foreign-assets,omitempty"`
	ApprovalProgram   []byte       `json:"approval-program,omitempty"`
	ClearStateProgram []byte       `json:"clear-state-program,omitempty"`
	GlobalStateSchema *StateSchema `json:"global-state-schema,omitempty"`
	LocalStateSchema  *StateSchema `json:"local-state-schema,omitempty"`
	ExtraProgramPages uint64       `json:"extra-program-pages,omitempty"`
}

// StateSchema bounds the application state.
type StateSchema struct {
	NumUint      uint64 `json:"num-uint"`
	NumByteSlice uint64 `json:"num-byte-slice"`
}

// AssetConfigFields carries the acfg-type payload. AssetID zero means
// creation; Params nil means destruction.
type AssetConfigFields struct {
	AssetID uint64             `json:"asset-id"`
	Params  *AssetConfigParams `json:"params,omitempty"`
}

// AssetConfigParams is the on-chain asset parameter block of an acfg
// transaction.
type AssetConfigParams struct {
	Total         uint64 `json:"total"`
	Decimals      uint32 `json:"decimals"`
	DefaultFrozen bool   `json:"default-frozen,omitempty"`
	UnitName      string `json:"unit-name,omitempty"`
	Name          string `json:"name,omitempty"`
	URL           string `json:"url,omitempty"`
	MetadataHash  []byte `json:"metadata-hash,omitempty"`
	Manager       string `json:"manager,omitempty"`
	Reserve       string `json:"reserve,omitempty"`
	Freeze        string `json:"freeze,omitempty"`
	Clawback      string `json:"clawback,omitempty"`
}

// AssetFreezeFields carries the afrz-type payload.
type AssetFreezeFields struct {
	Address         string `json:"address"`
	AssetID         uint64 `json:"asset-id"`
	NewFreezeStatus bool   `json:"new-freeze-status"`
}

// KeyRegFields carries the keyreg-type payload.
type KeyRegFields struct {
	VoteParticipationKey      []byte `json:"vote-participation-key,omitempty"`
	SelectionParticipationKey []byte `json:"selection-participation-key,omitempty"`
	StateProofKey             []byte `json:"state-proof-key,omitempty"`
	VoteFirstValid            uint64 `json:"vote-first-valid,omitempty"`
	VoteLastValid             uint64 `json:"vote-last-valid,omitempty"`
	VoteKeyDilution           uint64 `json:"vote-key-dilution,omitempty"`
	NonParticipation          bool   `json:"non-participation,omitempty"`
}

// StateProofFields is kept opaque. State proof transactions never appear as
// inner transactions, so their canonical form is never reconstructed here.
type StateProofFields struct {
	StateProofType uint64 `json:"state-proof-type,omitempty"`
}
