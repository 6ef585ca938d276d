package resolver

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/algoscan/scand/internal/core/domain"
	"github.com/algoscan/scand/internal/gateway"
	"github.com/algoscan/scand/internal/txid"
)

type fakeAlgod struct{}

func (fakeAlgod) LastRound(context.Context) (uint64, error) { return 0, errors.New("unused") }
func (fakeAlgod) BlockHeader(context.Context, uint64) (*domain.BlockHeader, error) {
	return nil, errors.New("unused")
}

type fakeIndexer struct {
	txns   map[string]*domain.Transaction
	blocks map[uint64]blockResponse
}

type blockResponse struct {
	hdr  *domain.BlockHeader
	txns []domain.Transaction
}

func (f *fakeIndexer) TransactionByID(_ context.Context, txID string) (*domain.Transaction, error) {
	if tx, ok := f.txns[txID]; ok {
		return tx, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeIndexer) Block(_ context.Context, round uint64) (*domain.BlockHeader, []domain.Transaction, error) {
	b, ok := f.blocks[round]
	if !ok {
		return nil, nil, errors.New("not found")
	}
	return b.hdr, b.txns, nil
}

type fakeTrades struct {
	calls int
}

func (f *fakeTrades) TradesByTxID(context.Context, string, int) ([]domain.Trade, error) {
	f.calls++
	return nil, nil
}

func newResolver(idx *fakeIndexer, trades *fakeTrades) *Resolver {
	if trades == nil {
		trades = &fakeTrades{}
	}
	return New(gateway.New(fakeAlgod{}, idx, trades, nil), nil)
}

var testGenesisHash = []byte("0123456789abcdef0123456789abcdef")

func testHeader(round uint64) *domain.BlockHeader {
	return &domain.BlockHeader{
		Round:       round,
		GenesisID:   "mainnet-v1.0",
		GenesisHash: testGenesisHash,
	}
}

// canonicalID computes the expected ID for an inner transaction after
// inheritance from its parent and the block header.
func canonicalID(t *testing.T, tx domain.Transaction, parent *domain.Transaction, hdr *domain.BlockHeader) string {
	t.Helper()
	Reconstruct(&tx, parent, hdr)
	id, err := txid.Compute(&tx)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return id
}

func TestResolveIndexerHitReturnsUnchanged(t *testing.T) {
	want := &domain.Transaction{
		ID:     "TOP1",
		TxType: domain.TxTypePay,
		Sender: "GD64YIY3TWGDMCNPP553DZPPR6LDUSFQOIJVFDPPXWEG3FVOJCCDBBHU5A",
	}
	idx := &fakeIndexer{txns: map[string]*domain.Transaction{"TOP1": want}}
	r := newResolver(idx, nil)

	got := r.Resolve(context.Background(), "TOP1", nil)
	if got == nil {
		t.Fatal("Resolve returned nil for an indexer-resident transaction")
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("indexer hit was modified: got %+v", got)
	}
}

func TestResolveFindsNestedInnerTransaction(t *testing.T) {
	sender := "GD64YIY3TWGDMCNPP553DZPPR6LDUSFQOIJVFDPPXWEG3FVOJCCDBBHU5A"
	hdr := testHeader(100)

	// Three levels: appl -> appl -> pay. The leaf's ID must be recomputed
	// with the inherited genesis parameters and group.
	leaf := domain.Transaction{
		TxType:     domain.TxTypePay,
		Sender:     sender,
		Fee:        1000,
		FirstValid: 90,
		LastValid:  190,
		Payment:    &domain.PaymentFields{Receiver: sender, Amount: 5},
	}
	mid := domain.Transaction{
		TxType:     domain.TxTypeAppCall,
		Sender:     sender,
		Fee:        1000,
		FirstValid: 90,
		LastValid:  190,
		AppCall:    &domain.AppCallFields{ApplicationID: 77, OnCompletion: "noop"},
		InnerTxns:  []domain.Transaction{leaf},
	}
	top := domain.Transaction{
		ID:          "TOPTX",
		TxType:      domain.TxTypeAppCall,
		Sender:      sender,
		Fee:         1000,
		FirstValid:  90,
		LastValid:   190,
		GenesisID:   hdr.GenesisID,
		GenesisHash: hdr.GenesisHash,
		Group:       []byte("group-id-32-bytes-aaaaaaaaaaaaaa"),
		AppCall:     &domain.AppCallFields{ApplicationID: 42, OnCompletion: "noop"},
		InnerTxns:   []domain.Transaction{mid},
	}

	wantID := canonicalID(t, leaf, &top, hdr)

	idx := &fakeIndexer{
		txns:   map[string]*domain.Transaction{},
		blocks: map[uint64]blockResponse{100: {hdr: hdr, txns: []domain.Transaction{top}}},
	}
	r := newResolver(idx, nil)

	round := uint64(100)
	got := r.Resolve(context.Background(), wantID, &round)
	if got == nil {
		t.Fatal("Resolve failed to find the nested inner transaction")
	}
	if got.ID != wantID {
		t.Fatalf("resolved ID = %s, want %s", got.ID, wantID)
	}
	if got.TxType != domain.TxTypePay {
		t.Fatalf("resolved wrong transaction type: %s", got.TxType)
	}
	if string(got.GenesisHash) != string(hdr.GenesisHash) {
		t.Fatal("inner transaction did not inherit the genesis hash")
	}
	if string(got.Group) != string(top.Group) {
		t.Fatal("inner transaction did not inherit the group")
	}
}

func TestResolveWithoutRoundSkipsBlockSearch(t *testing.T) {
	trades := &fakeTrades{}
	idx := &fakeIndexer{txns: map[string]*domain.Transaction{}}
	r := newResolver(idx, trades)

	if got := r.Resolve(context.Background(), "MISSING", nil); got != nil {
		t.Fatalf("Resolve = %+v, want nil", got)
	}
	if trades.calls != 1 {
		t.Fatalf("trade fallback called %d times, want 1", trades.calls)
	}
}

func TestResolveFallsThroughAllSources(t *testing.T) {
	trades := &fakeTrades{}
	idx := &fakeIndexer{
		txns:   map[string]*domain.Transaction{},
		blocks: map[uint64]blockResponse{},
	}
	r := newResolver(idx, trades)

	round := uint64(55)
	if got := r.Resolve(context.Background(), "MISSING", &round); got != nil {
		t.Fatalf("Resolve = %+v, want nil", got)
	}
	if trades.calls != 1 {
		t.Fatalf("trade fallback called %d times, want 1", trades.calls)
	}
}

func TestReconstructNeverOverwrites(t *testing.T) {
	hdr := testHeader(1)
	parent := &domain.Transaction{
		GenesisID:   "other-net",
		GenesisHash: []byte("parent-hash-32-bytes-aaaaaaaaaaa"),
		Group:       []byte("parent-group"),
	}
	tx := domain.Transaction{
		GenesisID:   "already-set",
		GenesisHash: []byte("own-hash"),
		Group:       []byte("own-group"),
	}

	Reconstruct(&tx, parent, hdr)

	if tx.GenesisID != "already-set" || string(tx.GenesisHash) != "own-hash" || string(tx.Group) != "own-group" {
		t.Fatalf("Reconstruct overwrote present fields: %+v", tx)
	}
}

func TestReconstructIsIdempotent(t *testing.T) {
	hdr := testHeader(1)
	parent := &domain.Transaction{Group: []byte("grp")}

	tx := domain.Transaction{TxType: domain.TxTypePay}
	Reconstruct(&tx, parent, hdr)
	once := tx
	Reconstruct(&tx, parent, hdr)

	if !reflect.DeepEqual(once, tx) {
		t.Fatalf("second Reconstruct changed the transaction: %+v vs %+v", once, tx)
	}
	if string(tx.GenesisHash) != string(hdr.GenesisHash) || tx.GenesisID != hdr.GenesisID {
		t.Fatal("genesis parameters not inherited from the header")
	}
	if string(tx.Group) != "grp" {
		t.Fatal("group not inherited from the parent")
	}
}

func TestReconstructHeaderWinsOverParent(t *testing.T) {
	hdr := testHeader(1)
	parent := &domain.Transaction{
		GenesisID:   "parent-net",
		GenesisHash: []byte("parent-hash"),
	}

	tx := domain.Transaction{}
	Reconstruct(&tx, parent, hdr)

	if tx.GenesisID != hdr.GenesisID {
		t.Fatalf("GenesisID = %s, want header value %s", tx.GenesisID, hdr.GenesisID)
	}
	if string(tx.GenesisHash) != string(hdr.GenesisHash) {
		t.Fatal("GenesisHash should come from the header when both are available")
	}
}
