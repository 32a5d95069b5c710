package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/testutil"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []map[string]interface{}
}

func (p *recordingPublisher) Publish(msg []byte) {
	var event map[string]interface{}
	if err := json.Unmarshal(msg, &event); err != nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e["action"].(string))
	}
	return out
}

type stubFeed struct {
	items []model.UpsertProductRequest
	err   error
}

func (f *stubFeed) Fetch(context.Context) ([]model.UpsertProductRequest, error) {
	return f.items, f.err
}

type fixture struct {
	ctx      context.Context
	db       *gorm.DB
	products repository.ProductRepository
	txs      repository.TransactionRepository
	ledger   LedgerService
	catalog  CatalogService
	pub      *recordingPublisher
	feed     *stubFeed
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	products := repository.NewProductRepo(db)
	txs := repository.NewTransactionRepo(db)
	tm := repository.NewTxManager(db)
	pub := &recordingPublisher{}
	feed := &stubFeed{}

	return &fixture{
		ctx:      context.Background(),
		db:       db,
		products: products,
		txs:      txs,
		ledger:   NewLedgerService(tm, txs, pub),
		catalog:  NewCatalogService(tm, products, feed, pub, zerolog.Nop()),
		pub:      pub,
		feed:     feed,
	}
}

func ptr[T any](v T) *T { return &v }

func productReq(sku, title, price string) *model.UpsertProductRequest {
	return &model.UpsertProductRequest{
		SKU:   sku,
		Title: title,
		Image: "https://img.example/" + sku + ".png",
		Price: ptr(decimal.RequireFromString(price)),
	}
}

func (f *fixture) product(t *testing.T, sku, price string) {
	t.Helper()
	_, err := f.catalog.UpsertProduct(f.ctx, productReq(sku, "Product "+sku, price))
	require.NoError(t, err)
}

func (f *fixture) adjust(t *testing.T, sku string, qty int64) *model.Transaction {
	t.Helper()
	tx, err := f.ledger.CreateAdjustment(f.ctx, &model.AdjustmentRequest{SKU: sku, Qty: ptr(qty)})
	require.NoError(t, err)
	return tx
}

func (f *fixture) stock(t *testing.T, sku string) int64 {
	t.Helper()
	stock, err := f.ledger.StockOf(f.ctx, sku)
	require.NoError(t, err)
	return stock
}

func (f *fixture) rowCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Transaction{}).Count(&n).Error)
	return n
}
