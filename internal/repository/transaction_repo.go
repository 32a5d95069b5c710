package repository

import (
	"context"
	"fmt"
	"time"

	"go-inventory-ledger/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository interface {
	StockOf(ctx context.Context, sku string, excludeID uint) (int64, error)
	CountBySKU(ctx context.Context, sku string) (int64, error)
	Create(ctx context.Context, tx *model.Transaction) error
	Update(ctx context.Context, id uint, sku string, qty int64, amount decimal.Decimal) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Transaction, error)
	LockByID(ctx context.Context, id uint) (*model.Transaction, error)
	FindViewByID(ctx context.Context, id uint) (*model.TransactionView, error)
	ListBySKU(ctx context.Context, sku string) ([]model.Transaction, error)
	List(ctx context.Context, q model.PageQuery) ([]model.TransactionView, error)
	Count(ctx context.Context, search string) (int64, error)
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]model.StockMovementData, error)
	GetDashboardStats(ctx context.Context, lowStockLimit int64) (*model.DashboardStats, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

// StockOf returns SUM(qty) for the SKU, 0 when it has no rows. A non-zero excludeID leaves that
// row out, which is how an edit replaces a row's contribution instead of adding to it.
func (r *transactionRepo) StockOf(ctx context.Context, sku string, excludeID uint) (int64, error) {
	var stock int64
	q := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select("CAST(COALESCE(SUM(qty), 0) AS BIGINT)").
		Where("sku = ?", sku)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Scan(&stock).Error; err != nil {
		return 0, fmt.Errorf("failed to sum stock: %w", err)
	}
	return stock, nil
}

func (r *transactionRepo) CountBySKU(ctx context.Context, sku string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("sku = ?", sku).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

func (r *transactionRepo) Create(ctx context.Context, tx *model.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// Update rewrites sku/qty/amount in place. created_at is left alone so ordering is preserved.
func (r *transactionRepo) Update(ctx context.Context, id uint, sku string, qty int64, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"sku":    sku,
			"qty":    qty,
			"amount": amount,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *transactionRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Transaction{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *transactionRepo) FindByID(ctx context.Context, id uint) (*model.Transaction, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

// LockByID reads the row with SELECT ... FOR UPDATE. Only meaningful inside a transaction.
func (r *transactionRepo) LockByID(ctx context.Context, id uint) (*model.Transaction, error) {
	return r.findByID(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *transactionRepo) findByID(db *gorm.DB, id uint) (*model.Transaction, error) {
	var tx model.Transaction
	if err := db.Where("id = ?", id).Take(&tx).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepo) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("transactions AS t").
		Joins("JOIN products p ON p.sku = t.sku")
}

// FindViewByID needs the product row: an entry whose product is gone is reported as not found.
func (r *transactionRepo) FindViewByID(ctx context.Context, id uint) (*model.TransactionView, error) {
	var rows []model.TransactionView
	err := r.joined(ctx).
		Select("t.id, t.sku, t.qty, t.amount, t.created_at, p.title").
		Where("t.id = ?", id).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// ListBySKU returns every entry for the SKU, oldest first, without joining the product.
func (r *transactionRepo) ListBySKU(ctx context.Context, sku string) ([]model.Transaction, error) {
	txs := []model.Transaction{}
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).Order("created_at ASC").Order("id ASC").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// List returns one page of entries, newest first, each with its product title.
func (r *transactionRepo) List(ctx context.Context, q model.PageQuery) ([]model.TransactionView, error) {
	rows := []model.TransactionView{}
	err := searchTransactions(r.joined(ctx), q.Search).
		Select("t.id, t.sku, t.qty, t.amount, t.created_at, p.title").
		Order("t.created_at DESC").
		Order("t.id DESC").
		Limit(q.Limit).
		Offset(q.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return rows, nil
}

func (r *transactionRepo) Count(ctx context.Context, search string) (int64, error) {
	var total int64
	if err := searchTransactions(r.joined(ctx), search).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return total, nil
}

func searchTransactions(db *gorm.DB, search string) *gorm.DB {
	if search == "" {
		return db
	}
	pattern := containsPattern(search)
	return db.Where(`LOWER(t.sku) LIKE ? ESCAPE '\' OR LOWER(p.title) LIKE ? ESCAPE '\'`, pattern, pattern)
}

// GetStockMovement aggregates inbound (qty > 0) and outbound (qty < 0, reported positive)
// quantity per day.
func (r *transactionRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]model.StockMovementData, error) {
	results := []model.StockMovementData{}

	rows, err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select(`
			CAST(DATE(created_at) AS TEXT) as date,
			CAST(COALESCE(SUM(CASE WHEN qty > 0 THEN qty ELSE 0 END), 0) AS BIGINT) as inbound,
			CAST(COALESCE(SUM(CASE WHEN qty < 0 THEN -qty ELSE 0 END), 0) AS BIGINT) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to query stock movement: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var data model.StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		results = append(results, data)
	}

	return results, rows.Err()
}

func (r *transactionRepo) GetDashboardStats(ctx context.Context, lowStockLimit int64) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	perProduct := db.Table("products AS p").
		Select("p.id, p.price, COALESCE(SUM(t.qty), 0) AS stock").
		Joins("LEFT JOIN transactions t ON t.sku = p.sku").
		Group("p.id, p.price")

	if err := db.Table("(?) AS s", perProduct).Where("s.stock < ?", lowStockLimit).Count(&stats.LowStockCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count low stock products: %w", err)
	}

	var valuation decimal.NullDecimal
	row := db.Table("(?) AS s", perProduct).Select("SUM(s.stock * s.price)").Row()
	if err := row.Scan(&valuation); err != nil {
		return nil, fmt.Errorf("failed to compute valuation: %w", err)
	}
	stats.TotalValuation = decimal.Zero
	if valuation.Valid {
		stats.TotalValuation = valuation.Decimal
	}

	return &stats, nil
}
