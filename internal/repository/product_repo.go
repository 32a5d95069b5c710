package repository

import (
	"context"
	"fmt"

	"go-inventory-ledger/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Upsert(ctx context.Context, product *model.Product) error
	InsertIfAbsent(ctx context.Context, product *model.Product) (bool, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	LockBySKU(ctx context.Context, sku string) (*model.Product, error)
	FindWithStock(ctx context.Context, sku string) (*model.ProductStock, error)
	ListWithStock(ctx context.Context, q model.PageQuery) ([]model.ProductStock, error)
	Count(ctx context.Context, search string) (int64, error)
	Delete(ctx context.Context, sku string) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

var skuConflict = []clause.Column{{Name: "sku"}}

// Upsert inserts the product or, when the SKU exists, overwrites title/image/price/description.
func (r *productRepo) Upsert(ctx context.Context, product *model.Product) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   skuConflict,
		DoUpdates: clause.AssignmentColumns([]string{"title", "image", "price", "description", "updated_at"}),
	}).Create(product).Error
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

// InsertIfAbsent inserts the product unless the SKU exists. It reports whether a row was written.
func (r *productRepo) InsertIfAbsent(ctx context.Context, product *model.Product) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   skuConflict,
		DoNothing: true,
	}).Create(product)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert product: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	return r.findBySKU(r.db.WithContext(ctx), sku)
}

// LockBySKU reads the product with SELECT ... FOR UPDATE. Only meaningful inside a transaction.
func (r *productRepo) LockBySKU(ctx context.Context, sku string) (*model.Product, error) {
	return r.findBySKU(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), sku)
}

func (r *productRepo) findBySKU(db *gorm.DB, sku string) (*model.Product, error) {
	var product model.Product
	if err := db.Where("sku = ?", sku).Take(&product).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (r *productRepo) withStock(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("products AS p").
		Select("p.*, CAST(COALESCE(SUM(t.qty), 0) AS BIGINT) AS stock").
		Joins("LEFT JOIN transactions t ON t.sku = p.sku").
		Group("p.id")
}

func (r *productRepo) FindWithStock(ctx context.Context, sku string) (*model.ProductStock, error) {
	var rows []model.ProductStock
	if err := r.withStock(ctx).Where("p.sku = ?", sku).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// ListWithStock returns one page of products, newest first, each with its derived stock.
func (r *productRepo) ListWithStock(ctx context.Context, q model.PageQuery) ([]model.ProductStock, error) {
	rows := []model.ProductStock{}
	err := searchProducts(r.withStock(ctx), q.Search).
		Order("p.created_at DESC").
		Order("p.sku ASC").
		Limit(q.Limit).
		Offset(q.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return rows, nil
}

func (r *productRepo) Count(ctx context.Context, search string) (int64, error) {
	var total int64
	err := searchProducts(r.db.WithContext(ctx).Table("products AS p"), search).Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

func (r *productRepo) Delete(ctx context.Context, sku string) error {
	res := r.db.WithContext(ctx).Where("sku = ?", sku).Delete(&model.Product{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func searchProducts(db *gorm.DB, search string) *gorm.DB {
	if search == "" {
		return db
	}
	pattern := containsPattern(search)
	return db.Where(`LOWER(p.sku) LIKE ? ESCAPE '\' OR LOWER(p.title) LIKE ? ESCAPE '\'`, pattern, pattern)
}
