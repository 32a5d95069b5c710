package model

import "github.com/shopspring/decimal"

func init() {
	// Prices and amounts go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// PriceLimit is the exclusive upper bound of numeric(12,2).
var PriceLimit = decimal.New(1, 10)

type Product struct {
	BaseModel
	SKU         string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku"`
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	Image       string          `gorm:"type:text;not null" json:"image"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price" swaggertype:"number"`
	Description *string         `gorm:"type:text" json:"description"`
}

// ProductStock is a product row joined with its derived stock (SUM of ledger qty).
type ProductStock struct {
	Product
	Stock int64 `json:"stock"`
}

// UpsertProductRequest is the body of POST /api/products and the shape feed items are mapped to.
type UpsertProductRequest struct {
	SKU         string           `json:"sku" validate:"required,sku"`
	Title       string           `json:"title" validate:"required,max=255"`
	Image       string           `json:"image" validate:"required"`
	Price       *decimal.Decimal `json:"price" validate:"required" swaggertype:"number"`
	Description *string          `json:"description"`
}

// ToProduct builds the row to write. Callers must validate first so Price is non-nil.
func (r *UpsertProductRequest) ToProduct() *Product {
	return &Product{
		SKU:         r.SKU,
		Title:       r.Title,
		Image:       r.Image,
		Price:       *r.Price,
		Description: r.Description,
	}
}

// ImportResult summarizes one bulk import run.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}
