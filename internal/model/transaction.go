package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one signed stock adjustment for a SKU. Derived stock is SUM(qty) per SKU.
type Transaction struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	SKU       string          `gorm:"type:varchar(50);not null;index" json:"sku"`
	Qty       int64           `gorm:"not null" json:"qty"`
	Amount    decimal.Decimal `gorm:"type:numeric(24,2);not null" json:"amount" swaggertype:"number"` // Snapshot price * qty
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
}

// TransactionView is a ledger row with the product title joined in.
type TransactionView struct {
	Transaction
	Title string `json:"title"`
}

// AdjustmentRequest is the body of POST /api/transactions and PUT /api/transactions/:id.
// Qty is a pointer so that an explicit 0 passes the required check. Its bound keeps SUM(qty)
// and price * qty far from int64 and numeric(24,2) overflow.
type AdjustmentRequest struct {
	SKU string `json:"sku" validate:"required,sku"`
	Qty *int64 `json:"qty" validate:"required,min=-1000000000,max=1000000000"`
}

// MaxAdjustmentQty mirrors the min/max tags on AdjustmentRequest.Qty.
const MaxAdjustmentQty int64 = 1_000_000_000
