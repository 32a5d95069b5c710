package model

import "github.com/shopspring/decimal"

// StockMovementData is one day of inbound/outbound quantity for charts.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int64  `json:"inbound"`
	Outbound int64  `json:"outbound"`
}

// DashboardStats is the catalog overview.
type DashboardStats struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation" swaggertype:"number"`
}

