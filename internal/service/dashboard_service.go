package service

import (
	"context"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]model.StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*model.DashboardStats, error)
}

type dashboardService struct {
	txRepo        repository.TransactionRepository
	lowStockLimit int64
}

// NewDashboardService counts a product as low stock when its derived stock is below lowStockLimit.
func NewDashboardService(txRepo repository.TransactionRepository, lowStockLimit int64) DashboardService {
	return &dashboardService{txRepo: txRepo, lowStockLimit: lowStockLimit}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]model.StockMovementData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.txRepo.GetStockMovement(ctx, startDate, endDate)
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	return s.txRepo.GetDashboardStats(ctx, s.lowStockLimit)
}
