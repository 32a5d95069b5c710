package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/validator"

	"github.com/shopspring/decimal"
)

// LedgerService owns the stock adjustment ledger. Stock is never stored: it is SUM(qty) over a
// SKU's entries, and no committed write may leave that sum below zero.
type LedgerService interface {
	CreateAdjustment(ctx context.Context, req *model.AdjustmentRequest) (*model.Transaction, error)
	EditAdjustment(ctx context.Context, id uint, req *model.AdjustmentRequest) (*model.Transaction, error)
	DeleteAdjustment(ctx context.Context, id uint) error
	GetAdjustment(ctx context.Context, id uint) (*model.TransactionView, error)
	ListAdjustments(ctx context.Context, q model.PageQuery) (*model.Page[model.TransactionView], error)
	AdjustmentsBySKU(ctx context.Context, sku string) ([]model.Transaction, error)
	StockOf(ctx context.Context, sku string) (int64, error)
}

type ledgerService struct {
	txManager    repository.TxManager
	transactions repository.TransactionRepository
	publisher    Publisher
}

func NewLedgerService(tm repository.TxManager, tRepo repository.TransactionRepository, pub Publisher) LedgerService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &ledgerService{
		txManager:    tm,
		transactions: tRepo,
		publisher:    pub,
	}
}

func validateAdjustment(req *model.AdjustmentRequest) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, validator.Message(errs))
	}
	return nil
}

// lockProducts takes FOR UPDATE locks on the product rows of skus in sorted order, so
// that concurrent writers touching the same SKUs queue up instead of deadlocking.
// Missing products are left out of the result.
func lockProducts(ctx context.Context, r repository.Repos, skus ...string) (map[string]*model.Product, error) {
	sorted := make([]string, 0, len(skus))
	seen := make(map[string]bool, len(skus))
	for _, sku := range skus {
		if !seen[sku] {
			seen[sku] = true
			sorted = append(sorted, sku)
		}
	}
	sort.Strings(sorted)

	locked := make(map[string]*model.Product, len(sorted))
	for _, sku := range sorted {
		product, err := r.Products().LockBySKU(ctx, sku)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		locked[sku] = product
	}
	return locked, nil
}

func amountOf(price decimal.Decimal, qty int64) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(qty))
}

func (s *ledgerService) CreateAdjustment(ctx context.Context, req *model.AdjustmentRequest) (*model.Transaction, error) {
	if err := validateAdjustment(req); err != nil {
		return nil, err
	}
	qty := *req.Qty

	var (
		created  *model.Transaction
		newStock int64
	)
	err := s.txManager.WithinTx(ctx, func(r repository.Repos) error {
		locked, err := lockProducts(ctx, r, req.SKU)
		if err != nil {
			return err
		}

		// Stock is checked before existence: an unknown SKU has stock 0, so a stock-out
		// against it reports insufficient stock and a stock-in reports not found.
		stock, err := r.Transactions().StockOf(ctx, req.SKU, 0)
		if err != nil {
			return err
		}
		if stock+qty < 0 {
			return ErrInsufficientStock
		}

		product, ok := locked[req.SKU]
		if !ok {
			return ErrProductNotFound
		}

		tx := &model.Transaction{
			SKU:    req.SKU,
			Qty:    qty,
			Amount: amountOf(product.Price, qty),
		}
		if err := r.Transactions().Create(ctx, tx); err != nil {
			return err
		}

		created = tx
		newStock = stock + qty
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishJSON(s.publisher, map[string]interface{}{
		"type":   "stock_update",
		"action": "transaction_created",
		"transaction": map[string]interface{}{
			"id":  created.ID,
			"sku": created.SKU,
			"qty": created.Qty,
		},
		"stock": map[string]interface{}{created.SKU: newStock},
	})

	return created, nil
}

// EditAdjustment replaces an entry's sku/qty and recomputes amount from the current price.
// The entry's own contribution is excluded from the stock check. When the SKU changes, the
// source SKU must also stay non-negative once the entry leaves it.
func (s *ledgerService) EditAdjustment(ctx context.Context, id uint, req *model.AdjustmentRequest) (*model.Transaction, error) {
	if err := validateAdjustment(req); err != nil {
		return nil, err
	}
	qty := *req.Qty

	var (
		updated *model.Transaction
		stocks  = map[string]int64{}
	)
	err := s.txManager.WithinTx(ctx, func(r repository.Repos) error {
		existing, err := r.Transactions().LockByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTransactionNotFound
		}
		if err != nil {
			return err
		}

		locked, err := lockProducts(ctx, r, existing.SKU, req.SKU)
		if err != nil {
			return err
		}
		product, ok := locked[req.SKU]
		if !ok {
			return ErrProductNotFound
		}

		stock, err := r.Transactions().StockOf(ctx, req.SKU, id)
		if err != nil {
			return err
		}
		if stock+qty < 0 {
			return ErrInsufficientStock
		}
		stocks[req.SKU] = stock + qty

		if existing.SKU != req.SKU {
			remaining, err := r.Transactions().StockOf(ctx, existing.SKU, id)
			if err != nil {
				return err
			}
			if remaining < 0 {
				return ErrInsufficientStock
			}
			stocks[existing.SKU] = remaining
		}

		amount := amountOf(product.Price, qty)
		if err := r.Transactions().Update(ctx, id, req.SKU, qty, amount); err != nil {
			return err
		}

		existing.SKU = req.SKU
		existing.Qty = qty
		existing.Amount = amount
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishJSON(s.publisher, map[string]interface{}{
		"type":   "stock_update",
		"action": "transaction_updated",
		"transaction": map[string]interface{}{
			"id":  updated.ID,
			"sku": updated.SKU,
			"qty": updated.Qty,
		},
		"stock": stocks,
	})

	return updated, nil
}

// DeleteAdjustment removes an entry. Removing a stock-in that later stock-outs depend on would
// drive the SKU negative, so that case is rejected like any other admission failure.
func (s *ledgerService) DeleteAdjustment(ctx context.Context, id uint) error {
	var (
		sku       string
		remaining int64
	)
	err := s.txManager.WithinTx(ctx, func(r repository.Repos) error {
		existing, err := r.Transactions().LockByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTransactionNotFound
		}
		if err != nil {
			return err
		}

		if _, err := lockProducts(ctx, r, existing.SKU); err != nil {
			return err
		}

		remaining, err = r.Transactions().StockOf(ctx, existing.SKU, id)
		if err != nil {
			return err
		}
		if remaining < 0 {
			return ErrInsufficientStock
		}

		sku = existing.SKU
		return r.Transactions().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	publishJSON(s.publisher, map[string]interface{}{
		"type":   "stock_update",
		"action": "transaction_deleted",
		"transaction": map[string]interface{}{
			"id":  id,
			"sku": sku,
		},
		"stock": map[string]interface{}{sku: remaining},
	})

	return nil
}

func (s *ledgerService) GetAdjustment(ctx context.Context, id uint) (*model.TransactionView, error) {
	tx, err := s.transactions.FindViewByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	return tx, err
}

func (s *ledgerService) ListAdjustments(ctx context.Context, q model.PageQuery) (*model.Page[model.TransactionView], error) {
	q = q.Normalize(model.DefaultTransactionLimit)

	rows, err := s.transactions.List(ctx, q)
	if err != nil {
		return nil, err
	}
	total, err := s.transactions.Count(ctx, q.Search)
	if err != nil {
		return nil, err
	}

	return &model.Page[model.TransactionView]{
		Data:       rows,
		TotalPages: model.TotalPages(total, q.Limit),
	}, nil
}

func (s *ledgerService) AdjustmentsBySKU(ctx context.Context, sku string) ([]model.Transaction, error) {
	return s.transactions.ListBySKU(ctx, sku)
}

func (s *ledgerService) StockOf(ctx context.Context, sku string) (int64, error) {
	return s.transactions.StockOf(ctx, sku, 0)
}
