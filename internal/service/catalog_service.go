package service

import (
	"context"
	"errors"
	"fmt"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/validator"

	"github.com/rs/zerolog"
)

// ProductFeed is the external catalog the bulk import seeds from.
type ProductFeed interface {
	Fetch(ctx context.Context) ([]model.UpsertProductRequest, error)
}

// CatalogService manages product records.
//
// UpsertProduct overwrites an existing SKU. ImportProducts skips existing SKUs, so a re-import
// leaves manual edits alone.
type CatalogService interface {
	UpsertProduct(ctx context.Context, req *model.UpsertProductRequest) (*model.ProductStock, error)
	GetProduct(ctx context.Context, sku string) (*model.ProductStock, error)
	ListProducts(ctx context.Context, q model.PageQuery) (*model.Page[model.ProductStock], error)
	DeleteProduct(ctx context.Context, sku string) error
	ImportProducts(ctx context.Context) (*model.ImportResult, error)
}

type catalogService struct {
	txManager repository.TxManager
	products  repository.ProductRepository
	feed      ProductFeed
	publisher Publisher
	log       zerolog.Logger
}

func NewCatalogService(tm repository.TxManager, pRepo repository.ProductRepository, feed ProductFeed, pub Publisher, log zerolog.Logger) CatalogService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &catalogService{
		txManager: tm,
		products:  pRepo,
		feed:      feed,
		publisher: pub,
		log:       log,
	}
}

func validateProduct(req *model.UpsertProductRequest) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, validator.Message(errs))
	}
	if req.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if req.Price.GreaterThanOrEqual(model.PriceLimit) {
		return fmt.Errorf("%w: price must be below %s", ErrValidation, model.PriceLimit)
	}
	return nil
}

func (s *catalogService) UpsertProduct(ctx context.Context, req *model.UpsertProductRequest) (*model.ProductStock, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	var result *model.ProductStock
	err := s.txManager.WithinTx(ctx, func(r repository.Repos) error {
		if err := r.Products().Upsert(ctx, req.ToProduct()); err != nil {
			return err
		}
		stored, err := r.Products().FindWithStock(ctx, req.SKU)
		if err != nil {
			return err
		}
		result = stored
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishJSON(s.publisher, map[string]interface{}{
		"type":    "stock_update",
		"action":  "product_upserted",
		"product": map[string]interface{}{"sku": result.SKU, "title": result.Title, "price": result.Price, "stock": result.Stock},
	})

	return result, nil
}

func (s *catalogService) GetProduct(ctx context.Context, sku string) (*model.ProductStock, error) {
	product, err := s.products.FindWithStock(ctx, sku)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return product, err
}

func (s *catalogService) ListProducts(ctx context.Context, q model.PageQuery) (*model.Page[model.ProductStock], error) {
	q = q.Normalize(model.DefaultProductLimit)

	rows, err := s.products.ListWithStock(ctx, q)
	if err != nil {
		return nil, err
	}
	total, err := s.products.Count(ctx, q.Search)
	if err != nil {
		return nil, err
	}

	return &model.Page[model.ProductStock]{
		Data:       rows,
		TotalPages: model.TotalPages(total, q.Limit),
	}, nil
}

// DeleteProduct refuses to remove a product that still has ledger entries. The product row is
// locked while entries are counted, so no adjustment can slip in before the delete.
func (s *catalogService) DeleteProduct(ctx context.Context, sku string) error {
	err := s.txManager.WithinTx(ctx, func(r repository.Repos) error {
		if _, err := r.Products().LockBySKU(ctx, sku); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		n, err := r.Transactions().CountBySKU(ctx, sku)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrProductInUse
		}

		return r.Products().Delete(ctx, sku)
	})
	if err != nil {
		return err
	}

	publishJSON(s.publisher, map[string]interface{}{
		"type":    "stock_update",
		"action":  "product_deleted",
		"product": map[string]interface{}{"sku": sku},
	})
	return nil
}

// ImportProducts seeds the catalog from the feed. Existing SKUs are skipped, not overwritten.
// One bad item is logged and counted as failed; it never aborts the rest of the run.
func (s *catalogService) ImportProducts(ctx context.Context) (*model.ImportResult, error) {
	items, err := s.feed.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	result := &model.ImportResult{}
	for i := range items {
		item := &items[i]

		if err := validateProduct(item); err != nil {
			s.log.Warn().Err(err).Str("sku", item.SKU).Msg("skipping invalid feed item")
			result.Failed++
			continue
		}

		inserted, err := s.products.InsertIfAbsent(ctx, item.ToProduct())
		if err != nil {
			s.log.Error().Err(err).Str("sku", item.SKU).Msg("failed to import feed item")
			result.Failed++
			continue
		}
		if inserted {
			result.Imported++
		} else {
			result.Skipped++
		}
	}

	s.log.Info().
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("product import finished")

	if result.Imported > 0 {
		publishJSON(s.publisher, map[string]interface{}{
			"type":   "stock_update",
			"action": "products_imported",
			"result": result,
		})
	}

	return result, nil
}
