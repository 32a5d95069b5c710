package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repos are the repositories bound to one database transaction.
type Repos interface {
	Products() ProductRepository
	Transactions() TransactionRepository
}

// TxManager hides begin/commit/rollback from the services.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}

type txRepos struct {
	products     ProductRepository
	transactions TransactionRepository
}

func (r *txRepos) Products() ProductRepository         { return r.products }
func (r *txRepos) Transactions() TransactionRepository { return r.transactions }

type gormTxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise.
func (tm *gormTxManager) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepos{
			products:     NewProductRepo(tx),
			transactions: NewTransactionRepo(tx),
		})
	})
}
