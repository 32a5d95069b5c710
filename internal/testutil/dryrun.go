package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLRecorder is a gorm logger that keeps every statement gorm builds, with vars inlined.
type SQLRecorder struct {
	mu    sync.Mutex
	stmts []string
}

func (r *SQLRecorder) LogMode(logger.LogLevel) logger.Interface { return r }

func (r *SQLRecorder) Info(context.Context, string, ...interface{})  {}
func (r *SQLRecorder) Warn(context.Context, string, ...interface{})  {}
func (r *SQLRecorder) Error(context.Context, string, ...interface{}) {}

func (r *SQLRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stmts = append(r.stmts, sql)
}

// Statements returns the recorded SQL in execution order.
func (r *SQLRecorder) Statements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.stmts...)
}

// NewDryRunPostgres returns a gorm DB using the postgres dialect in dry-run mode. Statements
// are built and recorded but never sent, so no server is needed.
func NewDryRunPostgres(t testing.TB) (*gorm.DB, *SQLRecorder) {
	t.Helper()

	rec := &SQLRecorder{}
	dialector := postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 port=5432 user=ledger dbname=ledger sslmode=disable",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               rec,
	})
	if err != nil {
		t.Fatalf("failed to open dry-run postgres: %v", err)
	}
	return db, rec
}
