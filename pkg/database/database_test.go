package database_test

import (
	"testing"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/testutil"
	"go-inventory-ledger/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_CreatesTables(t *testing.T) {
	db := testutil.NewTestDB(t)

	assert.True(t, db.Migrator().HasTable(&model.Product{}))
	assert.True(t, db.Migrator().HasTable(&model.Transaction{}))
	assert.True(t, db.Migrator().HasIndex(&model.Product{}, "SKU"))

	// Running it twice is a no-op.
	require.NoError(t, database.Migrate(db))
}
