package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	dash := NewDashboardService(f.txs, 10)

	empty, err := dash.GetDashboardStats(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.TotalProducts)
	assert.True(t, empty.TotalValuation.IsZero())

	f.product(t, "A", "10")
	f.product(t, "B", "2")
	f.product(t, "C", "7")
	f.adjust(t, "A", 5)
	f.adjust(t, "B", 20)

	stats, err := dash.GetDashboardStats(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalProducts)
	assert.Equal(t, int64(2), stats.LowStockCount, "A at 5 and C at 0 are below 10")
	assert.True(t, decimal.NewFromInt(90).Equal(stats.TotalValuation), "got %s", stats.TotalValuation)
}

func TestStockMovement(t *testing.T) {
	f := newFixture(t)
	dash := NewDashboardService(f.txs, 10)
	f.product(t, "A", "1")
	f.adjust(t, "A", 8)
	f.adjust(t, "A", -3)

	movement, err := dash.GetStockMovement(f.ctx, 7)
	require.NoError(t, err)

	var in, out int64
	for _, day := range movement {
		assert.NotEmpty(t, day.Date)
		in += day.Inbound
		out += day.Outbound
	}
	assert.Equal(t, int64(8), in)
	assert.Equal(t, int64(3), out)
}
