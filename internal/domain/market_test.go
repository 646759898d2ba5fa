package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/saurrx/priced/internal/domain"
)

func price(v int64) *int64 { return &v }

func TestMarketPriceViable(t *testing.T) {
	tests := []struct {
		name   string
		buyYes *int64
		want   bool
	}{
		{"no quote", nil, false},
		{"midpoint", price(500_000), true},
		{"just inside floor", price(30_001), true},
		{"exactly at floor", price(30_000), false},
		{"below floor", price(10_000), false},
		{"just inside ceiling", price(969_999), true},
		{"exactly at ceiling", price(970_000), false},
		{"above ceiling", price(990_000), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := domain.Market{BuyYes: tt.buyYes}
			assert.Equal(t, tt.want, m.PriceViable())
		})
	}
}

func TestMarketTimeViable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	open := domain.Market{}
	assert.True(t, open.TimeViable(now), "no close time means always open")

	future := now.Add(time.Hour).Unix()
	assert.True(t, domain.Market{CloseTime: &future}.TimeViable(now))

	exact := now.Unix()
	assert.False(t, domain.Market{CloseTime: &exact}.TimeViable(now),
		"a market closing at this very second is no longer tradable")

	past := now.Add(-time.Hour).Unix()
	assert.False(t, domain.Market{CloseTime: &past}.TimeViable(now))
}

func TestMarketTradable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour).Unix()
	past := now.Add(-time.Hour).Unix()

	assert.True(t, domain.Market{BuyYes: price(400_000), CloseTime: &future}.Tradable(now))
	assert.False(t, domain.Market{BuyYes: price(400_000), CloseTime: &past}.Tradable(now))
	assert.False(t, domain.Market{BuyYes: price(990_000), CloseTime: &future}.Tradable(now))
	assert.False(t, domain.Market{CloseTime: &future}.Tradable(now))
}

func TestMarketUncertainty(t *testing.T) {
	assert.Equal(t, int64(0), domain.Market{BuyYes: price(500_000)}.Uncertainty())
	assert.Equal(t, int64(100_000), domain.Market{BuyYes: price(400_000)}.Uncertainty())
	assert.Equal(t, int64(100_000), domain.Market{BuyYes: price(600_000)}.Uncertainty())
	assert.Equal(t, int64(0), domain.Market{}.Uncertainty(),
		"a missing quote sits at the midpoint")
}

func TestMarketHasPrice(t *testing.T) {
	assert.False(t, domain.Market{}.HasPrice())
	assert.True(t, domain.Market{BuyYes: price(10_000)}.HasPrice())
}
