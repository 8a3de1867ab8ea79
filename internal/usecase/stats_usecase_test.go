package usecase_test

import (
	"context"
	"testing"

	"marketplace/internal/apperr"
	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAdminStats_ZeroFillsStatuses(t *testing.T) {
	r := newTxRepos()
	uc := usecase.NewStatsUsecase(newTxManager(r), fixedClock{testNow})

	r.orders.On("RollupByStatus", mock.Anything, repo.OrderStatsScope{}).Return([]repo.OrderStatusRollup{
		{Status: model.OrderStatusPaid, Count: 2, Amount: decimal.RequireFromString("30")},
		{Status: model.OrderStatusCompleted, Count: 1, Amount: decimal.RequireFromString("12.5")},
	}, nil)
	r.shops.On("CountByStatus", mock.Anything).Return(map[model.ShopStatus]int64{model.ShopStatusApproved: 3}, nil)
	r.products.On("CountByShop", mock.Anything, (*int64)(nil)).Return(int64(4), int64(1), nil)

	out, err := uc.AdminStats(context.Background(), admin)
	require.NoError(t, err)

	assert.Equal(t, int64(3), out.Orders.Total)
	require.Len(t, out.Orders.ByStatus, 5)
	assert.Equal(t, "PENDING_PAYMENT", out.Orders.ByStatus[0].Status)
	assert.Equal(t, int64(0), out.Orders.ByStatus[0].Count)
	assert.Equal(t, int64(2), out.Orders.ByStatus[1].Count)
	assert.Equal(t, "12.50", out.Orders.Revenue)
	assert.Equal(t, usecase.ShopCounts{Approved: 3}, out.Shops)
	assert.Equal(t, usecase.ProductCounts{OnSale: 4, OffSale: 1}, out.Products)
}

func TestAdminStats_RequiresAdmin(t *testing.T) {
	uc := usecase.NewStatsUsecase(newTxManager(newTxRepos()), fixedClock{testNow})
	_, err := uc.AdminStats(context.Background(), buyer)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestMerchantStats_NoShopIsAllZero(t *testing.T) {
	r := newTxRepos()
	uc := usecase.NewStatsUsecase(newTxManager(r), fixedClock{testNow})
	r.shops.On("FindByMerchantID", mock.Anything, int64(10)).Return(model.Shop{}, repo.ErrNotFound)

	out, err := uc.MerchantStats(context.Background(), merchant)
	require.NoError(t, err)
	assert.False(t, out.HasShop)
	assert.Equal(t, int64(0), out.Orders.Total)
	assert.Len(t, out.Orders.ByStatus, 5)
	assert.Equal(t, "0.00", out.Orders.Revenue)
	r.orders.AssertNotCalled(t, "RollupByStatus", mock.Anything, mock.Anything)
}

func TestMerchantStats_TodayWindow(t *testing.T) {
	r := newTxRepos()
	uc := usecase.NewStatsUsecase(newTxManager(r), fixedClock{testNow})
	r.shops.On("FindByMerchantID", mock.Anything, int64(10)).Return(model.Shop{ID: 100, MerchantID: 10}, nil)

	r.orders.On("RollupByStatus", mock.Anything, mock.MatchedBy(func(s repo.OrderStatsScope) bool {
		return s.From == nil && s.ShopID != nil && *s.ShopID == 100
	})).Return([]repo.OrderStatusRollup{{Status: model.OrderStatusPendingPayment, Count: 4}}, nil)
	r.orders.On("RollupByStatus", mock.Anything, mock.MatchedBy(func(s repo.OrderStatsScope) bool {
		return s.From != nil && s.From.Hour() == 0 && s.From.Day() == 19 && s.To.Day() == 20
	})).Return([]repo.OrderStatusRollup{{Status: model.OrderStatusPendingPayment, Count: 1}}, nil)
	r.products.On("CountByShop", mock.Anything, mock.Anything).Return(int64(2), int64(0), nil)

	out, err := uc.MerchantStats(context.Background(), merchant)
	require.NoError(t, err)
	assert.True(t, out.HasShop)
	assert.Equal(t, int64(100), out.ShopID)
	assert.Equal(t, int64(4), out.Orders.Total)
	assert.Equal(t, int64(1), out.TodayOrders)
	assert.Equal(t, int64(2), out.Products.OnSale)
}
