package authz

import (
	"context"
	"errors"
	"testing"

	"marketplace/internal/apperr"
	"marketplace/internal/domain/model"
	"marketplace/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShops map[int64]model.Shop

func (f fakeShops) FindByMerchantID(_ context.Context, merchantID int64) (model.Shop, error) {
	if s, ok := f[merchantID]; ok {
		return s, nil
	}
	return model.Shop{}, repository.ErrNotFound
}

type brokenShops struct{}

func (brokenShops) FindByMerchantID(context.Context, int64) (model.Shop, error) {
	return model.Shop{}, errors.New("db down")
}

var (
	buyer1    = Caller{UserID: 1, Role: model.RoleBuyer}
	buyer2    = Caller{UserID: 2, Role: model.RoleBuyer}
	merchant  = Caller{UserID: 10, Role: model.RoleMerchant}
	noShop    = Caller{UserID: 11, Role: model.RoleMerchant}
	admin     = Caller{UserID: 99, Role: model.RoleAdmin}
	orderOfB1 = model.Order{ID: 5, UserID: 1, ShopID: 100}
)

func newGate() *Gate {
	return NewGate(fakeShops{10: {ID: 100, MerchantID: 10}})
}

func TestCanReadOrder(t *testing.T) {
	g := newGate()
	ctx := context.Background()

	tests := []struct {
		name    string
		caller  Caller
		allowed bool
	}{
		{"owner buyer", buyer1, true},
		{"other buyer", buyer2, false},
		{"shop merchant", merchant, true},
		{"merchant without shop", noShop, false},
		{"admin", admin, true},
		{"anonymous", Anonymous, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.CanReadOrder(ctx, tt.caller, orderOfB1)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperr.ErrForbidden)
		})
	}
}

func TestRequireShopOwner_OtherShop(t *testing.T) {
	g := newGate()
	err := g.RequireShopOwner(context.Background(), merchant, model.Order{ShopID: 200})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestRequireBuyerOwner_RejectsMerchant(t *testing.T) {
	assert.ErrorIs(t, RequireBuyerOwner(merchant, orderOfB1), apperr.ErrForbidden)
	assert.ErrorIs(t, RequireBuyerOwner(Anonymous, orderOfB1), apperr.ErrForbidden)
	assert.NoError(t, RequireBuyerOwner(buyer1, orderOfB1))
}

func TestMerchantShop(t *testing.T) {
	g := newGate()

	shop, ok, err := g.MerchantShop(context.Background(), merchant)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(100), shop.ID)

	_, ok, err = g.MerchantShop(context.Background(), noShop)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = g.MerchantShop(context.Background(), buyer1)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestMerchantShop_LookupErrorIsReturned(t *testing.T) {
	g := NewGate(brokenShops{})
	_, _, err := g.MerchantShop(context.Background(), merchant)
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperr.ErrForbidden))
}

func TestCallerContext(t *testing.T) {
	assert.True(t, FromContext(context.Background()).IsAnonymous())

	ctx := WithCaller(context.Background(), admin)
	got := FromContext(ctx)
	assert.Equal(t, admin, got)
	assert.True(t, got.Is(model.RoleAdmin))
	assert.False(t, got.Is(model.RoleBuyer))

	//ロールが不正なら匿名扱い
	assert.True(t, Caller{UserID: 3, Role: "GUEST"}.IsAnonymous())
}
