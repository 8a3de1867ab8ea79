package usecase_test

import (
	"context"
	"testing"

	"marketplace/internal/apperr"
	"marketplace/internal/authz"
	"marketplace/internal/domain/model"
	gormrepo "marketplace/internal/infra/repository"
	"marketplace/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopApplyReviewAndProducts(t *testing.T) {
	f := newMarket(t)
	ctx := context.Background()
	products := usecase.NewProductUsecase(gormrepo.NewProductGormRepository(f.db), gormrepo.NewShopGormRepository(f.db))

	shop, err := f.shops.Apply(ctx, merchant, " My Shop ", "")
	require.NoError(t, err)
	assert.Equal(t, "PENDING", shop.Status)
	assert.Equal(t, "My Shop", shop.Name)

	_, err = f.shops.Apply(ctx, merchant, "again", "")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	//審査前は出品できない
	_, err = products.Create(ctx, merchant, usecase.CreateProductInput{Name: "A", Price: "10.00", Stock: 3})
	assert.ErrorIs(t, err, apperr.ErrShopUnavailable)

	pending, err := f.shops.ListPending(ctx, admin)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	reviewed, err := f.shops.Review(ctx, admin, shop.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", reviewed.Status)

	_, err = products.Create(ctx, merchant, usecase.CreateProductInput{Name: "A", Price: "10.001"})
	assertErrContains(t, err, "invalid price")

	p, err := products.Create(ctx, merchant, usecase.CreateProductInput{Name: "Apple", Price: "10.5", Stock: 3})
	require.NoError(t, err)
	assert.Equal(t, "10.50", p.Price)
	assert.True(t, p.IsOnSale)

	_, err = products.Create(ctx, merchant, usecase.CreateProductInput{Name: "Banana", Price: "3"})
	require.NoError(t, err)

	list, err := products.ListPublic(ctx, usecase.ListProductsInput{Q: "APP"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Apple", list.Items[0].Name)

	list, err = products.ListPublic(ctx, usecase.ListProductsInput{Sort: "price_asc"})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "Banana", list.Items[0].Name)

	_, err = products.ListPublic(ctx, usecase.ListProductsInput{Sort: "random"})
	assert.ErrorIs(t, err, &apperr.HTTPError{Code: apperr.CodeValidation})

	//他店舗のマーチャントは変更できない
	f.seedShop(t, 55)
	rival := authz.Caller{UserID: 55, Role: model.RoleMerchant}
	_, err = products.SetOnSale(ctx, rival, p.ID, false)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	off, err := products.SetOnSale(ctx, merchant, p.ID, false)
	require.NoError(t, err)
	assert.False(t, off.IsOnSale)

	_, err = products.GetPublic(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	//店舗削除で一覧から消える
	require.NoError(t, f.shops.Delete(ctx, admin, shop.ID))
	list, err = products.ListPublic(ctx, usecase.ListProductsInput{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestCart_AddUpdateRemove(t *testing.T) {
	f := newMarket(t)
	ctx := context.Background()
	shop := f.seedShop(t, merchant.UserID)
	a := f.seedProduct(t, shop.ID, "A", "10.00")
	b := f.seedProduct(t, shop.ID, "B", "2.50")

	_, err := f.cart.AddToCart(ctx, buyer, a.ID, 0)
	assert.ErrorIs(t, err, &apperr.HTTPError{Code: apperr.CodeValidation})
	_, err = f.cart.AddToCart(ctx, buyer, 9999, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.cart.AddToCart(ctx, merchant, a.ID, 1)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	f.addToCart(t, buyer, a.ID, 1)
	f.addToCart(t, buyer, a.ID, 2)
	cart, err := f.cart.AddToCart(ctx, buyer, b.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "35.00", cart.Total)

	cart, err = f.cart.UpdateQuantity(ctx, buyer, a.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "15.00", cart.Total)

	_, err = f.cart.UpdateQuantity(ctx, other, a.ID, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	cart, err = f.cart.RemoveItems(ctx, buyer, []int64{a.ID})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, b.ID, cart.Items[0].ProductID)

	_, err = f.cart.RemoveItems(ctx, buyer, nil)
	assert.ErrorIs(t, err, &apperr.HTTPError{Code: apperr.CodeValidation})
}

func TestAddressBook(t *testing.T) {
	f := newMarket(t)
	ctx := context.Background()
	in := usecase.AddressInput{Recipient: "Taro", PostalCode: "100", Region: "Tokyo", City: "Chiyoda", Line1: "1-1"}

	first, err := f.addresses.Create(ctx, buyer, in)
	require.NoError(t, err)
	second, err := f.addresses.Create(ctx, buyer, in)
	require.NoError(t, err)
	assert.True(t, first.IsDefault)
	assert.False(t, second.IsDefault)

	require.NoError(t, f.addresses.SetDefault(ctx, buyer, second.ID))
	list, err := f.addresses.List(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, a := range list {
		assert.Equal(t, a.ID == second.ID, a.IsDefault)
	}

	assert.ErrorIs(t, f.addresses.Delete(ctx, other, first.ID), apperr.ErrForbidden)
	_, err = f.addresses.Create(ctx, buyer, usecase.AddressInput{Recipient: "x"})
	assert.ErrorIs(t, err, &apperr.HTTPError{Code: apperr.CodeValidation})

	require.NoError(t, f.addresses.Delete(ctx, buyer, first.ID))
	list, err = f.addresses.List(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
