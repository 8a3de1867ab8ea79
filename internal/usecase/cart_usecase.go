package usecase

import (
	"context"
	"errors"

	"marketplace/internal/apperr"
	"marketplace/internal/authz"
	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"github.com/shopspring/decimal"
)

const maxCartQuantity = 999

// CartUsecase は /cart の業務ロジック
type CartUsecase struct {
	cartItems repo.CartItemRepository
	products  repo.ProductRepository
}

func NewCartUsecase(cartItems repo.CartItemRepository, products repo.ProductRepository) *CartUsecase {
	return &CartUsecase{cartItems: cartItems, products: products}
}

// 価格は現在の商品価格（注文確定時に改めて読む）
type CartLineOutput struct {
	ProductID int64  `json:"product_id"`
	ShopID    int64  `json:"shop_id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Price     string `json:"price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  string `json:"subtotal"`
	// 販売停止・削除された商品はfalse
	Available bool `json:"available"`
}

type CartOutput struct {
	Items []CartLineOutput `json:"items"`
	// 購入できる明細だけの合計
	Total string `json:"total"`
}

func (u *CartUsecase) GetCart(ctx context.Context, caller authz.Caller) (CartOutput, error) {
	if err := authz.RequireRole(caller, model.RoleBuyer); err != nil {
		return CartOutput{}, err
	}

	items, err := u.cartItems.ListByUser(ctx, caller.UserID, nil)
	if err != nil {
		return CartOutput{}, errDB
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := u.products.FindByIDs(ctx, ids)
	if err != nil {
		return CartOutput{}, errDB
	}

	out := CartOutput{Items: make([]CartLineOutput, 0, len(items))}
	total := decimal.Zero
	for _, it := range items {
		line := CartLineOutput{ProductID: it.ProductID, Quantity: it.Quantity, Price: "0.00", Subtotal: "0.00"}
		if p, ok := products[it.ProductID]; ok {
			sub := p.Price.Mul(decimal.NewFromInt(it.Quantity))
			line.ShopID = p.ShopID
			line.Name = p.Name
			line.Image = p.Image
			line.Price = p.Price.StringFixed(2)
			line.Subtotal = sub.StringFixed(2)
			line.Available = p.IsOnSale
			if p.IsOnSale {
				total = total.Add(sub)
			}
		}
		out.Items = append(out.Items, line)
	}
	out.Total = total.StringFixed(2)
	return out, nil
}

// 同一商品は数量加算
func (u *CartUsecase) AddToCart(ctx context.Context, caller authz.Caller, productID, qty int64) (CartOutput, error) {
	if err := authz.RequireRole(caller, model.RoleBuyer); err != nil {
		return CartOutput{}, err
	}
	if productID <= 0 {
		return CartOutput{}, apperr.Validation("invalid product_id")
	}
	if qty < 1 || qty > maxCartQuantity {
		return CartOutput{}, apperr.Validation("invalid quantity")
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartOutput{}, apperr.NotFound("product not found")
	}
	if err != nil {
		return CartOutput{}, errDB
	}
	if !p.IsOnSale {
		return CartOutput{}, apperr.ErrProductUnavailable
	}

	if err := u.cartItems.Upsert(ctx, caller.UserID, productID, qty); err != nil {
		return CartOutput{}, errDB
	}
	return u.GetCart(ctx, caller)
}

// 数量の上書き
func (u *CartUsecase) UpdateQuantity(ctx context.Context, caller authz.Caller, productID, qty int64) (CartOutput, error) {
	if err := authz.RequireRole(caller, model.RoleBuyer); err != nil {
		return CartOutput{}, err
	}
	if productID <= 0 {
		return CartOutput{}, apperr.Validation("invalid product_id")
	}
	if qty < 1 || qty > maxCartQuantity {
		return CartOutput{}, apperr.Validation("invalid quantity")
	}

	if err := u.cartItems.UpdateQuantity(ctx, caller.UserID, productID, qty); err != nil {
		return CartOutput{}, lookupErr(err, "cart item")
	}
	return u.GetCart(ctx, caller)
}

// 1件でも複数でも削除できる
func (u *CartUsecase) RemoveItems(ctx context.Context, caller authz.Caller, productIDs []int64) (CartOutput, error) {
	if err := authz.RequireRole(caller, model.RoleBuyer); err != nil {
		return CartOutput{}, err
	}
	ids := uniqueIDs(productIDs)
	if len(ids) == 0 {
		return CartOutput{}, apperr.Validation("product_ids is required")
	}

	if _, err := u.cartItems.DeleteByProducts(ctx, caller.UserID, ids); err != nil {
		return CartOutput{}, errDB
	}
	return u.GetCart(ctx, caller)
}
