package authz

import (
	"context"
	"errors"

	"marketplace/internal/apperr"
	"marketplace/internal/domain/model"
	"marketplace/internal/repository"
)

// 所有関係の参照だけできればよい
type ShopFinder interface {
	FindByMerchantID(ctx context.Context, merchantID int64) (model.Shop, error)
}

// Gate は注文・店舗の読み書きを許すかを判定する。
// 自分の状態は持たず、店舗の所有者だけを引く。
type Gate struct {
	shops ShopFinder
}

func NewGate(shops ShopFinder) *Gate {
	return &Gate{shops: shops}
}

// ロールの一致だけを見る（所有関係の参照なし）
func RequireRole(c Caller, role model.Role) error {
	if c.IsAnonymous() {
		return apperr.Forbidden("login required")
	}
	if c.Role != role {
		return apperr.Forbidden("role " + string(role) + " required")
	}
	return nil
}

func RequireAdmin(c Caller) error {
	return RequireRole(c, model.RoleAdmin)
}

// 購入者本人の注文か
func RequireBuyerOwner(c Caller, o model.Order) error {
	if err := RequireRole(c, model.RoleBuyer); err != nil {
		return err
	}
	if o.UserID != c.UserID {
		return apperr.Forbidden("order belongs to another buyer")
	}
	return nil
}

// マーチャントの店舗。店舗が無ければ false。
func (g *Gate) MerchantShop(ctx context.Context, c Caller) (model.Shop, bool, error) {
	if err := RequireRole(c, model.RoleMerchant); err != nil {
		return model.Shop{}, false, err
	}
	shop, err := g.shops.FindByMerchantID(ctx, c.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Shop{}, false, nil
	}
	if err != nil {
		return model.Shop{}, false, err
	}
	return shop, true, nil
}

// 注文の店舗がマーチャント自身の店舗か。店舗が無ければ何もできない。
func (g *Gate) RequireShopOwner(ctx context.Context, c Caller, o model.Order) error {
	shop, ok, err := g.MerchantShop(ctx, c)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden("merchant has no shop")
	}
	if shop.ID != o.ShopID {
		return apperr.Forbidden("order belongs to another shop")
	}
	return nil
}

// 購入者は自分の注文、マーチャントは自店舗の注文、管理者は全て
func (g *Gate) CanReadOrder(ctx context.Context, c Caller, o model.Order) error {
	if c.IsAnonymous() {
		return apperr.Forbidden("login required")
	}
	switch c.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleBuyer:
		return RequireBuyerOwner(c, o)
	case model.RoleMerchant:
		return g.RequireShopOwner(ctx, c, o)
	default:
		return apperr.ErrForbidden
	}
}
