package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

type CartItemRepository interface {
	// productIDsが空なら全件
	ListByUser(ctx context.Context, userID int64, productIDs []int64) ([]model.CartItem, error)
	// 注文確定用。同じ購入者の同時注文を直列化するため行ロックを取る。
	ListByUserForUpdate(ctx context.Context, userID int64, productIDs []int64) ([]model.CartItem, error)
	// 同一商品は数量加算
	Upsert(ctx context.Context, userID int64, productID int64, addQty int64) error
	UpdateQuantity(ctx context.Context, userID int64, productID int64, qty int64) error
	DeleteByProducts(ctx context.Context, userID int64, productIDs []int64) (int64, error)
	// 削除した件数を返す
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}
