package repository

import (
	"context"

	"marketplace/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 一覧検索
type ProductListQuery struct {
	Page   int
	Limit  int
	Q      string
	ShopID *int64
	Sort   string
}

// 商品の更新内容（nilは変更しない）
type ProductChanges struct {
	Name     *string
	Image    *string
	Price    *decimal.Decimal
	Stock    *int64
	IsOnSale *bool
}

// 商品の永続化。
// FindByID は論理削除済みなら ErrNotFound。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)
	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, id int64, ch ProductChanges) error
	CountByShop(ctx context.Context, shopID *int64) (onSale int64, offSale int64, err error)
}
