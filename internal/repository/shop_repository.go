package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// 店舗の取得・審査。
// 論理削除済みの店舗は存在しない扱い。
type ShopRepository interface {
	FindByID(ctx context.Context, id int64) (model.Shop, error)
	FindByMerchantID(ctx context.Context, merchantID int64) (model.Shop, error)
	Create(ctx context.Context, shop model.Shop) (model.Shop, error)
	UpdateStatus(ctx context.Context, id int64, status model.ShopStatus) error
	ListByStatus(ctx context.Context, status model.ShopStatus) ([]model.Shop, error)
	CountByStatus(ctx context.Context) (map[model.ShopStatus]int64, error)
	Delete(ctx context.Context, id int64) error
}
