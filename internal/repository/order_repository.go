package repository

import (
	"context"
	"time"

	"marketplace/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 注文一覧の絞り込み（0値は条件なし）
type OrderListFilter struct {
	Page    int
	Limit   int
	Status  model.OrderStatus
	OrderNo string
	UserID  *int64
	ShopID  *int64
	From    *time.Time
	To      *time.Time
}

// 集計のスコープ（nilは全体）
type OrderStatsScope struct {
	UserID *int64
	ShopID *int64
	From   *time.Time
	To     *time.Time
}

// ステータスごとの件数と合計金額
type OrderStatusRollup struct {
	Status model.OrderStatus
	Count  int64
	Amount decimal.Decimal
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByOrderNo(ctx context.Context, orderNo string) (model.Order, error)
	ExistsOrderNo(ctx context.Context, orderNo string) (bool, error)
	// 同じキーなら同じ注文
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (model.Order, error)

	// status が from のときだけ to に変える。変わらなければ false。
	CompareAndSetStatus(ctx context.Context, orderID int64, from, to model.OrderStatus, stamps model.StatusStamps) (bool, error)

	Delete(ctx context.Context, orderID int64) error
	RollupByStatus(ctx context.Context, scope OrderStatsScope) ([]OrderStatusRollup, error)
}
