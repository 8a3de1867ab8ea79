package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus int

const (
	OrderStatusPendingPayment OrderStatus = 1
	OrderStatusPaid           OrderStatus = 2
	OrderStatusShipped        OrderStatus = 3
	OrderStatusCompleted      OrderStatus = 4
	OrderStatusCancelled      OrderStatus = 5
)

// 全ステータス（集計のゼロ埋めに使う）
var OrderStatuses = []OrderStatus{
	OrderStatusPendingPayment,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	return s >= OrderStatusPendingPayment && s <= OrderStatusCancelled
}

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPendingPayment:
		return "PENDING_PAYMENT"
	case OrderStatusPaid:
		return "PAID"
	case OrderStatusShipped:
		return "SHIPPED"
	case OrderStatusCompleted:
		return "COMPLETED"
	case OrderStatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// 画面表示用
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPendingPayment:
		return "awaiting payment"
	case OrderStatusPaid:
		return "awaiting shipment"
	case OrderStatusShipped:
		return "awaiting receipt"
	case OrderStatusCompleted:
		return "completed"
	case OrderStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// "PAID" のような名前からステータスへ
func ParseOrderStatus(name string) (OrderStatus, bool) {
	for _, s := range OrderStatuses {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}

// 注文。1注文=1店舗。
// 作成後に変わるのはステータスと各タイムスタンプだけ。
type Order struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNo        string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"order_no"`
	UserID         int64           `gorm:"not null;index;uniqueIndex:idx_orders_user_idem" json:"user_id"`
	ShopID         int64           `gorm:"not null;index" json:"shop_id"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Status         OrderStatus     `gorm:"not null;index" json:"status"`
	Address        string          `gorm:"type:text;not null" json:"address"`
	IdempotencyKey *string         `gorm:"type:varchar(255);uniqueIndex:idx_orders_user_idem" json:"-"`
	PaidAt         *time.Time      `json:"paid_at"`
	ShippedAt      *time.Time      `json:"shipped_at"`
	CreatedAt      time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`
}
