package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。購入時点の商品名・画像・単価を保存し、作成後は変更しない。
type OrderItem struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      int64           `gorm:"not null;index" json:"order_id"`
	ProductID    int64           `gorm:"not null;index" json:"product_id"`
	ProductName  string          `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductImage string          `gorm:"type:varchar(500)" json:"product_image"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity     int64           `gorm:"not null" json:"quantity"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 小計
func (it OrderItem) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(it.Quantity))
}
