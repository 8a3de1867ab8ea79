package model

import (
	"strings"
	"time"
)

// 購入者の住所帳。注文時は Format() の文字列を注文にコピーする。
type Address struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//宛名
	Recipient string `gorm:"type:varchar(255);not null" json:"recipient"`
	Phone     string `gorm:"type:varchar(30)" json:"phone"`

	PostalCode string `gorm:"type:varchar(20);not null" json:"postal_code"`
	Region     string `gorm:"type:varchar(100);not null" json:"region"`
	City       string `gorm:"type:varchar(255);not null" json:"city"`
	Line1      string `gorm:"type:varchar(255);not null" json:"line1"`
	Line2      string `gorm:"type:varchar(255)" json:"line2"`

	IsDefault bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// 1行の配送先テキスト
func (a Address) Format() string {
	parts := make([]string, 0, 7)
	for _, p := range []string{a.Recipient, a.Phone, a.PostalCode, a.Region, a.City, a.Line1, a.Line2} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
