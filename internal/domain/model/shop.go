package model

import (
	"time"

	"gorm.io/gorm"
)

// 店舗の審査状態
type ShopStatus int

const (
	ShopStatusPending  ShopStatus = 0
	ShopStatusApproved ShopStatus = 1
	ShopStatusRejected ShopStatus = 2
)

func (s ShopStatus) String() string {
	switch s {
	case ShopStatusPending:
		return "PENDING"
	case ShopStatusApproved:
		return "APPROVED"
	case ShopStatusRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// 1マーチャントにつき店舗は1つ
type Shop struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	MerchantID int64          `gorm:"not null;uniqueIndex" json:"merchant_id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	Logo       string         `gorm:"type:varchar(500)" json:"logo"`
	Status     ShopStatus     `gorm:"not null;default:0;index" json:"status"`
	CreatedAt  time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
