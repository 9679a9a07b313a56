package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	MinCondition = 1
	MaxCondition = 10
)

// 出品物。1点もので、sold は false から true への一方向だけ。
type Item struct {
	ID          string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Image       string          `gorm:"type:text;not null" json:"image"`
	Category    string          `gorm:"type:varchar(100);not null;index" json:"category"`
	Condition   int             `gorm:"not null" json:"condition"`
	Description string          `gorm:"type:text;not null" json:"description"`

	SellerID    string `gorm:"type:varchar(36);not null;index" json:"seller_id"`
	SellerEmail string `gorm:"type:varchar(255);not null;index" json:"seller_email"`
	SellerName  string `gorm:"type:varchar(255)" json:"seller_name"`

	//購入確定でtrue、order_idも同時に入る
	Sold    bool    `gorm:"not null;default:false;index" json:"sold"`
	OrderID *string `gorm:"type:varchar(36);index" json:"order_id,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// 購入できる状態か
func (it Item) Available() bool {
	return !it.Sold && !it.DeletedAt.Valid
}
