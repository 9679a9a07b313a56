package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。作成時点の商品情報を凍結して持つ。
type OrderItem struct {
	ID          string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderID     string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	ItemID      string          `gorm:"type:varchar(36);not null;index" json:"item_id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Image       string          `gorm:"type:text" json:"image"`
	SellerID    string          `gorm:"type:varchar(36);not null" json:"seller_id"`
	SellerEmail string          `gorm:"type:varchar(255);not null;index" json:"seller_email"`
	Position    int             `gorm:"not null" json:"position"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
}
