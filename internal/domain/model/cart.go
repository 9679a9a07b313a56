package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの1行。(user_id, item_id) で一意。
// name/price/image は追加時点のスナップショット。
type CartEntry struct {
	UserID    string          `gorm:"type:varchar(36);primaryKey" json:"-"`
	ItemID    string          `gorm:"type:varchar(36);primaryKey" json:"item_id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Image     string          `gorm:"type:text" json:"image"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
}

// 購入対象として選択されたカート行。カート本体とは別に保存する。
type CartSelection struct {
	UserID    string    `gorm:"type:varchar(36);primaryKey"`
	ItemID    string    `gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}
