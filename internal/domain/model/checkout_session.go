package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type CheckoutSessionStatus string

const (
	CheckoutSessionOpen      CheckoutSessionStatus = "open"
	CheckoutSessionCommitted CheckoutSessionStatus = "committed"
	CheckoutSessionAbandoned CheckoutSessionStatus = "abandoned"
)

// 「購入手続きへ」で確定したカート行のスナップショット
type CheckoutLine struct {
	ItemID string          `json:"item_id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Image  string          `json:"image"`
}

type CheckoutLines []CheckoutLine

func (l CheckoutLines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *CheckoutLines) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = CheckoutLines{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("checkout lines: unsupported type %T", src)
	}
	return json.Unmarshal(raw, l)
}

func (l CheckoutLines) ItemIDs() []string {
	ids := make([]string, 0, len(l))
	for _, line := range l {
		ids = append(ids, line.ItemID)
	}
	return ids
}

func (l CheckoutLines) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range l {
		total = total.Add(line.Price)
	}
	return total
}

// 購入手続き中の状態。1ユーザーにつき open は1つ。
type CheckoutSession struct {
	ID        string                `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string                `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Status    CheckoutSessionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Lines     CheckoutLines         `gorm:"type:text;not null" json:"lines"`
	OrderID   *string               `gorm:"type:varchar(36)" json:"order_id,omitempty"`
	CreatedAt time.Time             `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time             `gorm:"not null" json:"updated_at"`
}
