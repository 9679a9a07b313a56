package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipping   OrderStatus = "Shipping"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// 許可される遷移。ここに無いものは全て不可。
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusProcessing: {OrderStatusShipping, OrderStatusCancelled},
	OrderStatusShipping:   {OrderStatusDelivered, OrderStatusCancelled},
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, to := range orderTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

type ShippingMethod string

const (
	ShippingStandard   ShippingMethod = "standard"
	ShippingExpress    ShippingMethod = "express"
	ShippingFaceToFace ShippingMethod = "f2f"
)

func (m ShippingMethod) Valid() bool {
	switch m {
	case ShippingStandard, ShippingExpress, ShippingFaceToFace:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "Credit / Debit Card"
	PaymentCashOnDelivery PaymentMethod = "Cash on Delivery"
	PaymentOnlineBanking  PaymentMethod = "Online Banking"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentCashOnDelivery, PaymentOnlineBanking:
		return true
	}
	return false
}

// オンラインバンキングで選べる銀行
var Banks = []string{"maybank", "cimb", "rhb", "hongleong", "bankislam", "publicbank"}

func ValidBank(b string) bool {
	for _, v := range Banks {
		if v == b {
			return true
		}
	}
	return false
}

// 注文。作成後に変わるのは status / tracking_number と各時刻だけ。
type Order struct {
	ID     string `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID string `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Email  string `gorm:"type:varchar(255);not null;index" json:"email"`

	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`

	//購入時のフォーム
	Address        string         `gorm:"type:text;not null" json:"address"`
	ShippingMethod ShippingMethod `gorm:"type:varchar(20);not null" json:"shipping_method"`
	PaymentMethod  PaymentMethod  `gorm:"type:varchar(50);not null" json:"payment_method"`
	Bank           string         `gorm:"type:varchar(50)" json:"bank,omitempty"`
	CardLast4      string         `gorm:"type:varchar(4)" json:"card_last4,omitempty"`

	Status         OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TrackingNumber string      `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`
	ShippedAt      *time.Time  `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time  `json:"delivered_at,omitempty"`
	CancelledAt    *time.Time  `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
