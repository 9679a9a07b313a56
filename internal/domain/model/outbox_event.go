package model

import "time"

const (
	TopicOrders             = "orders"
	TopicSellerApplications = "seller-applications"
)

const (
	EventOrderPlaced          = "order.placed"
	EventOrderStatusChanged   = "order.status_changed"
	EventApplicationDecided   = "seller_application.decided"
	EventApplicationSubmitted = "seller_application.submitted"
)

// 業務トランザクションと同じtxで書き、リレーがKafkaへ送る。
type OutboxEvent struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID   string     `gorm:"type:varchar(36);not null;uniqueIndex" json:"event_id"`
	Topic     string     `gorm:"type:varchar(100);not null" json:"topic"`
	Key       string     `gorm:"type:varchar(100);not null" json:"key"`
	Payload   string     `gorm:"type:text;not null" json:"payload"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	SentAt    *time.Time `gorm:"index" json:"sent_at,omitempty"`
}

// outboxに積むイベント本体
type EventEnvelope struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}
