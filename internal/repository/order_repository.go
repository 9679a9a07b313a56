package repository

import (
	"context"
	"time"

	"github.com/qstina/relove-website/internal/domain/model"
)

type OrderListFilter struct {
	Status string
	Limit  int
	Offset int
}

// ステータス遷移の書き込み内容
type OrderTransition struct {
	From           model.OrderStatus
	To             model.OrderStatus
	TrackingNumber string
	At             time.Time
}

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) error
	FindByID(ctx context.Context, orderID string) (model.Order, error)

	// 購入者のemailで絞る
	ListByBuyerEmail(ctx context.Context, email string) ([]model.Order, error)
	// 明細に出品者emailを含む注文
	ListBySellerEmail(ctx context.Context, email string) ([]model.Order, error)
	ListAll(ctx context.Context, f OrderListFilter) ([]model.Order, error)

	// 現在のstatusが t.From のときだけ更新する（CAS）
	UpdateStatus(ctx context.Context, orderID string, t OrderTransition) (bool, error)
}
