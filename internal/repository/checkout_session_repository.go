package repository

import (
	"context"

	"github.com/qstina/relove-website/internal/domain/model"
)

type CheckoutSessionRepository interface {
	// 同じユーザーの open が既にあれば ErrDuplicate
	Create(ctx context.Context, s model.CheckoutSession) error
	FindByID(ctx context.Context, id string) (model.CheckoutSession, error)
	// open のときだけ更新する（CAS）
	Close(ctx context.Context, id string, to model.CheckoutSessionStatus, orderID *string) (bool, error)
	// ユーザーの open を全て abandoned にする
	AbandonOpen(ctx context.Context, userID string) error
}
