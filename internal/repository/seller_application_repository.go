package repository

import (
	"context"
	"time"

	"github.com/qstina/relove-website/internal/domain/model"
)

type SellerApplicationRepository interface {
	// 同じユーザーの pending/approved が既にあれば ErrDuplicate
	Create(ctx context.Context, app model.SellerApplication) error
	FindByID(ctx context.Context, id string) (model.SellerApplication, error)
	ListByUserID(ctx context.Context, userID string) ([]model.SellerApplication, error)
	// statusが空なら全件
	List(ctx context.Context, status model.ApplicationStatus) ([]model.SellerApplication, error)

	// pending のときだけ to に変える（CAS）
	Decide(ctx context.Context, id string, to model.ApplicationStatus, adminID string, at time.Time) (bool, error)
}
