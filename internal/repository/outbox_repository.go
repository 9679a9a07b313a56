package repository

import (
	"context"
	"time"

	"github.com/qstina/relove-website/internal/domain/model"
)

type OutboxRepository interface {
	Insert(ctx context.Context, eventID, topic, key string, payload any) error
	FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkSent(ctx context.Context, id int64, at time.Time) error
}
