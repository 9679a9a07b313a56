package repository

import (
	"context"
	"time"

	"github.com/qstina/relove-website/internal/domain/model"
)

// 監査ログの絞り込み。空の項目は条件にしない
type AuditLogFilter struct {
	ActorUserID  string
	Action       model.AuditAction
	ResourceType model.AuditResourceType
	ResourceID   string
	Since        *time.Time
	Until        *time.Time
	Limit        int
	Offset       int
}

// 監査ログは追記のみ。一覧は新しい順
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
