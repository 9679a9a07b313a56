package usecase

import (
	"context"
	"time"

	"github.com/qstina/relove-website/internal/domain/authz"
	"github.com/qstina/relove-website/internal/domain/model"
	repo "github.com/qstina/relove-website/internal/repository"
)

// AuditUsecase は管理者向けの監査ログ閲覧です。
type AuditUsecase struct {
	logs repo.AuditLogRepository
}

func NewAuditUsecase(logs repo.AuditLogRepository) *AuditUsecase {
	return &AuditUsecase{logs: logs}
}

type AuditQuery struct {
	ActorUserID  string
	Action       string
	ResourceType string
	ResourceID   string
	Since        *time.Time
	Until        *time.Time
	Limit        int
	Offset       int
}

var (
	knownAuditActions = map[model.AuditAction]bool{
		model.AuditActionUpdateOrderStatus: true,
		model.AuditActionDecideApplication: true,
		model.AuditActionDeleteItem:        true,
	}
	knownAuditResources = map[model.AuditResourceType]bool{
		model.AuditResourceOrder:       true,
		model.AuditResourceApplication: true,
		model.AuditResourceItem:        true,
	}
)

func (u *AuditUsecase) List(ctx context.Context, admin *model.Identity, q AuditQuery) ([]model.AuditLog, error) {
	if err := authz.Authorize(admin, authz.UsersList); err != nil {
		return nil, gateError(err)
	}
	if q.Limit < 0 || q.Limit > 100 || q.Offset < 0 {
		return nil, failWith(ErrInvalidInput, "invalid paging")
	}

	action := model.AuditAction(q.Action)
	if action != "" && !knownAuditActions[action] {
		return nil, failWith(ErrInvalidInput, "invalid action")
	}
	resource := model.AuditResourceType(q.ResourceType)
	if resource != "" && !knownAuditResources[resource] {
		return nil, failWith(ErrInvalidInput, "invalid resource_type")
	}
	if q.Since != nil && q.Until != nil && !q.Since.Before(*q.Until) {
		return nil, failWith(ErrInvalidInput, "since must be before until")
	}

	logs, err := u.logs.List(ctx, repo.AuditLogFilter{
		ActorUserID:  q.ActorUserID,
		Action:       action,
		ResourceType: resource,
		ResourceID:   q.ResourceID,
		Since:        q.Since,
		Until:        q.Until,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		return nil, dbError(ctx, "audit.list", err)
	}
	return logs, nil
}
