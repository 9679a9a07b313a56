package repository

import (
	"context"

	"github.com/qstina/relove-website/internal/domain/model"
	repo "github.com/qstina/relove-website/internal/repository"

	"gorm.io/gorm"
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *auditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := r.db.WithContext(ctx).
		Scopes(auditMatching(f), auditWindow(f), page(f.Limit, f.Offset)).
		Order("created_at desc").Order("id desc").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// 構造体条件はゼロ値の項目を無視する
func auditMatching(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where(&model.AuditLog{
			ActorUserID:  f.ActorUserID,
			Action:       f.Action,
			ResourceType: f.ResourceType,
			ResourceID:   f.ResourceID,
		})
	}
}

func auditWindow(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Since != nil {
			q = q.Where("created_at >= ?", *f.Since)
		}
		if f.Until != nil {
			q = q.Where("created_at < ?", *f.Until)
		}
		return q
	}
}
