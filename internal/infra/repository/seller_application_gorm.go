package repository

import (
	"context"
	"errors"
	"time"

	"github.com/qstina/relove-website/internal/domain/model"
	repo "github.com/qstina/relove-website/internal/repository"

	"gorm.io/gorm"
)

type SellerApplicationGormRepository struct {
	db *gorm.DB
}

func NewSellerApplicationGormRepository(db *gorm.DB) *SellerApplicationGormRepository {
	return &SellerApplicationGormRepository{db: db}
}

func (r *SellerApplicationGormRepository) Create(ctx context.Context, app model.SellerApplication) error {
	err := r.db.WithContext(ctx).Create(&app).Error
	if err != nil && isUniqueViolation(err) {
		return repo.ErrDuplicate
	}
	return err
}

func (r *SellerApplicationGormRepository) FindByID(ctx context.Context, id string) (model.SellerApplication, error) {
	var app model.SellerApplication
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.SellerApplication{}, repo.ErrNotFound
	}
	if err != nil {
		return model.SellerApplication{}, err
	}
	return app, nil
}

func (r *SellerApplicationGormRepository) ListByUserID(ctx context.Context, userID string) ([]model.SellerApplication, error) {
	var apps []model.SellerApplication
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&apps).Error; err != nil {
		return []model.SellerApplication{}, err
	}
	return apps, nil
}

func (r *SellerApplicationGormRepository) List(ctx context.Context, status model.ApplicationStatus) ([]model.SellerApplication, error) {
	q := r.db.WithContext(ctx).Model(&model.SellerApplication{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var apps []model.SellerApplication
	if err := q.Order("created_at asc").Find(&apps).Error; err != nil {
		return []model.SellerApplication{}, err
	}
	return apps, nil
}

// pending のものだけ判定できる
func (r *SellerApplicationGormRepository) Decide(ctx context.Context, id string, to model.ApplicationStatus, adminID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.SellerApplication{}).
		Where("id = ? AND status = ?", id, model.ApplicationPending).
		Updates(map[string]interface{}{
			"status":     to,
			"decided_by": adminID,
			"decided_at": at,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
