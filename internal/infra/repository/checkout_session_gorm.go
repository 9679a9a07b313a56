package repository

import (
	"context"
	"errors"
	"time"

	"github.com/qstina/relove-website/internal/domain/model"
	repo "github.com/qstina/relove-website/internal/repository"

	"gorm.io/gorm"
)

type CheckoutSessionGormRepository struct {
	db *gorm.DB
}

func NewCheckoutSessionGormRepository(db *gorm.DB) *CheckoutSessionGormRepository {
	return &CheckoutSessionGormRepository{db: db}
}

func (r *CheckoutSessionGormRepository) Create(ctx context.Context, s model.CheckoutSession) error {
	err := r.db.WithContext(ctx).Create(&s).Error
	if err != nil && isUniqueViolation(err) {
		return repo.ErrDuplicate
	}
	return err
}

func (r *CheckoutSessionGormRepository) FindByID(ctx context.Context, id string) (model.CheckoutSession, error) {
	var s model.CheckoutSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CheckoutSession{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CheckoutSession{}, err
	}
	return s, nil
}

// open のときだけ閉じる
func (r *CheckoutSessionGormRepository) Close(ctx context.Context, id string, to model.CheckoutSessionStatus, orderID *string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.CheckoutSession{}).
		Where("id = ? AND status = ?", id, model.CheckoutSessionOpen).
		Updates(map[string]interface{}{
			"status":     to,
			"order_id":   orderID,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *CheckoutSessionGormRepository) AbandonOpen(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Model(&model.CheckoutSession{}).
		Where("user_id = ? AND status = ?", userID, model.CheckoutSessionOpen).
		Updates(map[string]interface{}{
			"status":     model.CheckoutSessionAbandoned,
			"updated_at": time.Now(),
		}).Error
}
