package repository

import (
	"context"
	"errors"

	"github.com/qstina/relove-website/internal/domain/model"
	repo "github.com/qstina/relove-website/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) error {
	return r.db.WithContext(ctx).Create(&order).Error
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListByBuyerEmail(ctx context.Context, email string) ([]model.Order, error) {
	var orders []model.Order
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return []model.Order{}, err
	}
	return orders, nil
}

// 明細のどれかがこの出品者のものなら対象
func (r *OrderGormRepository) ListBySellerEmail(ctx context.Context, email string) ([]model.Order, error) {
	sub := r.db.Model(&model.OrderItem{}).Select("order_id").Where("seller_email = ?", email)

	var orders []model.Order
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", sub).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return []model.Order{}, err
	}
	return orders, nil
}

func (r *OrderGormRepository) ListAll(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := r.db.WithContext(ctx).Model(&model.Order{})

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var orders []model.Order
	if err := q.Order("created_at desc").Scopes(page(f.Limit, f.Offset)).Find(&orders).Error; err != nil {
		return []model.Order{}, err
	}
	return orders, nil
}

// 遷移元のstatusが一致するときだけ更新する
func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID string, t repo.OrderTransition) (bool, error) {
	values := map[string]interface{}{
		"status":     t.To,
		"updated_at": t.At,
	}
	switch t.To {
	case model.OrderStatusShipping:
		values["tracking_number"] = t.TrackingNumber
		values["shipped_at"] = t.At
	case model.OrderStatusDelivered:
		values["delivered_at"] = t.At
	case model.OrderStatusCancelled:
		values["cancelled_at"] = t.At
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, t.From).
		Updates(values)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
