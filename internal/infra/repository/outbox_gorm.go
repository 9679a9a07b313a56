package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/qstina/relove-website/internal/domain/model"

	"gorm.io/gorm"
)

type OutboxGormRepository struct {
	db *gorm.DB
}

func NewOutboxGormRepository(db *gorm.DB) *OutboxGormRepository {
	return &OutboxGormRepository{db: db}
}

func (r *OutboxGormRepository) Insert(ctx context.Context, eventID, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&model.OutboxEvent{
		EventID:   eventID,
		Topic:     topic,
		Key:       key,
		Payload:   string(data),
		CreatedAt: time.Now(),
	}).Error
}

// 未送信を古い順に
func (r *OutboxGormRepository) FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var events []model.OutboxEvent
	if err := r.db.WithContext(ctx).
		Where("sent_at IS NULL").
		Order("id asc").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *OutboxGormRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ?", id).
		Update("sent_at", at).Error
}
