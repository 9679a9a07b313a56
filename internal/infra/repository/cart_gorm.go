package repository

import (
	"context"
	"time"

	"github.com/qstina/relove-website/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// カート行を追加順で返す
func (r *CartGormRepository) ListEntries(ctx context.Context, userID string) ([]model.CartEntry, error) {
	var entries []model.CartEntry
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Order("item_id asc").
		Find(&entries).Error; err != nil {
		return []model.CartEntry{}, err
	}
	return entries, nil
}

// 同じ商品が既にあれば何もしない
func (r *CartGormRepository) AddIfAbsent(ctx context.Context, entry model.CartEntry) (bool, error) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *CartGormRepository) RemoveEntries(ctx context.Context, userID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND item_id IN ?", userID, itemIDs).
		Delete(&model.CartEntry{}).Error
}

// 指定ユーザーの明細を全削除
func (r *CartGormRepository) ClearEntries(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartEntry{}).Error
}

func (r *CartGormRepository) ListSelection(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&model.CartSelection{}).
		Where("user_id = ?", userID).
		Order("item_id asc").
		Pluck("item_id", &ids).Error; err != nil {
		return []string{}, err
	}
	return ids, nil
}

// 選択状態を丸ごと入れ替える
func (r *CartGormRepository) ReplaceSelection(ctx context.Context, userID string, itemIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.CartSelection{}).Error; err != nil {
			return err
		}
		if len(itemIDs) == 0 {
			return nil
		}

		now := time.Now()
		rows := make([]model.CartSelection, 0, len(itemIDs))
		for _, id := range itemIDs {
			rows = append(rows, model.CartSelection{UserID: userID, ItemID: id, CreatedAt: now})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

func (r *CartGormRepository) Unselect(ctx context.Context, userID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND item_id IN ?", userID, itemIDs).
		Delete(&model.CartSelection{}).Error
}

func (r *CartGormRepository) ClearSelection(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartSelection{}).Error
}
