package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/qstina/relove-website/internal/domain/model"
	repo "github.com/qstina/relove-website/internal/repository"

	"gorm.io/gorm"
)

type ItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewItemGormRepository(db *gorm.DB) *ItemGormRepository {
	return &ItemGormRepository{db: db}
}

// 削除されていない出品を、カテゴリ/キーワードで絞って返す。
func (r *ItemGormRepository) List(ctx context.Context, q repo.ItemListQuery) ([]model.Item, error) {
	tx := r.db.WithContext(ctx).Model(&model.Item{})

	if !q.IncludeSold {
		tx = tx.Where("sold = ?", false)
	}
	if q.SellerID != "" {
		tx = tx.Where("seller_id = ?", q.SellerID)
	}
	if c := strings.TrimSpace(q.Category); c != "" {
		tx = tx.Where("category = ?", c)
	}

	// 名前・説明・出品者名を対象
	if kw := strings.ToLower(strings.TrimSpace(q.Q)); kw != "" {
		like := "%" + kw + "%"
		tx = tx.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(seller_name) LIKE ?)", like, like, like)
	}

	limit := q.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	var items []model.Item
	if err := tx.Order("created_at desc").Order("id desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Item{}, err
	}
	return items, nil
}

func (r *ItemGormRepository) FindByID(ctx context.Context, id string) (model.Item, error) {
	var it model.Item
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&it).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Item{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Item{}, err
	}
	return it, nil
}

func (r *ItemGormRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Item, error) {
	if len(ids) == 0 {
		return []model.Item{}, nil
	}
	var items []model.Item
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return []model.Item{}, err
	}
	return items, nil
}

func (r *ItemGormRepository) Create(ctx context.Context, it model.Item) (model.Item, error) {
	if err := r.db.WithContext(ctx).Create(&it).Error; err != nil {
		return model.Item{}, err
	}
	return it, nil
}

// 売れた後は編集させない
func (r *ItemGormRepository) Update(ctx context.Context, it model.Item) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("id = ? AND sold = ?", it.ID, false).
		Updates(map[string]interface{}{
			"name":        it.Name,
			"price":       it.Price,
			"image":       it.Image,
			"category":    it.Category,
			"condition":   it.Condition,
			"description": it.Description,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// sold=false のときだけ売却済みにする。
// 同時に2人が確定しても、条件付きUPDATEで片方だけが1件更新になる。
func (r *ItemGormRepository) MarkSold(ctx context.Context, itemID string, orderID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("id = ? AND sold = ?", itemID, false).
		Updates(map[string]interface{}{
			"sold":     true,
			"order_id": orderID,
		})

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 論理削除。過去の注文から参照できるよう行は残す
func (r *ItemGormRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"sold":       true,
			"deleted_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
