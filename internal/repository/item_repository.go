package repository

import (
	"context"
	"time"

	"github.com/qstina/relove-website/internal/domain/model"
)

// 一覧の絞り込み。検索は部分一致のみ。
type ItemListQuery struct {
	Category    string
	Q           string
	SellerID    string
	IncludeSold bool
	Limit       int
	Offset      int
}

type ItemRepository interface {
	List(ctx context.Context, q ItemListQuery) ([]model.Item, error)
	// 論理削除済みは ErrNotFound
	FindByID(ctx context.Context, id string) (model.Item, error)
	// 見つからないIDは結果に含まれない
	FindByIDs(ctx context.Context, ids []string) ([]model.Item, error)

	Create(ctx context.Context, item model.Item) (model.Item, error)
	// 未売却のものだけ更新できる。更新できなければ false
	Update(ctx context.Context, item model.Item) (bool, error)

	// sold=false のときだけ sold=true / order_id をセットする（CAS）
	MarkSold(ctx context.Context, itemID string, orderID string) (bool, error)

	// deleted_at をセットし sold=true にする
	SoftDelete(ctx context.Context, id string, at time.Time) error
}
