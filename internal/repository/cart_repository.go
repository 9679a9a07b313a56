package repository

import (
	"context"

	"github.com/qstina/relove-website/internal/domain/model"
)

// カート行と選択状態の保存
type CartRepository interface {
	ListEntries(ctx context.Context, userID string) ([]model.CartEntry, error)
	// 既にあれば何もしない。追加したら true
	AddIfAbsent(ctx context.Context, entry model.CartEntry) (bool, error)
	// 存在しなくてもエラーにしない
	RemoveEntries(ctx context.Context, userID string, itemIDs []string) error
	ClearEntries(ctx context.Context, userID string) error

	ListSelection(ctx context.Context, userID string) ([]string, error)
	ReplaceSelection(ctx context.Context, userID string, itemIDs []string) error
	Unselect(ctx context.Context, userID string, itemIDs []string) error
	ClearSelection(ctx context.Context, userID string) error
}
