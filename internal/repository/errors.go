package repository

import "errors"

var (
	// 対象が存在しない（論理削除済みも含む）
	ErrNotFound = errors.New("not found")
	// 一意制約などの衝突
	ErrDuplicate = errors.New("duplicate")
)
