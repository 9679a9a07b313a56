package repository

import (
	"context"

	"github.com/qstina/relove-website/internal/domain/model"
)

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成。emailが重複したら ErrDuplicate
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, limit, offset int) ([]model.User, error)

	//プロフィール項目だけ更新
	UpdateProfile(ctx context.Context, user *model.User) error
	UpdateRole(ctx context.Context, userID string, role model.Role) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID string) error
}
