package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/qstina/relove-website/internal/domain/authz"
	"github.com/qstina/relove-website/internal/domain/model"
	repo "github.com/qstina/relove-website/internal/repository"
)

type UserUsecase struct {
	users repo.UserRepository
}

func NewUserUsecase(users repo.UserRepository) *UserUsecase {
	return &UserUsecase{users: users}
}

type ProfileInput struct {
	Name     string
	Phone    string
	Address  string
	Course   string
	City     string
	Postcode string
	State    string
}

func (u *UserUsecase) GetProfile(ctx context.Context, id *model.Identity) (model.User, error) {
	if err := authz.Authorize(id, authz.ProfileManage); err != nil {
		return model.User{}, gateError(err)
	}
	user, err := u.users.FindByID(ctx, id.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.User{}, failWith(ErrNotFound, "not found")
	}
	if err != nil {
		return model.User{}, dbError(ctx, "profile.get", err)
	}
	return *user, nil
}

func (u *UserUsecase) UpdateProfile(ctx context.Context, id *model.Identity, in ProfileInput) (model.User, error) {
	if err := authz.Authorize(id, authz.ProfileManage); err != nil {
		return model.User{}, gateError(err)
	}
	if len(in.Name) > 255 || len(in.Phone) > 30 || len(in.Postcode) > 20 {
		return model.User{}, failWith(ErrInvalidInput, "field too long")
	}

	user, err := u.users.FindByID(ctx, id.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.User{}, failWith(ErrNotFound, "not found")
	}
	if err != nil {
		return model.User{}, dbError(ctx, "profile.update", err)
	}

	user.Name = strings.TrimSpace(in.Name)
	user.Phone = strings.TrimSpace(in.Phone)
	user.Address = strings.TrimSpace(in.Address)
	user.Course = strings.TrimSpace(in.Course)
	user.City = strings.TrimSpace(in.City)
	user.Postcode = strings.TrimSpace(in.Postcode)
	user.State = strings.TrimSpace(in.State)

	if err := u.users.UpdateProfile(ctx, user); err != nil {
		return model.User{}, dbError(ctx, "profile.update", err)
	}
	return *user, nil
}

func (u *UserUsecase) ListUsers(ctx context.Context, admin *model.Identity, limit, offset int) ([]model.User, error) {
	if err := authz.Authorize(admin, authz.UsersList); err != nil {
		return nil, gateError(err)
	}
	if limit < 0 || limit > 100 || offset < 0 {
		return nil, failWith(ErrInvalidInput, "invalid paging")
	}
	users, err := u.users.List(ctx, limit, offset)
	if err != nil {
		return nil, dbError(ctx, "users.list", err)
	}
	return users, nil
}
