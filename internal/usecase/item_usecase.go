package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/qstina/relove-website/internal/domain/authz"
	"github.com/qstina/relove-website/internal/domain/model"
	repo "github.com/qstina/relove-website/internal/repository"

	"github.com/shopspring/decimal"
)

// 出品の閲覧と出品者による管理
type ItemUsecase struct {
	tx    repo.TransactionManager
	items repo.ItemRepository
	users repo.UserRepository
	ids   IDGenerator
	clock Clock
}

func NewItemUsecase(tx repo.TransactionManager, items repo.ItemRepository, users repo.UserRepository, ids IDGenerator, clock Clock) *ItemUsecase {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ItemUsecase{tx: tx, items: items, users: users, ids: ids, clock: clock}
}

type BrowseInput struct {
	Category    string
	Q           string
	IncludeSold bool
	Limit       int
	Offset      int
}

type ItemInput struct {
	Name        string
	Price       decimal.Decimal
	Image       string
	Category    string
	Condition   int
	Description string
}

func (in ItemInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return failWith(ErrMissingRequiredField, "name required")
	}
	if strings.TrimSpace(in.Image) == "" {
		return failWith(ErrMissingRequiredField, "image required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return failWith(ErrMissingRequiredField, "category required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return failWith(ErrMissingRequiredField, "description required")
	}
	if in.Price.IsNegative() {
		return failWith(ErrInvalidInput, "price must be >= 0")
	}
	if in.Condition < model.MinCondition || in.Condition > model.MaxCondition {
		return failWith(ErrInvalidInput, "condition must be between 1 and 10")
	}
	return nil
}

// Browse は未売却の出品を返す。売却済みを含められるのは全件参照できる管理者だけ。
func (u *ItemUsecase) Browse(ctx context.Context, id *model.Identity, in BrowseInput) ([]model.Item, error) {
	if err := authz.Authorize(id, authz.CatalogBrowse); err != nil {
		return nil, gateError(err)
	}
	if in.Limit < 0 || in.Limit > 100 || in.Offset < 0 {
		return nil, failWith(ErrInvalidInput, "invalid paging")
	}
	if len(in.Q) > 100 {
		return nil, failWith(ErrInvalidInput, "q too long")
	}

	items, err := u.items.List(ctx, repo.ItemListQuery{
		Category:    strings.TrimSpace(in.Category),
		Q:           strings.TrimSpace(in.Q),
		IncludeSold: in.IncludeSold && authz.Capabilities(id).Has(authz.CatalogReadAll),
		Limit:       in.Limit,
		Offset:      in.Offset,
	})
	if err != nil {
		return nil, dbError(ctx, "items.browse", err)
	}
	return items, nil
}

func (u *ItemUsecase) Get(ctx context.Context, id *model.Identity, itemID string) (model.Item, error) {
	if err := authz.Authorize(id, authz.CatalogBrowse); err != nil {
		return model.Item{}, gateError(err)
	}
	it, err := u.items.FindByID(ctx, itemID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Item{}, failWith(ErrNotFound, "not found")
	}
	if err != nil {
		return model.Item{}, dbError(ctx, "items.get", err)
	}
	return it, nil
}

func (u *ItemUsecase) ListMine(ctx context.Context, id *model.Identity) ([]model.Item, error) {
	if err := authz.Authorize(id, authz.ListingsManage); err != nil {
		return nil, gateError(err)
	}
	items, err := u.items.List(ctx, repo.ItemListQuery{SellerID: id.UserID, IncludeSold: true, Limit: 100})
	if err != nil {
		return nil, dbError(ctx, "items.mine", err)
	}
	return items, nil
}

func (u *ItemUsecase) Create(ctx context.Context, id *model.Identity, in ItemInput) (model.Item, error) {
	if err := authz.Authorize(id, authz.ListingsManage); err != nil {
		return model.Item{}, gateError(err)
	}
	if err := in.validate(); err != nil {
		return model.Item{}, err
	}

	sellerName := ""
	user, err := u.users.FindByID(ctx, id.UserID)
	if err == nil {
		sellerName = user.Name
	} else if !errors.Is(err, repo.ErrNotFound) {
		return model.Item{}, dbError(ctx, "items.create", err)
	}

	now := u.clock.Now()
	it, err := u.items.Create(ctx, model.Item{
		ID:          u.ids.NewID(),
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		Image:       strings.TrimSpace(in.Image),
		Category:    strings.TrimSpace(in.Category),
		Condition:   in.Condition,
		Description: strings.TrimSpace(in.Description),
		SellerID:    id.UserID,
		SellerEmail: id.Email,
		SellerName:  sellerName,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Item{}, dbError(ctx, "items.create", err)
	}
	return it, nil
}

// Update は売却前の自分の出品だけ編集できる
func (u *ItemUsecase) Update(ctx context.Context, id *model.Identity, itemID string, in ItemInput) (model.Item, error) {
	if err := authz.Authorize(id, authz.ListingsManage); err != nil {
		return model.Item{}, gateError(err)
	}
	if err := in.validate(); err != nil {
		return model.Item{}, err
	}

	it, err := u.items.FindByID(ctx, itemID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Item{}, failWith(ErrNotFound, "not found")
	}
	if err != nil {
		return model.Item{}, dbError(ctx, "items.update", err)
	}
	if err := authz.Authorize(id, authz.ListingsManage, it.SellerID); err != nil {
		return model.Item{}, gateError(err)
	}
	if it.Sold {
		return model.Item{}, failWith(ErrItemUnavailable, "sold items cannot be edited")
	}

	it.Name = strings.TrimSpace(in.Name)
	it.Price = in.Price
	it.Image = strings.TrimSpace(in.Image)
	it.Category = strings.TrimSpace(in.Category)
	it.Condition = in.Condition
	it.Description = strings.TrimSpace(in.Description)
	it.UpdatedAt = u.clock.Now()

	ok, err := u.items.Update(ctx, it)
	if err != nil {
		return model.Item{}, dbError(ctx, "items.update", err)
	}
	if !ok {
		return model.Item{}, failWith(ErrItemUnavailable, "sold items cannot be edited")
	}
	return it, nil
}

// Delete は論理削除。カートからは次の読み込みで消える。
func (u *ItemUsecase) Delete(ctx context.Context, id *model.Identity, itemID string) error {
	if err := authz.Authorize(id, authz.ListingsManage); err != nil {
		return gateError(err)
	}

	now := u.clock.Now()
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		it, err := r.Items().FindByID(ctx, itemID)
		if errors.Is(err, repo.ErrNotFound) {
			return failWith(ErrNotFound, "not found")
		}
		if err != nil {
			return err
		}
		if err := authz.Authorize(id, authz.ListingsManage, it.SellerID); err != nil {
			return gateError(err)
		}

		if err := r.Items().SoftDelete(ctx, it.ID, now); err != nil {
			return err
		}

		before, _ := json.Marshal(map[string]any{"name": it.Name, "sold": it.Sold})
		after, _ := json.Marshal(map[string]any{"deleted": true, "sold": true})
		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  id.UserID,
			Action:       model.AuditActionDeleteItem,
			ResourceType: model.AuditResourceItem,
			ResourceID:   it.ID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    now,
		})
	})
	if err != nil {
		return passOrDB(ctx, "items.delete", err)
	}
	return nil
}
