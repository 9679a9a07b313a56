package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/qstina/relove-website/internal/domain/authz"
	"github.com/qstina/relove-website/internal/domain/model"
	repo "github.com/qstina/relove-website/internal/repository"
)

// 注文の参照系（購入者・出品者・管理者）
type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type OrderView struct {
	model.Order
	Items []model.OrderItem `json:"items"`
}

func (u *OrderUsecase) ListForBuyer(ctx context.Context, id *model.Identity) ([]OrderView, error) {
	if err := authz.Authorize(id, authz.OrdersReadOwn); err != nil {
		return nil, gateError(err)
	}

	var outs []OrderView
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByBuyerEmail(ctx, id.Email)
		if err != nil {
			return err
		}
		outs, err = withItems(ctx, r, orders, "")
		return err
	})
	if err != nil {
		return nil, passOrDB(ctx, "orders.buyer", err)
	}
	return outs, nil
}

// Get は購入者本人か、全件参照できる管理者だけが読める。
// 他人の注文は存在しない扱いにする。
func (u *OrderUsecase) Get(ctx context.Context, id *model.Identity, orderID string) (OrderView, error) {
	readAll := authz.Capabilities(id).Has(authz.OrdersReadAll)
	if !readAll {
		if err := authz.Authorize(id, authz.OrdersReadOwn); err != nil {
			return OrderView{}, gateError(err)
		}
	}

	var out OrderView
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return failWith(ErrNotFound, "not found")
		}
		if err != nil {
			return err
		}
		if !readAll && !strings.EqualFold(o.Email, id.Email) {
			return failWith(ErrNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return err
		}
		out = OrderView{Order: o, Items: items}
		return nil
	})
	if err != nil {
		return OrderView{}, passOrDB(ctx, "orders.get", err)
	}
	return out, nil
}

// ListForSeller は自分の明細を含む注文だけを、自分の明細に絞って返す
func (u *OrderUsecase) ListForSeller(ctx context.Context, id *model.Identity) ([]OrderView, error) {
	if err := authz.Authorize(id, authz.OrdersFulfill); err != nil {
		return nil, gateError(err)
	}

	var outs []OrderView
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListBySellerEmail(ctx, id.Email)
		if err != nil {
			return err
		}
		outs, err = withItems(ctx, r, orders, id.Email)
		return err
	})
	if err != nil {
		return nil, passOrDB(ctx, "orders.seller", err)
	}
	return outs, nil
}

func (u *OrderUsecase) ListAll(ctx context.Context, id *model.Identity, f repo.OrderListFilter) ([]OrderView, error) {
	if err := authz.Authorize(id, authz.OrdersReadAll); err != nil {
		return nil, gateError(err)
	}
	if f.Limit < 0 || f.Limit > 100 || f.Offset < 0 {
		return nil, failWith(ErrInvalidInput, "invalid paging")
	}

	var outs []OrderView
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListAll(ctx, f)
		if err != nil {
			return err
		}
		outs, err = withItems(ctx, r, orders, "")
		return err
	})
	if err != nil {
		return nil, passOrDB(ctx, "orders.all", err)
	}
	return outs, nil
}

// sellerEmailを渡すとその出品者の明細だけ残す
func withItems(ctx context.Context, r repo.TxRepos, orders []model.Order, sellerEmail string) ([]OrderView, error) {
	outs := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		if sellerEmail != "" {
			mine := make([]model.OrderItem, 0, len(items))
			for _, it := range items {
				if strings.EqualFold(it.SellerEmail, sellerEmail) {
					mine = append(mine, it)
				}
			}
			items = mine
		}
		outs = append(outs, OrderView{Order: o, Items: items})
	}
	return outs, nil
}
