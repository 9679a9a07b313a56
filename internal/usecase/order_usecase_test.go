package usecase_test

import (
	"context"
	"testing"

	repo "github.com/qstina/relove-website/internal/repository"
	"github.com/qstina/relove-website/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2人の出品者の商品を1回で買う
func placeMixedOrder(t *testing.T, w *world) usecase.CommitResult {
	t.Helper()
	w.list(t, seller, "lamp", "Lamp", "25.00")
	w.list(t, rival, "chair", "Chair", "40.00")
	view := w.stage(t, buyer, "lamp", "chair")
	res, err := w.checkout.Commit(context.Background(), buyer, view.Session.ID, cashForm())
	require.NoError(t, err)
	return res
}

func TestOrders_ListForSeller_OnlyOwnLines(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	res := placeMixedOrder(t, w)
	require.Len(t, res.Order.Items, 2)
	assert.Equal(t, "65", res.Order.TotalAmount.String())

	mine, err := w.orders.ListForSeller(ctx, seller)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Len(t, mine[0].Items, 1)
	assert.Equal(t, "lamp", mine[0].Items[0].ItemID)

	theirs, err := w.orders.ListForSeller(ctx, rival)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	require.Len(t, theirs[0].Items, 1)
	assert.Equal(t, "chair", theirs[0].Items[0].ItemID)

	_, err = w.orders.ListForSeller(ctx, buyer)
	assertKind(t, err, usecase.ErrForbidden)
}

func TestOrders_BuyerReads(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	res := placeMixedOrder(t, w)

	list, err := w.orders.ListForBuyer(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Items, 2)

	got, err := w.orders.Get(ctx, buyer, res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Order.ID, got.ID)

	//他人の注文は見えない
	_, err = w.orders.Get(ctx, other, res.Order.ID)
	assertKind(t, err, usecase.ErrNotFound)

	none, err := w.orders.ListForBuyer(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, none)

	//管理者は全件
	got, err = w.orders.Get(ctx, admin, res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Order.ID, got.ID)
}

func TestOrders_ListAll_AdminOnly(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	placeMixedOrder(t, w)

	all, err := w.orders.ListAll(ctx, admin, repo.OrderListFilter{Status: "Processing"})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = w.orders.ListAll(ctx, buyer, repo.OrderListFilter{})
	assertKind(t, err, usecase.ErrForbidden)

	_, err = w.orders.ListAll(ctx, admin, repo.OrderListFilter{Limit: 500})
	assertKind(t, err, usecase.ErrInvalidInput)
}
