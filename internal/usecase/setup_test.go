package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/qstina/relove-website/internal/domain/model"
	"github.com/qstina/relove-website/internal/infra/db"
	infra "github.com/qstina/relove-website/internal/infra/repository"
	repo "github.com/qstina/relove-website/internal/repository"
	"github.com/qstina/relove-website/internal/usecase"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	buyer = &model.Identity{UserID: "buyer-1", Email: "amy@test.com", Role: model.RoleBuyer}
	other = &model.Identity{UserID: "buyer-2", Email: "ben@test.com", Role: model.RoleBuyer}
	// 出品者も買える
	seller = &model.Identity{UserID: "seller-1", Email: "sam@test.com", Role: model.RoleSeller}
	rival  = &model.Identity{UserID: "seller-2", Email: "rio@test.com", Role: model.RoleSeller}
	admin  = &model.Identity{UserID: "admin-1", Email: "admin@test.com", Role: model.RoleAdmin}
	guest  = &model.Identity{UserID: "anon-1", Anonymous: true}
)

type seqIDs struct{ n atomic.Int64 }

func (s *seqIDs) NewID() string { return fmt.Sprintf("id-%04d", s.n.Add(1)) }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// sqlite上に全usecaseを組み立てたもの
type world struct {
	db          *gorm.DB
	repos       repo.TxRepos
	tx          repo.TransactionManager
	ids         *seqIDs
	cart        *usecase.CartUsecase
	checkout    *usecase.CheckoutUsecase
	orders      *usecase.OrderUsecase
	fulfillment *usecase.FulfillmentUsecase
	apps        *usecase.SellerApplicationUsecase
	items       *usecase.ItemUsecase
	users       *usecase.UserUsecase
}

func newWorld(t *testing.T) *world {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	// :memory: は接続ごとに別DBになるので1本に固定
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb))

	r := infra.NewRepos(gdb)
	tx := infra.NewTxManagerGorm(gdb)
	ids := &seqIDs{}
	clock := fixedClock{t: testNow}

	cart := usecase.NewCartUsecase(tx, r.Carts(), r.Items(), clock)
	w := &world{
		db:          gdb,
		repos:       r,
		tx:          tx,
		ids:         ids,
		cart:        cart,
		checkout:    usecase.NewCheckoutUsecase(tx, cart, r.Sessions(), r.Users(), ids, clock, nil),
		orders:      usecase.NewOrderUsecase(tx),
		fulfillment: usecase.NewFulfillmentUsecase(tx, ids, clock, nil),
		apps:        usecase.NewSellerApplicationUsecase(tx, r.Applications(), ids, clock, nil),
		items:       usecase.NewItemUsecase(tx, r.Items(), r.Users(), ids, clock),
		users:       usecase.NewUserUsecase(r.Users()),
	}

	for _, id := range []*model.Identity{buyer, other, seller, rival, admin} {
		w.seedUser(t, id)
	}
	return w
}

func (w *world) seedUser(t *testing.T, id *model.Identity) {
	t.Helper()
	require.NoError(t, w.repos.Users().Create(context.Background(), &model.User{
		ID:           id.UserID,
		Email:        id.Email,
		PasswordHash: "x",
		Role:         id.Role,
		Name:         strings.Split(id.Email, "@")[0],
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}))
}

// sellerの出品を1点作る
func (w *world) list(t *testing.T, owner *model.Identity, itemID, name, price string) model.Item {
	t.Helper()
	it, err := w.repos.Items().Create(context.Background(), model.Item{
		ID:          itemID,
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Image:       "img/" + itemID + ".png",
		Category:    "furniture",
		Condition:   7,
		Description: name + " for sale",
		SellerID:    owner.UserID,
		SellerEmail: owner.Email,
	})
	require.NoError(t, err)
	return it
}

// カートに入れて選択し、購入手続きを開く
func (w *world) stage(t *testing.T, who *model.Identity, itemIDs ...string) usecase.CheckoutView {
	t.Helper()
	ctx := context.Background()
	for _, id := range itemIDs {
		_, err := w.cart.Add(ctx, who, id)
		require.NoError(t, err)
	}
	_, err := w.cart.Select(ctx, who, itemIDs)
	require.NoError(t, err)

	view, err := w.checkout.Begin(ctx, who)
	require.NoError(t, err)
	return view
}

func cashForm() usecase.CommitForm {
	return usecase.CommitForm{
		Address:        "12 Jalan Ampang, Kuala Lumpur",
		ShippingMethod: "standard",
		PaymentMethod:  "Cash on Delivery",
	}
}

func assertKind(t *testing.T, err error, kind error) {
	t.Helper()
	if assert.Error(t, err) {
		assert.ErrorIs(t, err, kind, "err=%v", err)
	}
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "err=%v", err) {
		assert.Equal(t, status, he.Status)
	}
}

func decimalOf(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
