package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/qstina/relove-website/internal/domain/model"
	repo "github.com/qstina/relove-website/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

// 使わないrepoはnilのまま
type TxReposMock struct {
	users        repo.UserRepository
	carts        repo.CartRepository
	sessions     repo.CheckoutSessionRepository
	orders       repo.OrderRepository
	orderItems   repo.OrderItemRepository
	applications repo.SellerApplicationRepository
	auditLogs    repo.AuditLogRepository
	outbox       repo.OutboxRepository
}

func (r *TxReposMock) Users() repo.UserRepository                     { return r.users }
func (r *TxReposMock) Items() repo.ItemRepository                     { return nil }
func (r *TxReposMock) Carts() repo.CartRepository                     { return r.carts }
func (r *TxReposMock) Sessions() repo.CheckoutSessionRepository       { return r.sessions }
func (r *TxReposMock) Orders() repo.OrderRepository                   { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository           { return r.orderItems }
func (r *TxReposMock) Applications() repo.SellerApplicationRepository { return r.applications }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository             { return r.auditLogs }
func (r *TxReposMock) Outbox() repo.OutboxRepository                  { return r.outbox }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct {
	mock.Mock
	repo.OrderRepository
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID string, t repo.OrderTransition) (bool, error) {
	args := m.Called(ctx, orderID, t)
	return args.Bool(0), args.Error(1)
}

type OrderItemRepoMock struct {
	mock.Mock
	repo.OrderItemRepository
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type CartRepoMock struct {
	mock.Mock
	repo.CartRepository
}

func (m *CartRepoMock) ClearEntries(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *CartRepoMock) ClearSelection(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *CartRepoMock) ListEntries(ctx context.Context, userID string) ([]model.CartEntry, error) {
	args := m.Called(ctx, userID)
	e, _ := args.Get(0).([]model.CartEntry)
	return e, args.Error(1)
}

type SessionRepoMock struct {
	mock.Mock
	repo.CheckoutSessionRepository
}

func (m *SessionRepoMock) AbandonOpen(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *SessionRepoMock) Create(ctx context.Context, s model.CheckoutSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type AuditRepoMock struct {
	mock.Mock
	repo.AuditLogRepository
}

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

type OutboxRepoMock struct {
	mock.Mock
}

func (m *OutboxRepoMock) Insert(ctx context.Context, eventID, topic, key string, payload any) error {
	args := m.Called(ctx, eventID, topic, key, payload)
	return args.Error(0)
}

func (m *OutboxRepoMock) FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	panic("not used in usecase tests")
}

func (m *OutboxRepoMock) MarkSent(ctx context.Context, id int64, at time.Time) error {
	panic("not used in usecase tests")
}

type UserRepoMock struct {
	mock.Mock
	repo.UserRepository
}

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type AppRepoMock struct {
	mock.Mock
	repo.SellerApplicationRepository
}

func (m *AppRepoMock) Create(ctx context.Context, app model.SellerApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *AppRepoMock) ListByUserID(ctx context.Context, userID string) ([]model.SellerApplication, error) {
	args := m.Called(ctx, userID)
	a, _ := args.Get(0).([]model.SellerApplication)
	return a, args.Error(1)
}

func (m *AppRepoMock) FindByID(ctx context.Context, id string) (model.SellerApplication, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(model.SellerApplication)
	return a, args.Error(1)
}

func (m *AppRepoMock) Decide(ctx context.Context, id string, to model.ApplicationStatus, adminID string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, to, adminID, at)
	return args.Bool(0), args.Error(1)
}

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
