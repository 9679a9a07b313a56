package repository

import (
	"context"

	repo "github.com/qstina/relove-website/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	users        repo.UserRepository
	items        repo.ItemRepository
	carts        repo.CartRepository
	sessions     repo.CheckoutSessionRepository
	orders       repo.OrderRepository
	orderItems   repo.OrderItemRepository
	applications repo.SellerApplicationRepository
	auditLogs    repo.AuditLogRepository
	outbox       repo.OutboxRepository
}

func (r *txReposGorm) Users() repo.UserRepository                     { return r.users }
func (r *txReposGorm) Items() repo.ItemRepository                     { return r.items }
func (r *txReposGorm) Carts() repo.CartRepository                     { return r.carts }
func (r *txReposGorm) Sessions() repo.CheckoutSessionRepository       { return r.sessions }
func (r *txReposGorm) Orders() repo.OrderRepository                   { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository           { return r.orderItems }
func (r *txReposGorm) Applications() repo.SellerApplicationRepository { return r.applications }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository             { return r.auditLogs }
func (r *txReposGorm) Outbox() repo.OutboxRepository                  { return r.outbox }

// db を持つ repo 一式。tx の中でも外でも同じ形で使う
func NewRepos(db *gorm.DB) repo.TxRepos {
	return &txReposGorm{
		users:        NewUserGormRepository(db),
		items:        NewItemGormRepository(db),
		carts:        NewCartGormRepository(db),
		sessions:     NewCheckoutSessionGormRepository(db),
		orders:       NewOrderGormRepository(db),
		orderItems:   NewOrderItemGormRepository(db),
		applications: NewSellerApplicationGormRepository(db),
		auditLogs:    NewAuditLogGormRepository(db),
		outbox:       NewOutboxGormRepository(db),
	}
}

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		return fn(NewRepos(tx))
	})
}
