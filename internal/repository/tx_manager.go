package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Users() UserRepository
	Items() ItemRepository
	Carts() CartRepository
	Sessions() CheckoutSessionRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Applications() SellerApplicationRepository
	AuditLogs() AuditLogRepository
	Outbox() OutboxRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
