package server

import (
	"github.com/qstina/relove-website/internal/handler"
	infra "github.com/qstina/relove-website/internal/infra/repository"
	"github.com/qstina/relove-website/internal/repository"
	"github.com/qstina/relove-website/internal/usecase"
	"github.com/qstina/relove-website/internal/validator"

	"gorm.io/gorm"
)

// Deps はusecaseを組み立てるのに必要な部品
type Deps struct {
	DB      *gorm.DB
	Tokens  usecase.TokenIssuer
	Hasher  usecase.PasswordHasher
	Metrics usecase.Metrics
	IDs     usecase.IDGenerator
	Clock   usecase.Clock
}

// Wire はRepository -> Usecase -> Handler の順に生成する
func Wire(d Deps) (Handlers, repository.TxRepos) {
	r := infra.NewRepos(d.DB)
	tx := infra.NewTxManagerGorm(d.DB)

	cart := usecase.NewCartUsecase(tx, r.Carts(), r.Items(), d.Clock)
	checkout := usecase.NewCheckoutUsecase(tx, cart, r.Sessions(), r.Users(), d.IDs, d.Clock, d.Metrics)
	orders := usecase.NewOrderUsecase(tx)
	fulfillment := usecase.NewFulfillmentUsecase(tx, d.IDs, d.Clock, d.Metrics)
	apps := usecase.NewSellerApplicationUsecase(tx, r.Applications(), d.IDs, d.Clock, d.Metrics)
	items := usecase.NewItemUsecase(tx, r.Items(), r.Users(), d.IDs, d.Clock)
	users := usecase.NewUserUsecase(r.Users())
	audit := usecase.NewAuditUsecase(r.AuditLogs())

	auth := usecase.NewAuthUsecase(r.Users(), validator.NewAuthValidator(r.Users()), d.Hasher, d.Tokens, d.IDs, d.Clock)
	//ログアウトでカートを空にする
	auth.Subscribe(cart)

	return Handlers{
		Auth:         handler.NewAuthHandler(auth),
		Items:        handler.NewItemHandler(items),
		Cart:         handler.NewCartHandler(cart),
		Checkout:     handler.NewCheckoutHandler(checkout),
		Orders:       handler.NewOrderHandler(orders, fulfillment),
		Applications: handler.NewSellerApplicationHandler(apps),
		Users:        handler.NewUserHandler(users, orders, audit),
	}, r
}
