package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/qstina/relove-website/internal/domain/authz"
	"github.com/qstina/relove-website/internal/domain/model"
	"github.com/qstina/relove-website/internal/logging"
	repo "github.com/qstina/relove-website/internal/repository"

	"github.com/shopspring/decimal"
)

// checkoutの結果ラベル（metrics）
const (
	checkoutCommitted   = "committed"
	checkoutUnavailable = "item_unavailable"
	checkoutConflict    = "concurrent_modification"
	checkoutRejected    = "rejected"
	checkoutFailed      = "error"
)

const paymentComplete = "Payment Complete"

type CheckoutUsecase struct {
	tx       repo.TransactionManager
	cart     *CartUsecase
	sessions repo.CheckoutSessionRepository
	users    repo.UserRepository
	ids      IDGenerator
	clock    Clock
	metrics  Metrics
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	cart *CartUsecase,
	sessions repo.CheckoutSessionRepository,
	users repo.UserRepository,
	ids IDGenerator,
	clock Clock,
	metrics Metrics,
) *CheckoutUsecase {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &CheckoutUsecase{
		tx:       tx,
		cart:     cart,
		sessions: sessions,
		users:    users,
		ids:      ids,
		clock:    clock,
		metrics:  metrics,
	}
}

// 配送先の初期値（プロフィールから）
type ShippingPrefill struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	State    string `json:"state"`
}

type CheckoutView struct {
	Session model.CheckoutSession `json:"session"`
	Total   decimal.Decimal       `json:"total"`
	Prefill ShippingPrefill       `json:"prefill"`
}

// 購入確定フォーム
type CommitForm struct {
	Address        string
	ShippingMethod string
	PaymentMethod  string
	Bank           string
	CardNumber     string
	CardName       string
	CardExpiry     string
	CardCVV        string
}

type PaymentReceipt struct {
	PaymentID     string          `json:"payment_id"`
	TransactionID string          `json:"transaction_id"`
	PaymentDate   time.Time       `json:"payment_date"`
	TotalPayment  decimal.Decimal `json:"total_payment"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
}

type CommitResult struct {
	Order   OrderView      `json:"order"`
	Receipt PaymentReceipt `json:"receipt"`
}

// Begin は選択中のカート行を固定して購入手続きを開く。
// 既に開いている手続きは破棄する。
func (u *CheckoutUsecase) Begin(ctx context.Context, id *model.Identity) (CheckoutView, error) {
	if err := authz.Authorize(id, authz.CheckoutPlace); err != nil {
		return CheckoutView{}, gateError(err)
	}

	view, err := u.cart.Reconcile(ctx, id)
	if err != nil {
		return CheckoutView{}, err
	}
	picked := view.Selected()
	if len(picked) == 0 {
		return CheckoutView{}, failWith(ErrEmptySelection, "no items selected")
	}

	lines := make(model.CheckoutLines, 0, len(picked))
	for _, l := range picked {
		lines = append(lines, model.CheckoutLine{ItemID: l.ItemID, Name: l.Name, Price: l.Price, Image: l.Image})
	}

	now := u.clock.Now()
	session := model.CheckoutSession{
		ID:        u.ids.NewID(),
		UserID:    id.UserID,
		Status:    model.CheckoutSessionOpen,
		Lines:     lines,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Sessions().AbandonOpen(ctx, id.UserID); err != nil {
			return err
		}
		//並行した Begin が先に open を作っていたら一意インデックスで負ける
		err := r.Sessions().Create(ctx, session)
		if errors.Is(err, repo.ErrDuplicate) {
			return failWith(ErrConcurrentModification, "checkout was started elsewhere, refresh and retry")
		}
		return err
	})
	if err != nil {
		return CheckoutView{}, passOrDB(ctx, "checkout.begin", err)
	}

	prefill := ShippingPrefill{}
	user, err := u.users.FindByID(ctx, id.UserID)
	switch {
	case err == nil:
		prefill = ShippingPrefill{
			Name:     user.Name,
			Phone:    user.Phone,
			Address:  user.Address,
			City:     user.City,
			Postcode: user.Postcode,
			State:    user.State,
		}
	case !errors.Is(err, repo.ErrNotFound):
		return CheckoutView{}, dbError(ctx, "checkout.prefill", err)
	}

	return CheckoutView{Session: session, Total: lines.Total(), Prefill: prefill}, nil
}

type validForm struct {
	address  string
	shipping model.ShippingMethod
	payment  model.PaymentMethod
	bank     string
	last4    string
}

func validateCommitForm(f CommitForm) (validForm, error) {
	out := validForm{
		address:  strings.TrimSpace(f.Address),
		shipping: model.ShippingMethod(strings.TrimSpace(f.ShippingMethod)),
		payment:  model.PaymentMethod(strings.TrimSpace(f.PaymentMethod)),
	}
	if out.address == "" {
		return validForm{}, failWith(ErrMissingRequiredField, "address required")
	}
	if out.shipping == "" {
		return validForm{}, failWith(ErrMissingRequiredField, "shipping method required")
	}
	if !out.shipping.Valid() {
		return validForm{}, failWith(ErrInvalidInput, "invalid shipping method")
	}
	if out.payment == "" {
		return validForm{}, failWith(ErrMissingRequiredField, "payment method required")
	}
	if !out.payment.Valid() {
		return validForm{}, failWith(ErrInvalidInput, "invalid payment method")
	}

	switch out.payment {
	case model.PaymentOnlineBanking:
		out.bank = strings.ToLower(strings.TrimSpace(f.Bank))
		if out.bank == "" {
			return validForm{}, failWith(ErrMissingRequiredField, "bank required")
		}
		if !model.ValidBank(out.bank) {
			return validForm{}, failWith(ErrInvalidInput, "invalid bank")
		}
	case model.PaymentCard:
		number := strings.Map(func(r rune) rune {
			if r == ' ' || r == '-' {
				return -1
			}
			return r
		}, f.CardNumber)
		if number == "" || strings.TrimSpace(f.CardName) == "" ||
			strings.TrimSpace(f.CardExpiry) == "" || strings.TrimSpace(f.CardCVV) == "" {
			return validForm{}, failWith(ErrMissingRequiredField, "card details required")
		}
		if len(number) < 12 || len(number) > 19 || strings.IndexFunc(number, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
			return validForm{}, failWith(ErrInvalidInput, "invalid card number")
		}
		//カード番号は下4桁だけ保存する
		out.last4 = number[len(number)-4:]
	}
	return out, nil
}

// Commit は1トランザクションで注文を作り、商品を売却済みにする。
// 途中で1点でも失敗したら何も残さない。
func (u *CheckoutUsecase) Commit(ctx context.Context, id *model.Identity, sessionID string, form CommitForm) (CommitResult, error) {
	if err := authz.Authorize(id, authz.CheckoutPlace); err != nil {
		return CommitResult{}, gateError(err)
	}
	f, err := validateCommitForm(form)
	if err != nil {
		return CommitResult{}, err
	}

	now := u.clock.Now()
	orderID := u.ids.NewID()
	var out OrderView

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := r.Sessions().FindByID(ctx, sessionID)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && s.UserID != id.UserID) {
			return failWith(ErrNotFound, "checkout session not found")
		}
		if err != nil {
			return err
		}
		if s.Status != model.CheckoutSessionOpen {
			return failWith(ErrInvalidTransition, "checkout session is already closed")
		}
		if len(s.Lines) == 0 {
			return failWith(ErrEmptySelection, "no items selected")
		}

		//価格は手続き開始時に見せた値。出品者と売却状態だけ最新の商品から取り直す
		itemIDs := s.Lines.ItemIDs()
		items, err := r.Items().FindByIDs(ctx, itemIDs)
		if err != nil {
			return err
		}
		byID := make(map[string]model.Item, len(items))
		for _, it := range items {
			byID[it.ID] = it
		}

		lines := make([]model.OrderItem, 0, len(s.Lines))
		total := decimal.Zero
		for i, l := range s.Lines {
			it, ok := byID[l.ItemID]
			if !ok || !it.Available() {
				return failWith(ErrItemUnavailable, fmt.Sprintf("%s is no longer available", l.Name))
			}
			lines = append(lines, model.OrderItem{
				ID:          u.ids.NewID(),
				ItemID:      it.ID,
				Name:        l.Name,
				Price:       l.Price,
				Image:       l.Image,
				SellerID:    it.SellerID,
				SellerEmail: it.SellerEmail,
				Position:    i,
				CreatedAt:   now,
			})
			total = total.Add(l.Price)
		}

		order := model.Order{
			ID:             orderID,
			UserID:         id.UserID,
			Email:          id.Email,
			TotalAmount:    total,
			Address:        f.address,
			ShippingMethod: f.shipping,
			PaymentMethod:  f.payment,
			Bank:           f.bank,
			CardLast4:      f.last4,
			Status:         model.OrderStatusProcessing,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := r.Orders().Create(ctx, order); err != nil {
			return err
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, lines); err != nil {
			return err
		}

		//sold=false のときだけ更新できる。負けたら全体を戻す
		for _, l := range lines {
			ok, err := r.Items().MarkSold(ctx, l.ItemID, orderID)
			if err != nil {
				return err
			}
			if !ok {
				return failWith(ErrConcurrentModification, "item was just sold, refresh and retry")
			}
		}

		if err := r.Carts().RemoveEntries(ctx, id.UserID, itemIDs); err != nil {
			return err
		}
		if err := r.Carts().ClearSelection(ctx, id.UserID); err != nil {
			return err
		}

		closed, err := r.Sessions().Close(ctx, s.ID, model.CheckoutSessionCommitted, &orderID)
		if err != nil {
			return err
		}
		if !closed {
			return failWith(ErrConcurrentModification, "checkout session changed, refresh and retry")
		}

		eventID := u.ids.NewID()
		if err := r.Outbox().Insert(ctx, eventID, model.TopicOrders, orderID, model.EventEnvelope{
			EventID:    eventID,
			Type:       model.EventOrderPlaced,
			OccurredAt: now,
			Data: map[string]any{
				"order_id":     orderID,
				"buyer_email":  id.Email,
				"total_amount": total.StringFixed(2),
				"item_ids":     itemIDs,
			},
		}); err != nil {
			return err
		}

		out = OrderView{Order: order, Items: lines}
		return nil
	})
	if err != nil {
		u.metrics.CheckoutResult(checkoutResultOf(err))
		return CommitResult{}, passOrDB(ctx, "checkout.commit", err)
	}

	u.metrics.CheckoutResult(checkoutCommitted)
	logging.FromContext(ctx).Info("order placed", "order_id", orderID, "user_id", id.UserID, "items", len(out.Items))

	return CommitResult{
		Order: out,
		Receipt: PaymentReceipt{
			PaymentID:     u.ids.NewID(),
			TransactionID: fmt.Sprintf("TXN-%d", now.UnixMilli()),
			PaymentDate:   now,
			TotalPayment:  out.TotalAmount,
			PaymentMethod: string(f.payment),
			PaymentStatus: paymentComplete,
		},
	}, nil
}

func checkoutResultOf(err error) string {
	switch {
	case errors.Is(err, ErrItemUnavailable):
		return checkoutUnavailable
	case errors.Is(err, ErrConcurrentModification):
		return checkoutConflict
	}
	if _, ok := AsHTTPError(err); ok {
		return checkoutRejected
	}
	return checkoutFailed
}

// Abandon は手続きを破棄して選択も消す
func (u *CheckoutUsecase) Abandon(ctx context.Context, id *model.Identity, sessionID string) error {
	if err := authz.Authorize(id, authz.CheckoutPlace); err != nil {
		return gateError(err)
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := r.Sessions().FindByID(ctx, sessionID)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && s.UserID != id.UserID) {
			return failWith(ErrNotFound, "checkout session not found")
		}
		if err != nil {
			return err
		}

		closed, err := r.Sessions().Close(ctx, s.ID, model.CheckoutSessionAbandoned, nil)
		if err != nil {
			return err
		}
		if !closed {
			return failWith(ErrInvalidTransition, "checkout session is already closed")
		}
		return r.Carts().ClearSelection(ctx, id.UserID)
	})
	if err != nil {
		return passOrDB(ctx, "checkout.abandon", err)
	}
	return nil
}
