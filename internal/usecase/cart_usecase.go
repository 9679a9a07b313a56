package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/qstina/relove-website/internal/domain/authz"
	"github.com/qstina/relove-website/internal/domain/model"
	"github.com/qstina/relove-website/internal/logging"
	repo "github.com/qstina/relove-website/internal/repository"

	"github.com/shopspring/decimal"
)

// 全消去の再試行回数
const clearAttempts = 3

// CartUsecase は /cart の業務ロジックです。
type CartUsecase struct {
	tx    repo.TransactionManager
	carts repo.CartRepository
	items repo.ItemRepository
	clock Clock
}

func NewCartUsecase(tx repo.TransactionManager, carts repo.CartRepository, items repo.ItemRepository, clock Clock) *CartUsecase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &CartUsecase{tx: tx, carts: carts, items: items, clock: clock}
}

type CartLine struct {
	ItemID   string          `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Selected bool            `json:"selected"`
}

type CartView struct {
	Items         []CartLine      `json:"items"`
	SelectedTotal decimal.Decimal `json:"selected_total"`
}

// Selected は選択済みの行だけ返す
func (v CartView) Selected() []CartLine {
	out := make([]CartLine, 0, len(v.Items))
	for _, l := range v.Items {
		if l.Selected {
			out = append(out, l)
		}
	}
	return out
}

func emptyCart() CartView {
	return CartView{Items: []CartLine{}, SelectedTotal: decimal.Zero}
}

// Reconcile はカートを読み、売れた・消えた商品の行を削除してから返す。
func (u *CartUsecase) Reconcile(ctx context.Context, id *model.Identity) (CartView, error) {
	if err := authz.Authorize(id, authz.CartReconcile); err != nil {
		return CartView{}, gateError(err)
	}
	// 匿名は行を持たない
	if !id.HasEmail() {
		return emptyCart(), nil
	}

	entries, err := u.carts.ListEntries(ctx, id.UserID)
	if err != nil {
		return CartView{}, dbError(ctx, "cart.list", err)
	}
	if len(entries) == 0 {
		return emptyCart(), nil
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ItemID)
	}
	items, err := u.items.FindByIDs(ctx, ids)
	if err != nil {
		return CartView{}, dbError(ctx, "cart.items", err)
	}
	live := make(map[string]bool, len(items))
	for _, it := range items {
		if it.Available() {
			live[it.ID] = true
		}
	}

	kept := make([]model.CartEntry, 0, len(entries))
	var stale []string
	for _, e := range entries {
		if live[e.ItemID] {
			kept = append(kept, e)
			continue
		}
		stale = append(stale, e.ItemID)
	}

	if len(stale) > 0 {
		if err := u.carts.RemoveEntries(ctx, id.UserID, stale); err != nil {
			return CartView{}, dbError(ctx, "cart.reconcile", err)
		}
		if err := u.carts.Unselect(ctx, id.UserID, stale); err != nil {
			return CartView{}, dbError(ctx, "cart.reconcile", err)
		}
		logging.FromContext(ctx).Info("cart reconciled", "user_id", id.UserID, "removed", len(stale))
	}

	selected, err := u.carts.ListSelection(ctx, id.UserID)
	if err != nil {
		return CartView{}, dbError(ctx, "cart.selection", err)
	}
	return buildCartView(kept, selected), nil
}

func buildCartView(entries []model.CartEntry, selected []string) CartView {
	sel := make(map[string]bool, len(selected))
	for _, s := range selected {
		sel[s] = true
	}

	view := emptyCart()
	for _, e := range entries {
		line := CartLine{
			ItemID:   e.ItemID,
			Name:     e.Name,
			Price:    e.Price,
			Image:    e.Image,
			Selected: sel[e.ItemID],
		}
		if line.Selected {
			view.SelectedTotal = view.SelectedTotal.Add(e.Price)
		}
		view.Items = append(view.Items, line)
	}
	return view
}

// Add はカートに追加する。既にあれば何もしない。
func (u *CartUsecase) Add(ctx context.Context, id *model.Identity, itemID string) (CartView, error) {
	if err := authz.Authorize(id, authz.CartManage); err != nil {
		return CartView{}, gateError(err)
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return CartView{}, failWith(ErrInvalidInput, "item_id required")
	}

	it, err := u.items.FindByID(ctx, itemID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartView{}, failWith(ErrItemUnavailable, "item is no longer available")
	}
	if err != nil {
		return CartView{}, dbError(ctx, "cart.add", err)
	}
	if !it.Available() {
		return CartView{}, failWith(ErrItemUnavailable, "item is no longer available")
	}

	//自分の出品は買えない
	if it.SellerID == id.UserID || strings.EqualFold(it.SellerEmail, id.Email) {
		return CartView{}, failWith(ErrForbidden, "cannot add your own listing")
	}

	if _, err := u.carts.AddIfAbsent(ctx, model.CartEntry{
		UserID:    id.UserID,
		ItemID:    it.ID,
		Name:      it.Name,
		Price:     it.Price,
		Image:     it.Image,
		CreatedAt: u.clock.Now(),
	}); err != nil {
		return CartView{}, dbError(ctx, "cart.add", err)
	}

	return u.Reconcile(ctx, id)
}

// Remove は無い行を指定してもエラーにしない
func (u *CartUsecase) Remove(ctx context.Context, id *model.Identity, itemID string) (CartView, error) {
	if err := authz.Authorize(id, authz.CartManage); err != nil {
		return CartView{}, gateError(err)
	}
	ids := []string{strings.TrimSpace(itemID)}

	if err := u.carts.RemoveEntries(ctx, id.UserID, ids); err != nil {
		return CartView{}, dbError(ctx, "cart.remove", err)
	}
	if err := u.carts.Unselect(ctx, id.UserID, ids); err != nil {
		return CartView{}, dbError(ctx, "cart.remove", err)
	}
	return u.Reconcile(ctx, id)
}

func (u *CartUsecase) Clear(ctx context.Context, id *model.Identity) error {
	if err := authz.Authorize(id, authz.CartManage); err != nil {
		return gateError(err)
	}
	return u.clearAll(ctx, id.UserID)
}

// 行と選択を消し、空になったことを確認できるまで繰り返す
func (u *CartUsecase) clearAll(ctx context.Context, userID string) error {
	log := logging.FromContext(ctx)

	for attempt := 1; attempt <= clearAttempts; attempt++ {
		var left int
		err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			if err := r.Carts().ClearEntries(ctx, userID); err != nil {
				return err
			}
			if err := r.Carts().ClearSelection(ctx, userID); err != nil {
				return err
			}
			rest, err := r.Carts().ListEntries(ctx, userID)
			if err != nil {
				return err
			}
			left = len(rest)
			return nil
		})
		if err == nil && left == 0 {
			return nil
		}
		log.Warn("cart clear incomplete", "user_id", userID, "attempt", attempt, "left", left, "err", err)
	}
	return failWith(ErrPartialClearFailure, "failed to clear cart")
}

// Select は選択を置き換える。カートに無いIDは無視する。
func (u *CartUsecase) Select(ctx context.Context, id *model.Identity, itemIDs []string) (CartView, error) {
	if err := authz.Authorize(id, authz.CartManage); err != nil {
		return CartView{}, gateError(err)
	}

	entries, err := u.carts.ListEntries(ctx, id.UserID)
	if err != nil {
		return CartView{}, dbError(ctx, "cart.select", err)
	}
	inCart := make(map[string]bool, len(entries))
	for _, e := range entries {
		inCart[e.ItemID] = true
	}

	picked := make([]string, 0, len(itemIDs))
	seen := map[string]bool{}
	for _, raw := range itemIDs {
		itemID := strings.TrimSpace(raw)
		if !inCart[itemID] || seen[itemID] {
			continue
		}
		seen[itemID] = true
		picked = append(picked, itemID)
	}

	if err := u.carts.ReplaceSelection(ctx, id.UserID, picked); err != nil {
		return CartView{}, dbError(ctx, "cart.select", err)
	}
	return u.Reconcile(ctx, id)
}

func (u *CartUsecase) SelectionFor(ctx context.Context, id *model.Identity) ([]string, error) {
	if err := authz.Authorize(id, authz.CartReconcile); err != nil {
		return nil, gateError(err)
	}
	if !id.HasEmail() {
		return []string{}, nil
	}
	ids, err := u.carts.ListSelection(ctx, id.UserID)
	if err != nil {
		return nil, dbError(ctx, "cart.selection", err)
	}
	return ids, nil
}

// OnSignedOut はサインアウト時にカートと選択を消す
func (u *CartUsecase) OnSignedOut(ctx context.Context, id *model.Identity) error {
	if !id.HasEmail() {
		return nil
	}
	return u.clearAll(ctx, id.UserID)
}

var _ IdentityObserver = (*CartUsecase)(nil)

