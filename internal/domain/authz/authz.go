// Package authz は「誰が何をしてよいか」を1か所で決める。
// 画面やハンドラ側でroleを見て分岐せず、必ずここを通す。
package authz

import (
	"errors"
	"strings"

	"github.com/qstina/relove-website/internal/domain/model"
)

var (
	// 呼び出し元が存在しない
	ErrUnauthenticated = errors.New("unauthenticated")
	// 匿名セッションで書き込みしようとした
	ErrLoginRequired = errors.New("login required")
	// roleまたは所有者が合わない
	ErrForbidden = errors.New("forbidden")
)

type Capability string

const (
	CatalogBrowse  Capability = "catalog:browse"
	CatalogReadAll Capability = "catalog:read-all"

	CartReconcile Capability = "cart:reconcile"
	CartManage    Capability = "cart:manage"

	CheckoutPlace Capability = "checkout:place"

	OrdersReadOwn Capability = "orders:read-own"
	OrdersFulfill Capability = "orders:fulfill"
	OrdersReadAll Capability = "orders:read-all"

	ListingsManage Capability = "listings:manage"

	ApplicationsSubmit Capability = "applications:submit"
	ApplicationsReview Capability = "applications:review"

	ProfileManage Capability = "profile:manage"
	UsersList     Capability = "users:list"
)

type Set map[Capability]struct{}

func (s Set) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

func setOf(caps ...Capability) Set {
	s := make(Set, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

var (
	guestCaps     = []Capability{CatalogBrowse}
	anonymousCaps = []Capability{CatalogBrowse, CartReconcile}
	buyerCaps     = []Capability{
		CatalogBrowse, CartReconcile, CartManage, CheckoutPlace,
		OrdersReadOwn, ApplicationsSubmit, ProfileManage,
	}
	sellerCaps = []Capability{
		CatalogBrowse, CartReconcile, CartManage, CheckoutPlace,
		OrdersReadOwn, ProfileManage, ListingsManage, OrdersFulfill,
	}
	// Adminは購入・出品の経路を持たない
	adminCaps = []Capability{
		CatalogBrowse, CatalogReadAll, OrdersReadAll, UsersList,
		ApplicationsReview, ProfileManage,
	}
)

// Capabilities は呼び出し元が持つ権限の集合を返す。
func Capabilities(id *model.Identity) Set {
	switch {
	case id == nil:
		return setOf(guestCaps...)
	case id.Anonymous:
		return setOf(anonymousCaps...)
	}

	switch id.Role {
	case model.RoleBuyer:
		return setOf(buyerCaps...)
	case model.RoleSeller:
		return setOf(sellerCaps...)
	case model.RoleAdmin:
		return setOf(adminCaps...)
	}
	return setOf(guestCaps...)
}

// Authorize は cap を持っているかを判定する。
// owners を渡したときは、呼び出し元のIDかemailがそのどれかと一致する必要がある。
func Authorize(id *model.Identity, c Capability, owners ...string) error {
	if !Capabilities(id).Has(c) {
		switch {
		case id == nil:
			return ErrUnauthenticated
		case id.Anonymous:
			return ErrLoginRequired
		}
		return ErrForbidden
	}

	if len(owners) > 0 && !owns(id, owners) {
		return ErrForbidden
	}
	return nil
}

func owns(id *model.Identity, owners []string) bool {
	if id == nil {
		return false
	}
	for _, o := range owners {
		if o == "" {
			continue
		}
		if o == id.UserID {
			return true
		}
		if id.Email != "" && strings.EqualFold(o, id.Email) {
			return true
		}
	}
	return false
}
