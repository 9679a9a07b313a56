package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/qstina/relove-website/internal/domain/authz"
	"github.com/qstina/relove-website/internal/domain/model"
	"github.com/qstina/relove-website/internal/logging"
	repo "github.com/qstina/relove-website/internal/repository"
)

// 出品者による発送・配達・キャンセル
type FulfillmentUsecase struct {
	tx      repo.TransactionManager
	ids     IDGenerator
	clock   Clock
	metrics Metrics
}

func NewFulfillmentUsecase(tx repo.TransactionManager, ids IDGenerator, clock Clock, metrics Metrics) *FulfillmentUsecase {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &FulfillmentUsecase{tx: tx, ids: ids, clock: clock, metrics: metrics}
}

func (u *FulfillmentUsecase) Ship(ctx context.Context, id *model.Identity, orderID, trackingNumber string) (model.Order, error) {
	tracking := strings.TrimSpace(trackingNumber)
	if tracking == "" {
		return model.Order{}, failWith(ErrMissingTracking, "tracking number required")
	}
	return u.transition(ctx, id, orderID, model.OrderStatusShipping, tracking, "")
}

func (u *FulfillmentUsecase) Deliver(ctx context.Context, id *model.Identity, orderID string) (model.Order, error) {
	return u.transition(ctx, id, orderID, model.OrderStatusDelivered, "", "")
}

func (u *FulfillmentUsecase) Cancel(ctx context.Context, id *model.Identity, orderID, reason string) (model.Order, error) {
	return u.transition(ctx, id, orderID, model.OrderStatusCancelled, "", strings.TrimSpace(reason))
}

type statusSnapshot struct {
	Status         model.OrderStatus `json:"status"`
	TrackingNumber string            `json:"tracking_number,omitempty"`
	Reason         string            `json:"reason,omitempty"`
}

func (u *FulfillmentUsecase) transition(ctx context.Context, id *model.Identity, orderID string, to model.OrderStatus, tracking, reason string) (model.Order, error) {
	if err := authz.Authorize(id, authz.OrdersFulfill); err != nil {
		return model.Order{}, gateError(err)
	}

	var out model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return failWith(ErrNotFound, "not found")
		}
		if err != nil {
			return err
		}

		//明細に自分の出品が含まれていること
		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return err
		}
		sellers := make([]string, 0, len(items))
		for _, it := range items {
			sellers = append(sellers, it.SellerEmail)
		}
		if len(sellers) == 0 {
			return failWith(ErrForbidden, "forbidden")
		}
		if err := authz.Authorize(id, authz.OrdersFulfill, sellers...); err != nil {
			return gateError(err)
		}

		if !o.Status.CanTransitionTo(to) {
			return failWith(ErrInvalidTransition, fmt.Sprintf("cannot change order from %s to %s", o.Status, to))
		}

		now := u.clock.Now()
		ok, err := r.Orders().UpdateStatus(ctx, o.ID, repo.OrderTransition{
			From:           o.Status,
			To:             to,
			TrackingNumber: tracking,
			At:             now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return failWith(ErrConcurrentModification, "order was updated by someone else, refresh and retry")
		}

		before, _ := json.Marshal(statusSnapshot{Status: o.Status, TrackingNumber: o.TrackingNumber})
		after, _ := json.Marshal(statusSnapshot{Status: to, TrackingNumber: tracking, Reason: reason})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  id.UserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		eventID := u.ids.NewID()
		if err := r.Outbox().Insert(ctx, eventID, model.TopicOrders, o.ID, model.EventEnvelope{
			EventID:    eventID,
			Type:       model.EventOrderStatusChanged,
			OccurredAt: now,
			Data: map[string]any{
				"order_id":        o.ID,
				"from":            o.Status,
				"to":              to,
				"tracking_number": tracking,
				"buyer_email":     o.Email,
			},
		}); err != nil {
			return err
		}

		fresh, err := r.Orders().FindByID(ctx, o.ID)
		if err != nil {
			return err
		}
		out = fresh
		return nil
	})
	if err != nil {
		return model.Order{}, passOrDB(ctx, "orders.transition", err)
	}

	u.metrics.OrderTransition(string(to))
	logging.FromContext(ctx).Info("order status changed", "order_id", orderID, "status", to, "actor", id.UserID)
	return out, nil
}
