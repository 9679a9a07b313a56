package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/qstina/relove-website/internal/domain/authz"
	"github.com/qstina/relove-website/internal/domain/model"
	"github.com/qstina/relove-website/internal/logging"
	repo "github.com/qstina/relove-website/internal/repository"
)

type SellerApplicationUsecase struct {
	tx      repo.TransactionManager
	apps    repo.SellerApplicationRepository
	ids     IDGenerator
	clock   Clock
	metrics Metrics
}

func NewSellerApplicationUsecase(
	tx repo.TransactionManager,
	apps repo.SellerApplicationRepository,
	ids IDGenerator,
	clock Clock,
	metrics Metrics,
) *SellerApplicationUsecase {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &SellerApplicationUsecase{tx: tx, apps: apps, ids: ids, clock: clock, metrics: metrics}
}

type SubmitApplicationInput struct {
	Phone         string
	Address       string
	AccountNumber string
	Description   string
}

// Submit は出品者申請を出す。審査中か承認済みの申請があれば受け付けない。
func (u *SellerApplicationUsecase) Submit(ctx context.Context, id *model.Identity, in SubmitApplicationInput) (model.SellerApplication, error) {
	if err := authz.Authorize(id, authz.ApplicationsSubmit); err != nil {
		return model.SellerApplication{}, gateError(err)
	}
	phone := strings.TrimSpace(in.Phone)
	address := strings.TrimSpace(in.Address)
	if phone == "" {
		return model.SellerApplication{}, failWith(ErrMissingRequiredField, "phone required")
	}
	if address == "" {
		return model.SellerApplication{}, failWith(ErrMissingRequiredField, "address required")
	}

	now := u.clock.Now()
	app := model.SellerApplication{
		ID:            u.ids.NewID(),
		UserID:        id.UserID,
		Email:         id.Email,
		Phone:         phone,
		Address:       address,
		AccountNumber: strings.TrimSpace(in.AccountNumber),
		Description:   strings.TrimSpace(in.Description),
		Status:        model.ApplicationPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		existing, err := r.Applications().ListByUserID(ctx, id.UserID)
		if err != nil {
			return err
		}
		for _, a := range existing {
			if a.Status == model.ApplicationPending || a.Status == model.ApplicationApproved {
				return failWith(ErrApplicationExists, "application already submitted")
			}
		}

		//同時に出された申請は一意インデックス側で弾かれる
		err = r.Applications().Create(ctx, app)
		if errors.Is(err, repo.ErrDuplicate) {
			return failWith(ErrApplicationExists, "application already submitted")
		}
		if err != nil {
			return err
		}

		//プロフィールが空の項目だけ埋める
		user, err := r.Users().FindByID(ctx, id.UserID)
		if err != nil {
			return err
		}
		changed := false
		if user.Phone == "" {
			user.Phone = phone
			changed = true
		}
		if user.Address == "" {
			user.Address = address
			changed = true
		}
		if changed {
			if err := r.Users().UpdateProfile(ctx, user); err != nil {
				return err
			}
		}

		eventID := u.ids.NewID()
		return r.Outbox().Insert(ctx, eventID, model.TopicSellerApplications, app.ID, model.EventEnvelope{
			EventID:    eventID,
			Type:       model.EventApplicationSubmitted,
			OccurredAt: now,
			Data: map[string]any{
				"application_id": app.ID,
				"user_id":        app.UserID,
				"email":          app.Email,
			},
		})
	})
	if err != nil {
		return model.SellerApplication{}, passOrDB(ctx, "applications.submit", err)
	}
	return app, nil
}

func (u *SellerApplicationUsecase) Approve(ctx context.Context, admin *model.Identity, applicationID string) (model.SellerApplication, error) {
	return u.decide(ctx, admin, applicationID, model.ApplicationApproved)
}

func (u *SellerApplicationUsecase) Reject(ctx context.Context, admin *model.Identity, applicationID string) (model.SellerApplication, error) {
	return u.decide(ctx, admin, applicationID, model.ApplicationRejected)
}

// 承認ならroleの変更まで同じtxで行う。申請者がいなければ全部戻す。
func (u *SellerApplicationUsecase) decide(ctx context.Context, admin *model.Identity, applicationID string, to model.ApplicationStatus) (model.SellerApplication, error) {
	if err := authz.Authorize(admin, authz.ApplicationsReview); err != nil {
		return model.SellerApplication{}, gateError(err)
	}

	var out model.SellerApplication
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		app, err := r.Applications().FindByID(ctx, applicationID)
		if errors.Is(err, repo.ErrNotFound) {
			return failWith(ErrNotFound, "not found")
		}
		if err != nil {
			return err
		}
		if app.Status != model.ApplicationPending {
			return failWith(ErrInvalidTransition, "application already "+string(app.Status))
		}

		now := u.clock.Now()
		ok, err := r.Applications().Decide(ctx, app.ID, to, admin.UserID, now)
		if err != nil {
			return err
		}
		if !ok {
			return failWith(ErrConcurrentModification, "application was decided by someone else, refresh and retry")
		}

		if to == model.ApplicationApproved {
			err := r.Users().UpdateRole(ctx, app.UserID, model.RoleSeller)
			if errors.Is(err, repo.ErrNotFound) {
				return failWith(ErrNotFound, "applicant not found")
			}
			if err != nil {
				return err
			}
		}

		before, _ := json.Marshal(map[string]any{"status": app.Status})
		after, _ := json.Marshal(map[string]any{"status": to, "user_id": app.UserID})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  admin.UserID,
			Action:       model.AuditActionDecideApplication,
			ResourceType: model.AuditResourceApplication,
			ResourceID:   app.ID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		eventID := u.ids.NewID()
		if err := r.Outbox().Insert(ctx, eventID, model.TopicSellerApplications, app.ID, model.EventEnvelope{
			EventID:    eventID,
			Type:       model.EventApplicationDecided,
			OccurredAt: now,
			Data: map[string]any{
				"application_id": app.ID,
				"user_id":        app.UserID,
				"email":          app.Email,
				"status":         to,
			},
		}); err != nil {
			return err
		}

		adminID := admin.UserID
		app.Status = to
		app.DecidedBy = &adminID
		app.DecidedAt = &now
		app.UpdatedAt = now
		out = app
		return nil
	})
	if err != nil {
		return model.SellerApplication{}, passOrDB(ctx, "applications.decide", err)
	}

	u.metrics.ApplicationDecision(string(to))
	logging.FromContext(ctx).Info("seller application decided", "application_id", applicationID, "status", to, "admin", admin.UserID)
	return out, nil
}

// statusが空なら全件
func (u *SellerApplicationUsecase) List(ctx context.Context, admin *model.Identity, status string) ([]model.SellerApplication, error) {
	if err := authz.Authorize(admin, authz.ApplicationsReview); err != nil {
		return nil, gateError(err)
	}
	st := model.ApplicationStatus(strings.TrimSpace(status))
	switch st {
	case "", model.ApplicationPending, model.ApplicationApproved, model.ApplicationRejected:
	default:
		return nil, failWith(ErrInvalidInput, "invalid status")
	}

	apps, err := u.apps.List(ctx, st)
	if err != nil {
		return nil, dbError(ctx, "applications.list", err)
	}
	return apps, nil
}

func (u *SellerApplicationUsecase) Mine(ctx context.Context, id *model.Identity) ([]model.SellerApplication, error) {
	if err := authz.Authorize(id, authz.ProfileManage); err != nil {
		return nil, gateError(err)
	}
	apps, err := u.apps.ListByUserID(ctx, id.UserID)
	if err != nil {
		return nil, dbError(ctx, "applications.mine", err)
	}
	return apps, nil
}
