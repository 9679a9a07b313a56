package usecase

import (
	"context"
	"time"

	"github.com/qstina/relove-website/internal/domain/model"

	"github.com/google/uuid"
)

type IDGenerator interface {
	NewID() string
}

type Clock interface {
	Now() time.Time
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Metrics はusecaseの結果を数える。metrics.Registry が実装する
type Metrics interface {
	CheckoutResult(result string)
	OrderTransition(status string)
	ApplicationDecision(status string)
}

type nopMetrics struct{}

func (nopMetrics) CheckoutResult(string)      {}
func (nopMetrics) OrderTransition(string)     {}
func (nopMetrics) ApplicationDecision(string) {}

// IdentityObserver はサインアウトなどidentityの変化を受け取る
type IdentityObserver interface {
	OnSignedOut(ctx context.Context, id *model.Identity) error
}
