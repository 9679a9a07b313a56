package events

import (
	"context"
	"time"

	"github.com/qstina/relove-website/internal/logging"
	repo "github.com/qstina/relove-website/internal/repository"
)

const defaultBatchSize = 100

// Relay は未送信のoutboxを古い順にpublishしてsent_atを埋める。
// 送信に失敗した行はそのまま残り、次回のポーリングで再送される(at-least-once)。
type Relay struct {
	outbox    repo.OutboxRepository
	publisher Publisher
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

func NewRelay(outbox repo.OutboxRepository, publisher Publisher, interval time.Duration) *Relay {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Relay{
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		batchSize: defaultBatchSize,
		now:       time.Now,
	}
}

// RunOnce は1バッチ分を送信し、送れた件数を返す
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	log := logging.FromContext(ctx)

	pending, err := r.outbox.FetchPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, ev := range pending {
		if err := r.publisher.Publish(ctx, ev.Topic, ev.Key, []byte(ev.Payload)); err != nil {
			// 順序を崩さないよう、失敗したらこのバッチはここで止める
			log.Warn("outbox publish failed", "event_id", ev.EventID, "topic", ev.Topic, "err", err)
			return sent, err
		}
		if err := r.outbox.MarkSent(ctx, ev.ID, r.now().UTC()); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (r *Relay) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.RunOnce(ctx)
			if err != nil && ctx.Err() == nil {
				log.Error("outbox relay", "err", err)
				continue
			}
			if n > 0 {
				log.Debug("outbox relayed", "count", n)
			}
		}
	}
}
