package events

import (
	"context"
	"errors"
	"testing"

	"github.com/qstina/relove-website/internal/infra/db"
	infra "github.com/qstina/relove-website/internal/infra/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, topic, key string, value []byte) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func (m *mockPublisher) Close() error { return nil }

func newOutbox(t *testing.T) *infra.OutboxGormRepository {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb))
	return infra.NewOutboxGormRepository(gdb)
}

func TestRelay_RunOnce_PublishesAndMarksSent(t *testing.T) {
	ctx := context.Background()
	outbox := newOutbox(t)
	require.NoError(t, outbox.Insert(ctx, "ev-1", "orders", "order-1", map[string]string{"type": "order.placed"}))
	require.NoError(t, outbox.Insert(ctx, "ev-2", "orders", "order-2", map[string]string{"type": "order.placed"}))

	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, "orders", "order-1", mock.Anything).Return(nil).Once()
	pub.On("Publish", mock.Anything, "orders", "order-2", mock.Anything).Return(nil).Once()

	r := NewRelay(outbox, pub, 0)
	n, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	pub.AssertExpectations(t)

	pending, err := outbox.FetchPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRelay_RunOnce_StopsOnFailure(t *testing.T) {
	ctx := context.Background()
	outbox := newOutbox(t)
	require.NoError(t, outbox.Insert(ctx, "ev-1", "orders", "order-1", map[string]string{}))
	require.NoError(t, outbox.Insert(ctx, "ev-2", "orders", "order-2", map[string]string{}))

	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, "orders", "order-1", mock.Anything).Return(errors.New("broker down")).Once()

	r := NewRelay(outbox, pub, 0)
	n, err := r.RunOnce(ctx)
	assert.Error(t, err)
	assert.Equal(t, 0, n)
	pub.AssertNotCalled(t, "Publish", mock.Anything, "orders", "order-2", mock.Anything)

	pending, err := outbox.FetchPending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestKafkaPublisher_DisabledWithoutBrokers(t *testing.T) {
	c := NewClient(" , ")
	assert.False(t, c.Enabled())

	p := NewKafkaPublisher(c)
	err := p.Publish(context.Background(), "orders", "k", []byte("{}"))
	assert.ErrorIs(t, err, ErrDisabled)
	assert.NoError(t, p.Close())
}

func TestNewClient_SplitsCSV(t *testing.T) {
	c := NewClient("kafka-1:9092, kafka-2:9092")
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.Brokers)

	w := c.NewWriter("orders")
	assert.Equal(t, "orders", w.Topic)
}
