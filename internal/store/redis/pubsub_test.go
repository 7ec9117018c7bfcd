package redis_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/leasehold/internal/domain"
	redisstore "github.com/gosuda/leasehold/internal/store/redis"
)

func setupPubSub(t *testing.T) (*miniredis.Miniredis, *redisstore.PubSub) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ps := redisstore.NewWithClient(client)
	t.Cleanup(func() { _ = ps.Close() })
	return mr, ps
}

func TestLedgerChannel(t *testing.T) {
	t.Parallel()

	managerID := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	t.Run("happy path", func(t *testing.T) {
		t.Parallel()

		got := redisstore.LedgerChannel(managerID)
		assert.Equal(t, "ledger:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", got)
	})

	t.Run("prefix", func(t *testing.T) {
		t.Parallel()

		got := redisstore.LedgerChannel(uuid.Nil)
		assert.True(t, strings.HasPrefix(got, "ledger:"), "expected prefix 'ledger:', got %q", got)
	})

	t.Run("different inputs produce different outputs", func(t *testing.T) {
		t.Parallel()

		other := uuid.MustParse("11111111-2222-3333-4444-555555555555")
		assert.NotEqual(t, redisstore.LedgerChannel(managerID), redisstore.LedgerChannel(other))
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	ps, err := redisstore.New(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	require.NoError(t, ps.Ping(context.Background()))
	require.NoError(t, ps.Close())
}

func TestPublishEvent(t *testing.T) {
	t.Parallel()

	_, ps := setupPubSub(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	managerID := uuid.New()
	msgs, cleanup, err := ps.Subscribe(ctx, redisstore.LedgerChannel(managerID))
	require.NoError(t, err)
	defer cleanup()

	recordID := uuid.New()
	ev := domain.Event{
		Type:     domain.EventPaymentRecorded,
		TenantID: uuid.New(),
		RecordID: &recordID,
		Status:   string(domain.RentStatusPaid),
	}
	require.NoError(t, ps.PublishEvent(ctx, managerID, ev))

	select {
	case payload, ok := <-msgs:
		require.True(t, ok)
		var got domain.Event
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.Equal(t, ev.Type, got.Type)
		assert.Equal(t, ev.TenantID, got.TenantID)
		require.NotNil(t, got.RecordID)
		assert.Equal(t, recordID, *got.RecordID)
		assert.Nil(t, got.NoticeID)
		assert.Equal(t, "paid", got.Status)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishEvent_OtherManagerNotDelivered(t *testing.T) {
	t.Parallel()

	_, ps := setupPubSub(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mine, other := uuid.New(), uuid.New()
	msgs, cleanup, err := ps.Subscribe(ctx, redisstore.LedgerChannel(mine))
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, ps.PublishEvent(ctx, other, domain.Event{Type: domain.EventNoticeGenerated}))
	require.NoError(t, ps.PublishEvent(ctx, mine, domain.Event{Type: domain.EventOverdueRefresh}))

	select {
	case payload := <-msgs:
		var got domain.Event
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.Equal(t, domain.EventOverdueRefresh, got.Type)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestSubscribe_ClosesOnCancel(t *testing.T) {
	t.Parallel()

	_, ps := setupPubSub(t)
	ctx, cancel := context.WithCancel(context.Background())

	msgs, cleanup, err := ps.Subscribe(ctx, redisstore.LedgerChannel(uuid.New()))
	require.NoError(t, err)
	defer cleanup()

	cancel()

	select {
	case _, ok := <-msgs:
		assert.False(t, ok, "channel should close after cancel")
	case <-time.After(5 * time.Second):
		t.Fatal("subscription did not close")
	}
}
