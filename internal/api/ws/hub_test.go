package ws_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/leasehold/internal/api/ws"
	"github.com/gosuda/leasehold/internal/domain"
	"github.com/gosuda/leasehold/internal/server/middleware"
	redisstore "github.com/gosuda/leasehold/internal/store/redis"
)

type failingSubscriber struct{}

func (failingSubscriber) Subscribe(context.Context, string) (<-chan []byte, func(), error) {
	return nil, nil, errors.New("redis down")
}

// withManager stands in for the auth middleware.
func withManager(managerID uuid.UUID, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next(w, r.WithContext(middleware.WithManager(r.Context(), managerID, "pm@example.com")))
	})
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestServeLedger(t *testing.T) {
	t.Parallel()

	t.Run("relays manager events", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		ps := redisstore.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
		t.Cleanup(func() { _ = ps.Close() })

		managerID := uuid.New()
		hub := ws.NewHub(ps, nil)
		srv := httptest.NewServer(withManager(managerID, hub.ServeLedger))
		t.Cleanup(srv.Close)

		ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
		defer cancel()

		conn, _, err := websocket.Dial(ctx, wsURL(srv), nil)
		require.NoError(t, err)
		defer conn.CloseNow()

		channel := redisstore.LedgerChannel(managerID)
		require.Eventually(t, func() bool {
			return mr.PubSubNumSub(channel)[channel] == 1
		}, 2*time.Second, 10*time.Millisecond, "hub never subscribed")

		recordID := uuid.New()
		require.NoError(t, ps.PublishEvent(ctx, managerID, domain.Event{
			Type:     domain.EventPaymentRecorded,
			RecordID: &recordID,
			Status:   string(domain.RentStatusPaid),
		}))

		typ, data, err := conn.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, websocket.MessageText, typ)

		var ev domain.Event
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, domain.EventPaymentRecorded, ev.Type)
		require.NotNil(t, ev.RecordID)
		assert.Equal(t, recordID, *ev.RecordID)
	})

	t.Run("missing manager", func(t *testing.T) {
		t.Parallel()

		hub := ws.NewHub(failingSubscriber{}, nil)
		rec := httptest.NewRecorder()
		hub.ServeLedger(rec, httptest.NewRequest(http.MethodGet, "/ws/ledger", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("subscribe failure closes with internal error", func(t *testing.T) {
		t.Parallel()

		hub := ws.NewHub(failingSubscriber{}, nil)
		srv := httptest.NewServer(withManager(uuid.New(), hub.ServeLedger))
		t.Cleanup(srv.Close)

		ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
		defer cancel()

		conn, _, err := websocket.Dial(ctx, wsURL(srv), nil)
		require.NoError(t, err)
		defer conn.CloseNow()

		_, _, err = conn.Read(ctx)
		require.Error(t, err)
		assert.Equal(t, websocket.StatusInternalError, websocket.CloseStatus(err))
	})
}
