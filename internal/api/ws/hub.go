package ws

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/leasehold/internal/server/middleware"
	redisstore "github.com/gosuda/leasehold/internal/store/redis"
)

// Subscriber is the pub/sub side the hub reads from.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// Hub streams ledger and notice events to browsers over WebSocket, backed by
// Redis pub/sub.
type Hub struct {
	pubsub         Subscriber
	originPatterns []string
}

// NewHub creates a new WebSocket hub. originPatterns are host patterns
// accepted for cross-origin upgrades.
func NewHub(pubsub Subscriber, originPatterns []string) *Hub {
	return &Hub{pubsub: pubsub, originPatterns: originPatterns}
}

// ServeLedger subscribes to "ledger:<managerID>" for the authenticated
// manager and relays every event as a text frame until either side goes away.
// Clients only read; inbound frames are discarded.
func (h *Hub) ServeLedger(w http.ResponseWriter, r *http.Request) {
	managerID, ok := middleware.ManagerIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing manager", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// CloseRead cancels ctx when the peer closes.
	ctx := conn.CloseRead(r.Context())
	channel := redisstore.LedgerChannel(managerID)

	messages, cleanup, err := h.pubsub.Subscribe(ctx, channel)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	log.Debug().Str("manager_id", managerID.String()).Msg("ledger stream opened")

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}
