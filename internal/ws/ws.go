package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"art-auction/internal/fanout"
	model "art-auction/internal/models"
	"art-auction/utils"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	// ping must fire before the peer's pong deadline expires
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
)

// AuctionDirectory resolves auction IDs; subscriptions to unknown auctions
// are refused before the connection is upgraded.
type AuctionDirectory interface {
	GetAuction(auctionID string) (model.Auction, error)
}

// Handler bridges broker subscriptions onto websocket connections. Delivery
// inherits the broker's at-most-once semantics: a disconnected or slow
// subscriber simply misses events.
type Handler struct {
	broker   *fanout.Broker
	registry AuctionDirectory
	upgrader websocket.Upgrader
}

// NewHandler creates a websocket handler over the given broker
func NewHandler(broker *fanout.Broker, registry AuctionDirectory) *Handler {
	return &Handler{
		broker:   broker,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from the platform's separate front-end origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// StreamAuctionEvents handles GET /ws/auctions/:auction_id
func (h *Handler) StreamAuctionEvents(c *gin.Context) {
	auctionID := c.Param("auction_id")
	if _, err := h.registry.GetAuction(auctionID); err != nil {
		utils.JSONError(c, http.StatusNotFound, err, "auction not found")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.Warn("ws: upgrade failed", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	sub := h.broker.Subscribe(auctionID)
	utils.Info("ws: subscriber joined", map[string]any{"auction_id": auctionID})

	go h.writePump(conn, sub)
	h.readPump(conn, sub, auctionID)
}

// readPump discards inbound messages and detects disconnects. It owns the
// subscription teardown.
func (h *Handler) readPump(conn *websocket.Conn, sub *fanout.Subscription, auctionID string) {
	defer func() {
		h.broker.Unsubscribe(sub)
		conn.Close()
		utils.Info("ws: subscriber left", map[string]any{"auction_id": auctionID})
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards broker events to the connection and keeps it alive with
// pings. Exits when the subscription channel closes or a write fails.
func (h *Handler) writePump(conn *websocket.Conn, sub *fanout.Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-sub.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
