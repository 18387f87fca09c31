package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const (
	livePingInterval = 30 * time.Second
	liveWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// le JWT est vérifié avant l'upgrade, l'origine n'apporte rien de plus
		return true
	},
}

// DisputeFeed : abonnement Redis au canal disputes:<user_id>
type DisputeFeed interface {
	SubscribeDisputes(ctx context.Context, userID string) (<-chan *redis.Message, func() error, error)
}

type LiveHandler struct {
	feed         DisputeFeed
	pingInterval time.Duration
}

func NewLiveHandler(feed DisputeFeed) *LiveHandler {
	return &LiveHandler{feed: feed, pingInterval: livePingInterval}
}

// Stream : GET /api/disputes/live, relaie les messages dispute_changed vers le navigateur
func (h *LiveHandler) Stream(c *gin.Context) {
	userID := currentUser(c)
	if h.feed == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live feed unavailable"})
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	messages, closeSub, err := h.feed.SubscribeDisputes(ctx, userID)
	if err != nil {
		log.Printf("❌ Abonnement Redis échoué pour %s: %v", userID, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live feed unavailable"})
		return
	}
	defer closeSub()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	// lecture : seul moyen de voir la fermeture côté navigateur
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(gin.H{"type": "connected", "message": "Live dispute feed enabled"}); err != nil {
		return
	}
	log.Printf("📡 Flux litiges ouvert pour %s", userID)

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteTimeout)); err != nil {
				return
			}
		}
	}
}
