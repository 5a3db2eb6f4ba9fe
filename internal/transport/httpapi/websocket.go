package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
)

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking belongs to whatever reverse proxy/CORS policy
		// fronts this service in a real deployment; left permissive here
		// since Non-goals exclude a browser-facing security model.
		return true
	},
}

// subscribeEvents upgrades the connection and streams hub events for the
// ticket's trivia until the client disconnects or the ticket's
// subscription ends. Grounded on the reference repo's ws_handler.go
// HandleConnection: redeem a short-lived ticket from the query string,
// then upgrade.
func (a *API) subscribeEvents(c *gin.Context) {
	ticket := c.Query("ticket")
	if ticket == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing ticket parameter"})
		return
	}

	triviaID, _, isAdmin, ok := a.tickets.Redeem(c.Request.Context(), ticket)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired ticket"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[httpapi] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sub := a.hub.Subscribe(triviaID, isAdmin)
	defer a.hub.Unsubscribe(sub)

	// A dedicated reader goroutine drains and discards client frames so
	// the connection's close (including a client-initiated close frame)
	// is detected promptly; this transport is server-push only.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// A keepalive comment frame every 30s keeps the stream from going
	// silent for longer than that.
	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-keepalive.C:
			if err := conn.WriteMessage(gorillaws.TextMessage, []byte(": keepalive\n\n")); err != nil {
				return
			}
		case evt, open := <-sub.Events():
			if !open {
				return
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				log.Printf("[httpapi] failed to marshal event: %v", err)
				continue
			}
			if err := conn.WriteMessage(gorillaws.TextMessage, payload); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
