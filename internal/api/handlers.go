package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"codesync/internal/metrics"
	"codesync/internal/models"
	"codesync/internal/registry"
	"codesync/internal/relay"
	"codesync/internal/session"
)

// Origin policy for the upgrade itself is permissive; the CORS
// middleware governs the browser surface.
var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type Handlers struct {
	log    *zap.Logger
	hub    *session.Hub
	router *relay.Router
}

func NewHandlers(log *zap.Logger) *Handlers {
	hub := session.NewHub()
	return &Handlers{
		log:    log,
		hub:    hub,
		router: relay.NewRouter(log, registry.New(), hub),
	}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// CollabWS upgrades the connection, assigns it an id, and pumps inbound
// frames through the event router until the peer goes away. Teardown
// runs the disconnecting broadcast before the connection leaves the hub.
func (h *Handlers) CollabWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	client := session.NewClient(uuid.NewString(), conn)
	h.hub.Register(client)
	metrics.ConnOpened()
	h.log.Info("connection established", zap.String("socketId", client.ID))

	defer func() {
		h.router.Disconnecting(client.ID)
		h.hub.Unregister(client.ID)
		metrics.ConnClosed()
		h.log.Info("connection closed", zap.String("socketId", client.ID))
	}()

	for {
		var frame models.WSFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		h.router.Dispatch(client.ID, frame)
	}
}
