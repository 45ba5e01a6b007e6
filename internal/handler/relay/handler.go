package relay

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/careloop/voicebridge/internal/model/persona"
	"github.com/careloop/voicebridge/internal/service/relay"
	"github.com/careloop/voicebridge/pkg/utils"
)

// Handler relay服务的WebSocket处理器
type Handler struct {
	svc      *relay.Service
	personas persona.Store
	upgrader websocket.Upgrader
}

// New 创建relay处理器
func New(svc *relay.Service, personas persona.Store) *Handler {
	return &Handler{
		svc:      svc,
		personas: personas,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册relay相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/realtime/ws", h.handleRealtime)
}

// handleRealtime upgrades to the relay protocol. A plain GET without an
// upgrade header answers with the persona discovery list instead.
func (h *Handler) handleRealtime(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		utils.RespondJSON(w, http.StatusOK, persona.Summaries(h.personas.List()))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}

	log.Printf("[websocket] new relay connection from=%s", r.RemoteAddr)
	h.svc.Bridge(r.Context(), conn)
}
