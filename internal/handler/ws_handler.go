package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"sidenote-sync-server/internal/middleware"
	"sidenote-sync-server/internal/service"
	"sidenote-sync-server/internal/websocket"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type WebSocketHandler struct {
	manager     *websocket.Manager
	authService *service.AuthService
	upgrader    ws.Upgrader
	log         zerolog.Logger
}

func NewWebSocketHandler(manager *websocket.Manager, authService *service.AuthService, log zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		manager:     manager,
		authService: authService,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: log,
	}
}

// HandleConnection authenticates with ?token= (browsers cannot set headers on
// a websocket handshake) or a bearer header, then upgrades.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token, _ = middleware.BearerToken(r)
	}

	if token == "" {
		http.Error(w, "missing authorization token", http.StatusUnauthorized)
		return
	}

	if _, err := h.authService.ValidateToken(token); err != nil {
		h.log.Debug().Err(err).Msg("websocket token rejected")
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to upgrade connection")
		return
	}

	client := websocket.NewClient(uuid.New().String(), conn, h.manager)
	h.manager.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

// WebSocketMessageHandler answers requests that arrive over the status socket.
type WebSocketMessageHandler struct {
	manager  *websocket.Manager
	autoSync *service.AutoSyncer
	timeout  time.Duration
}

func NewWebSocketMessageHandler(manager *websocket.Manager, autoSync *service.AutoSyncer) *WebSocketMessageHandler {
	return &WebSocketMessageHandler{
		manager:  manager,
		autoSync: autoSync,
		timeout:  2 * time.Minute,
	}
}

func (h *WebSocketMessageHandler) HandleWebSocketMessage(client *websocket.Client, msg *websocket.Message) error {
	switch msg.Type {
	case websocket.TypePing:
		return h.reply(client, websocket.TypePong, nil)

	case websocket.TypeStatusRequest:
		return h.reply(client, websocket.TypeSyncStatus, h.autoSync.Status())

	case websocket.TypeSyncNow:
		// runs off the manager loop; the result is sent when the sync ends
		go h.syncNow(client)
		return nil

	default:
		return h.reply(client, websocket.TypeError, &websocket.ErrorPayload{Error: "unknown message type: " + string(msg.Type)})
	}
}

func (h *WebSocketMessageHandler) syncNow(client *websocket.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	result, err := h.autoSync.SyncNow(ctx)
	if err != nil && !errors.Is(err, service.ErrSyncInProgress) {
		h.reply(client, websocket.TypeError, &websocket.ErrorPayload{Error: err.Error()})
		return
	}
	h.reply(client, websocket.TypeSyncResult, result)
}

func (h *WebSocketMessageHandler) reply(client *websocket.Client, msgType websocket.MessageType, payload interface{}) error {
	msg, err := websocket.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	return h.manager.SendToClient(client.ID, msg)
}
