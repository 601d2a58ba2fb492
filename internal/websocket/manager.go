package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"sidenote-sync-server/internal/domain"

	"github.com/rs/zerolog"
)

type ClientMessage struct {
	Client  *Client
	Message []byte
}

// Manager owns every connected status client. Registration and inbound
// messages are serialized through Run; broadcasts may come from any goroutine.
type Manager struct {
	clients        map[string]*Client
	clientsMutex   sync.RWMutex
	Register       chan *Client
	Unregister     chan *Client
	HandleMessage  chan *ClientMessage
	maxConnections int
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
	messageHandler MessageHandler
	log            zerolog.Logger
}

type MessageHandler interface {
	HandleWebSocketMessage(client *Client, msg *Message) error
}

func NewManager(maxConnections int, writeWait, pongWait, pingPeriod time.Duration, log zerolog.Logger) *Manager {
	return &Manager{
		clients:        make(map[string]*Client),
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
		HandleMessage:  make(chan *ClientMessage),
		maxConnections: maxConnections,
		writeWait:      writeWait,
		pongWait:       pongWait,
		pingPeriod:     pingPeriod,
		log:            log.With().Str("component", "websocket").Logger(),
	}
}

func (m *Manager) SetMessageHandler(handler MessageHandler) {
	m.messageHandler = handler
}

func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return

		case client := <-m.Register:
			m.registerClient(client)

		case client := <-m.Unregister:
			m.unregisterClient(client)

		case clientMsg := <-m.HandleMessage:
			m.processMessage(clientMsg)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if len(m.clients) >= m.maxConnections {
		m.log.Warn().Int("max", m.maxConnections).Msg("max status connections reached")
		close(client.Send)
		return
	}

	m.clients[client.ID] = client
	m.log.Debug().Str("client", client.ID).Int("connected", len(m.clients)).Msg("client registered")
}

func (m *Manager) unregisterClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	m.removeLocked(client)
}

func (m *Manager) removeLocked(client *Client) {
	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
		close(client.Send)
		m.log.Debug().Str("client", client.ID).Msg("client unregistered")
	}
}

func (m *Manager) closeAll() {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	for _, client := range m.clients {
		m.removeLocked(client)
	}
}

func (m *Manager) processMessage(clientMsg *ClientMessage) {
	var msg Message
	if err := json.Unmarshal(clientMsg.Message, &msg); err != nil {
		m.log.Debug().Err(err).Str("client", clientMsg.Client.ID).Msg("malformed websocket message")
		return
	}

	if m.messageHandler != nil {
		if err := m.messageHandler.HandleWebSocketMessage(clientMsg.Client, &msg); err != nil {
			m.log.Warn().Err(err).Str("type", string(msg.Type)).Msg("error handling websocket message")
		}
	}
}

// Broadcast queues message for every client. A client whose buffer is full
// is disconnected instead of blocking the sender.
func (m *Manager) Broadcast(message *Message) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	var slow []*Client
	m.clientsMutex.RLock()
	for _, client := range m.clients {
		select {
		case client.Send <- messageBytes:
		default:
			slow = append(slow, client)
		}
	}
	m.clientsMutex.RUnlock()

	if len(slow) > 0 {
		m.clientsMutex.Lock()
		for _, client := range slow {
			m.log.Warn().Str("client", client.ID).Msg("send buffer full, closing connection")
			m.removeLocked(client)
		}
		m.clientsMutex.Unlock()
	}
	return nil
}

// PublishStatus broadcasts a sync state transition.
func (m *Manager) PublishStatus(status domain.SyncStatus) {
	msg, err := NewMessage(TypeSyncStatus, status)
	if err != nil {
		m.log.Error().Err(err).Msg("failed to encode sync status")
		return
	}
	if err := m.Broadcast(msg); err != nil {
		m.log.Error().Err(err).Msg("failed to broadcast sync status")
	}
}

func (m *Manager) SendToClient(clientID string, message *Message) error {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	client, exists := m.clients[clientID]
	if !exists {
		return nil
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case client.Send <- messageBytes:
	default:
		m.log.Warn().Str("client", clientID).Msg("send buffer full")
	}

	return nil
}

func (m *Manager) Connections() int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()
	return len(m.clients)
}
