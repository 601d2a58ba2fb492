package websocket

import (
	"encoding/json"
	"time"

	"sidenote-sync-server/internal/domain"
)

type MessageType string

const (
	TypeSyncStatus    MessageType = "sync_status"
	TypeStatusRequest MessageType = "status_request"
	TypeSyncNow       MessageType = "sync_now"
	TypeSyncResult    MessageType = "sync_result"
	TypeError         MessageType = "error"
	TypePing          MessageType = "ping"
	TypePong          MessageType = "pong"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type SyncStatusPayload = domain.SyncStatus

type SyncResultPayload = domain.SyncResult

type ErrorPayload struct {
	Error string `json:"error"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
