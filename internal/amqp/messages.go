package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrEmptyMessageID marks a sync message with no property id; such messages
// are rejected without requeue.
var ErrEmptyMessageID = errors.New("sync message has empty property id")

// PropertySyncMessage is the lightweight notification that a property changed
// locally. It carries only the id and version; the worker fetches the full
// document from the local store before mirroring it.
type PropertySyncMessage struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewPropertySyncMessage(id string, version int64) *PropertySyncMessage {
	return &PropertySyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *PropertySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PropertySyncMessageFromJSON(data []byte) (*PropertySyncMessage, error) {
	var msg PropertySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, ErrEmptyMessageID
	}
	return &msg, nil
}
