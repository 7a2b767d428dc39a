package amqp

import (
	"encoding/json"
	"time"
)

// SyncRequestMessage asks the worker to pull the spreadsheet ledger into
// SQLite. It carries no data; the worker reads the sheet itself, so a lost
// or duplicated message is harmless.
type SyncRequestMessage struct {
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSyncRequestMessage(reason string) *SyncRequestMessage {
	return &SyncRequestMessage{
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

func (m *SyncRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SyncRequestMessageFromJSON(data []byte) (*SyncRequestMessage, error) {
	var msg SyncRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
