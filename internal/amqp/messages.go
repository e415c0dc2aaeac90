package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecordSyncMessage asks the worker to copy one locally stored daily record to
// the remote sheet. The worker reads the record itself from the database.
type RecordSyncMessage struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordSyncMessage(id int64, date string) *RecordSyncMessage {
	return &RecordSyncMessage{
		ID:        id,
		Date:      date,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordSyncMessageFromJSON decodes a message and rejects ones without an id.
func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID <= 0 {
		return nil, fmt.Errorf("invalid record id %d", msg.ID)
	}
	return &msg, nil
}
