package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record change actions carried on the wire.
const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// RecordChangeMessage is a lightweight notification that a household's
// records changed. Consumers fetch whatever they need from the store;
// the message only says which household moved and why.
type RecordChangeMessage struct {
	MessageID   string    `json:"message_id"`
	RecordID    int64     `json:"record_id"`
	HouseholdID string    `json:"household_id"`
	Action      string    `json:"action"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewRecordChangeMessage creates a change message stamped with the
// current time and a unique id consumers can deduplicate on.
func NewRecordChangeMessage(recordID int64, householdID, action string) *RecordChangeMessage {
	return &RecordChangeMessage{
		MessageID:   uuid.NewString(),
		RecordID:    recordID,
		HouseholdID: householdID,
		Action:      action,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *RecordChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangeMessageFromJSON creates a message from JSON bytes.
func RecordChangeMessageFromJSON(data []byte) (*RecordChangeMessage, error) {
	var msg RecordChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
