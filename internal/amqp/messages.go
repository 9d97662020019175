package amqp

import (
	"encoding/json"
	"time"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// CashFlowEventMessage is a lightweight change notification for a cashflow
// row. It carries only the id and action; consumers fetch whatever row data
// they need from the database.
type CashFlowEventMessage struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCashFlowEventMessage creates an event message for the given row and action.
func NewCashFlowEventMessage(id int64, action string) *CashFlowEventMessage {
	return &CashFlowEventMessage{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *CashFlowEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CashFlowEventMessageFromJSON creates a message from JSON bytes.
func CashFlowEventMessageFromJSON(data []byte) (*CashFlowEventMessage, error) {
	var msg CashFlowEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
