package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"salesdash/internal/core"
)

// SaleCreatedEvent announces a sale accepted by the external database.
// It carries the full draft so consumers never call back into the gateway.
type SaleCreatedEvent struct {
	RecordID  string         `json:"recordId"`
	Sale      core.SaleDraft `json:"sale"`
	Backend   string         `json:"backend"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewSaleCreatedEvent stamps a new event with the current time.
func NewSaleCreatedEvent(recordID, backend string, sale core.SaleDraft) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		RecordID:  recordID,
		Sale:      sale,
		Backend:   backend,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SaleCreatedEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SaleCreatedEventFromJSON decodes and checks an event body.
func SaleCreatedEventFromJSON(data []byte) (*SaleCreatedEvent, error) {
	var msg SaleCreatedEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.RecordID == "" {
		return nil, errors.New("event without record id")
	}
	return &msg, nil
}
