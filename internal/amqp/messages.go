package amqp

import (
	"encoding/json"
	"time"

	"cashflow/internal/core"
)

const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// TransactionEvent notifies consumers that an expense or earning was
// written or removed. It carries only identifiers; consumers fetch fresh
// rows from the database.
type TransactionEvent struct {
	Kind       core.TransactionKind `json:"kind"`
	Action     string               `json:"action"`
	ID         int64                `json:"id"`
	CategoryID int64                `json:"category_id"`
	Month      string               `json:"month"`
	Timestamp  time.Time            `json:"timestamp"`
}

// NewTransactionEvent builds an event for a transaction mutation.
func NewTransactionEvent(kind core.TransactionKind, action string, id, categoryID int64, month core.Month) *TransactionEvent {
	return &TransactionEvent{
		Kind:       kind,
		Action:     action,
		ID:         id,
		CategoryID: categoryID,
		Month:      month.String(),
		Timestamp:  time.Now(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
