package amqp

import (
	"testing"

	"cashflow/internal/core"
)

func TestTransactionEventRoundTrip(t *testing.T) {
	month, _ := core.ParseMonth("2024-01")
	event := NewTransactionEvent(core.KindExpense, ActionCreated, 7, 3, month)

	body, err := event.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := TransactionEventFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Kind != core.KindExpense || got.Action != ActionCreated {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.ID != 7 || got.CategoryID != 3 || got.Month != "2024-01" {
		t.Fatalf("unexpected identifiers: %+v", got)
	}
}

func TestTransactionEventFromJSONInvalid(t *testing.T) {
	if _, err := TransactionEventFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid body")
	}
}
