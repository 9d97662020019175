package amqp

import (
	"testing"
	"time"
)

func TestCashFlowEventMessageRoundTrip(t *testing.T) {
	msg := NewCashFlowEventMessage(42, ActionCreated)
	if msg.Timestamp.IsZero() {
		t.Fatal("timestamp not set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := CashFlowEventMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.ID != 42 || decoded.Action != ActionCreated {
		t.Fatalf("decoded %+v", decoded)
	}
	if !decoded.Timestamp.Truncate(time.Millisecond).Equal(msg.Timestamp.Truncate(time.Millisecond)) {
		t.Fatalf("timestamp drift: %v vs %v", decoded.Timestamp, msg.Timestamp)
	}
}

func TestCashFlowEventMessageFromJSONInvalid(t *testing.T) {
	if _, err := CashFlowEventMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
