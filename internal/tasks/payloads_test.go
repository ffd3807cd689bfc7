package tasks

import (
	"encoding/json"
	"testing"
)

func TestNewContactMessageTask(t *testing.T) {
	task, err := NewContactMessageTask(ContactMessagePayload{Name: "Ada", Email: "ada@example.com", Message: "hi", CorrelationID: "c-1"})
	if err != nil {
		t.Fatalf("NewContactMessageTask: %v", err)
	}
	if task.Type() != TypeContactMessage {
		t.Fatalf("type = %q, want %q", task.Type(), TypeContactMessage)
	}

	var got ContactMessagePayload
	if err := json.Unmarshal(task.Payload(), &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.Email != "ada@example.com" || got.CorrelationID != "c-1" {
		t.Fatalf("unexpected payload %+v", got)
	}
}
