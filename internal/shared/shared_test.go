package shared

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == b {
		t.Error("expected distinct IDs")
	}

	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("generated ID is not a valid UUID: %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Info("hello", "key", "value")

	if buf.Len() == 0 {
		t.Error("expected log output")
	}

	child := WithLogger(logger, "job_id", "abc")
	if child == nil {
		t.Fatal("expected child logger")
	}
}
