package vision

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sortyx/sortyx-backend/internal/waste"
)

func TestClassify_OfflineMode(t *testing.T) {
	c := NewClassifier(nil, "")

	if c.Online() {
		t.Error("classifier with nil client reports online")
	}

	raw, err := c.Classify(context.Background(), []byte("fake image"), "image/jpeg")
	if err != nil {
		t.Fatalf("offline Classify returned error: %v", err)
	}

	rec, outcome := waste.Normalize(raw)
	if rec.Category != waste.DefaultCategory {
		t.Errorf("offline category = %s, want default", rec.Category)
	}
	if rec.Confidence != 0.5 {
		t.Errorf("offline confidence = %v, want 0.5", rec.Confidence)
	}
	if outcome != waste.OutcomeStructured {
		t.Errorf("offline outcome = %s, want structured", outcome)
	}
}

func TestFailureResponse_NormalizesToSafeDefault(t *testing.T) {
	raw := FailureResponse(fmt.Errorf("deadline exceeded"))

	rec, _ := waste.Normalize(raw)
	if rec.Category != waste.DefaultCategory {
		t.Errorf("category = %s, want default", rec.Category)
	}
	if rec.Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", rec.Confidence)
	}
	if !strings.Contains(rec.Rationale, "deadline exceeded") {
		t.Errorf("rationale %q should carry the failure", rec.Rationale)
	}
}

func TestDefaultModelResolution(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "")
	if got := GetModelName(); got != DefaultModelName {
		t.Errorf("GetModelName() = %s, want default", got)
	}

	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	if got := GetModelName(); got != "gemini-2.5-pro" {
		t.Errorf("GetModelName() = %s, want override", got)
	}
}
