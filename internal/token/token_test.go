package token

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sortyx/sortyx-backend/internal/waste"
)

var testRecord = waste.Record{
	Category:   waste.CategorySharp,
	Confidence: 0.85,
	ItemLabel:  "Used Syringe",
	Rationale:  "Sharp: Used Syringe. Must go in puncture-resistant containers.",
}

func fixedEncoder() *Encoder {
	return NewEncoderWithSources(
		func() string { return "fixed-id" },
		func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) },
	)
}

func TestEncode_Deterministic(t *testing.T) {
	tok := fixedEncoder().Encode(testRecord)

	if tok.ID != "fixed-id" {
		t.Errorf("id = %q", tok.ID)
	}
	if tok.Timestamp != "2026-08-30T12:00:00Z" {
		t.Errorf("timestamp = %q", tok.Timestamp)
	}
	if tok.Category != waste.CategorySharp {
		t.Errorf("category = %s", tok.Category)
	}
	if tok.DisposalCode != "MW-SH" {
		t.Errorf("disposal code = %s", tok.DisposalCode)
	}
	if tok.BinColor != "Blue" {
		t.Errorf("bin color = %s", tok.BinColor)
	}
	if tok.Confidence != 0.85 {
		t.Errorf("confidence = %v", tok.Confidence)
	}
}

func TestEncode_UniqueIDs(t *testing.T) {
	enc := NewEncoder()
	a := enc.Encode(testRecord)
	b := enc.Encode(testRecord)

	if a.ID == b.ID {
		t.Errorf("two Encode calls produced the same id %q", a.ID)
	}
	if a.Category != b.Category || a.DisposalCode != b.DisposalCode || a.ItemLabel != b.ItemLabel {
		t.Error("category/disposal_code/item_label should be identical across encodes of the same record")
	}
}

func TestPayload_RoundTrip(t *testing.T) {
	tok := fixedEncoder().Encode(testRecord)

	payload, err := tok.Payload()
	if err != nil {
		t.Fatalf("Payload() error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded["classification"] != "sharp" {
		t.Errorf("classification = %v", decoded["classification"])
	}
	if decoded["disposal_code"] != "MW-SH" {
		t.Errorf("disposal_code = %v", decoded["disposal_code"])
	}
	if decoded["confidence"] != 0.85 {
		t.Errorf("confidence = %v", decoded["confidence"])
	}
	if decoded["item"] != "Used Syringe" {
		t.Errorf("item = %v", decoded["item"])
	}
	for _, field := range []string{"id", "bin_color", "timestamp"} {
		if _, ok := decoded[field]; !ok {
			t.Errorf("payload missing field %q", field)
		}
	}
}

func TestRender_ProducesPNG(t *testing.T) {
	png, err := Render(fixedEncoder().Encode(testRecord))
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("rendered bytes are not a PNG")
	}
}

func TestRenderDataURL_Prefix(t *testing.T) {
	url, err := RenderDataURL(fixedEncoder().Encode(testRecord))
	if err != nil {
		t.Fatalf("RenderDataURL() error: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("data URL prefix wrong: %.40s", url)
	}
}
