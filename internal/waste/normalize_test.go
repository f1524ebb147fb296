package waste

import (
	"strings"
	"testing"
)

func TestNormalize_StructuredValidCategories(t *testing.T) {
	for _, c := range All {
		raw := `{"category": "` + string(c) + `", "confidence": 0.92, "reasoning": "test"}`
		rec, outcome := Normalize(raw)

		if rec.Category != c {
			t.Errorf("category %s: got %s", c, rec.Category)
		}
		if outcome != OutcomeStructured {
			t.Errorf("category %s: outcome = %s, want structured", c, outcome)
		}
		if rec.Confidence != 0.92 {
			t.Errorf("category %s: confidence = %v, want 0.92", c, rec.Confidence)
		}
		if rec.Rationale != "test" {
			t.Errorf("category %s: rationale = %q", c, rec.Rationale)
		}
	}
}

func TestNormalize_StructuredFencedJSON(t *testing.T) {
	raw := "```json\n{\"category\": \"sharp\", \"confidence\": 0.9, \"reasoning\": \"needle visible\"}\n```"
	rec, outcome := Normalize(raw)

	if rec.Category != CategorySharp {
		t.Errorf("category = %s, want sharp", rec.Category)
	}
	if outcome != OutcomeStructured {
		t.Errorf("outcome = %s, want structured", outcome)
	}
}

func TestNormalize_StructuredInvalidCategory(t *testing.T) {
	raw := `{"category": "radioactive", "confidence": 0.7, "reasoning": "glowing"}`
	rec, outcome := Normalize(raw)

	if rec.Category != DefaultCategory {
		t.Errorf("category = %s, want default", rec.Category)
	}
	if outcome != OutcomeInvalidCategory {
		t.Errorf("outcome = %s, want invalid_category", outcome)
	}
	// Supplied confidence and reasoning survive the substitution.
	if rec.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", rec.Confidence)
	}
	if rec.Rationale != "glowing" {
		t.Errorf("rationale = %q, want preserved reasoning", rec.Rationale)
	}
}

func TestNormalize_StructuredMissingFields(t *testing.T) {
	rec, outcome := Normalize(`{"category": "infectious"}`)

	if rec.Category != CategoryInfectious {
		t.Errorf("category = %s, want infectious", rec.Category)
	}
	if outcome != OutcomeStructured {
		t.Errorf("outcome = %s, want structured", outcome)
	}
	if rec.Confidence != 0.8 {
		t.Errorf("confidence = %v, want default 0.8", rec.Confidence)
	}
	if rec.Rationale == "" {
		t.Error("rationale should be filled with a default")
	}
}

func TestNormalize_MalformedJSON(t *testing.T) {
	cases := []string{
		`{"category": "red"`,
		`{`,
		"```json\nnot json at all\n```",
		`{"category": }`,
	}
	for _, raw := range cases {
		rec, outcome := Normalize(raw)

		if rec.Category != DefaultCategory {
			t.Errorf("%q: category = %s, want default", raw, rec.Category)
		}
		if rec.Confidence != 0.5 {
			t.Errorf("%q: confidence = %v, want exactly 0.5", raw, rec.Confidence)
		}
		if outcome != OutcomeParseFailure {
			t.Errorf("%q: outcome = %s, want parse_failure", raw, outcome)
		}
		if !strings.Contains(rec.Rationale, "parse failed") {
			t.Errorf("%q: rationale %q should name the parse failure", raw, rec.Rationale)
		}
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	rec, outcome := Normalize("   ")

	if rec.Category != DefaultCategory {
		t.Errorf("category = %s, want default", rec.Category)
	}
	if rec.Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", rec.Confidence)
	}
	if outcome != OutcomeParseFailure {
		t.Errorf("outcome = %s, want parse_failure", outcome)
	}
}

func TestNormalize_KeywordPrecedence(t *testing.T) {
	// Text mentioning both pharmaceutical and sharp keywords resolves to
	// pharmaceutical: higher-hazard rules are checked first.
	rec, outcome := Normalize("A pharmaceutical vial next to a sharp needle")

	if rec.Category != CategoryPharmaceutical {
		t.Errorf("category = %s, want pharmaceutical", rec.Category)
	}
	if outcome != OutcomeKeywordMatch {
		t.Errorf("outcome = %s, want keyword_match", outcome)
	}
	if rec.Confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85", rec.Confidence)
	}
}

func TestNormalize_KeywordCategories(t *testing.T) {
	tests := []struct {
		text string
		want Category
	}{
		{"Infectious: Blood-Soaked Gauze. Contains bodily fluids.", CategoryInfectious},
		{"Sharp: Used Scalpel. Must go in puncture-resistant containers.", CategorySharp},
		{"General-Biomedical: Plastic Container. Goes in the yellow bin.", CategoryGeneral},
		{"Some MEDICATION packaging", CategoryPharmaceutical},
	}
	for _, tt := range tests {
		rec, _ := Normalize(tt.text)
		if rec.Category != tt.want {
			t.Errorf("%q: category = %s, want %s", tt.text, rec.Category, tt.want)
		}
		if rec.Rationale != tt.text {
			t.Errorf("%q: rationale should preserve input verbatim, got %q", tt.text, rec.Rationale)
		}
	}
}

func TestNormalize_KeywordFallback(t *testing.T) {
	rec, outcome := Normalize("an unremarkable object on a table")

	if rec.Category != DefaultCategory {
		t.Errorf("category = %s, want default", rec.Category)
	}
	if outcome != OutcomeKeywordFallback {
		t.Errorf("outcome = %s, want keyword_fallback", outcome)
	}
	if rec.ItemLabel != PlaceholderItemLabel {
		t.Errorf("item label = %q, want placeholder", rec.ItemLabel)
	}
}

func TestExtractItemLabel(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Sharp: Used Syringe. Dispose carefully", "Used Syringe"},
		{"Infectious: Blood-Soaked Gauze. Contains bodily fluids.", "Blood-Soaked Gauze"},
		{"no colon in this text", PlaceholderItemLabel},
		{"Sharp:", PlaceholderItemLabel},
		{"Sharp: " + strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		if got := extractItemLabel(tt.text); got != tt.want {
			t.Errorf("extractItemLabel(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestNormalize_ConfidenceClamped(t *testing.T) {
	rec, _ := Normalize(`{"category": "sharp", "confidence": 1.7}`)
	if rec.Confidence != 1 {
		t.Errorf("confidence = %v, want clamped to 1", rec.Confidence)
	}

	rec, _ = Normalize(`{"category": "sharp", "confidence": -0.3}`)
	if rec.Confidence != 0 {
		t.Errorf("confidence = %v, want clamped to 0", rec.Confidence)
	}
}

func TestNormalize_ProseWithLateBraceUsesKeywords(t *testing.T) {
	// A brace appearing mid-prose must not push the text down the
	// structured path.
	rec, outcome := Normalize("Sharp: Needle. See {facility log} for details.")

	if rec.Category != CategorySharp {
		t.Errorf("category = %s, want sharp", rec.Category)
	}
	if outcome != OutcomeKeywordMatch {
		t.Errorf("outcome = %s, want keyword_match", outcome)
	}
}
