package waste

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sortyx/sortyx-backend/internal/jsonutil"
)

// Record is one normalized classification. Immutable after creation; the
// request that produced it owns it until it is handed to the token encoder.
type Record struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
	ItemLabel  string   `json:"item_label"`
	Rationale  string   `json:"rationale"`
}

// Outcome tags how a raw response was resolved into a Record. The three
// fallback paths all land on the default category but are kept distinct so
// logs and metrics can tell a healthy model from a misbehaving one.
type Outcome int

const (
	// OutcomeStructured: valid JSON response with a recognized category.
	OutcomeStructured Outcome = iota
	// OutcomeInvalidCategory: valid JSON, but the category key was not one
	// of the four known values; default substituted, confidence and
	// reasoning preserved.
	OutcomeInvalidCategory
	// OutcomeKeywordMatch: free-text response matched a keyword rule.
	OutcomeKeywordMatch
	// OutcomeKeywordFallback: free text with no recognized keyword.
	OutcomeKeywordFallback
	// OutcomeParseFailure: response looked like JSON but could not be
	// parsed, or was empty; safe-default record returned.
	OutcomeParseFailure
)

// String returns the snake_case outcome name used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeStructured:
		return "structured"
	case OutcomeInvalidCategory:
		return "invalid_category"
	case OutcomeKeywordMatch:
		return "keyword_match"
	case OutcomeKeywordFallback:
		return "keyword_fallback"
	case OutcomeParseFailure:
		return "parse_failure"
	}
	return "unknown"
}

const (
	// keywordConfidence is the fixed confidence assigned to free-text
	// keyword matches.
	keywordConfidence = 0.85

	// fallbackConfidence is the confidence of the safe-default record.
	fallbackConfidence = 0.5

	// structuredDefaultConfidence fills in a structured response that
	// omitted its confidence field.
	structuredDefaultConfidence = 0.8

	// maxItemLabelLen bounds item labels extracted from unpunctuated text.
	maxItemLabelLen = 50

	// PlaceholderItemLabel is used when no item name can be extracted.
	PlaceholderItemLabel = "Medical Item"
)

// keywordRules is the ordered free-text classification table. First match
// wins, so order is the tie-break for text mentioning several categories:
// pharmaceutical and infectious waste carry the highest operational risk if
// misrouted to the general stream, so the more hazardous rules are checked
// first and general-biomedical is the catch-all.
//
// TODO: the ordering mirrors the deployed classifier and has not been
// reviewed by a waste-handling domain expert; revisit before certification.
var keywordRules = []struct {
	category Category
	keywords []string
}{
	{CategoryPharmaceutical, []string{"pharmaceutical", "medicine", "drug", "medication", "pill", "vaccine"}},
	{CategoryInfectious, []string{"infectious", "blood", "bodily fluid", "pathological", "culture", "contaminated"}},
	{CategorySharp, []string{"sharp", "needle", "syringe", "scalpel", "blade", "lancet", "glass"}},
	{CategoryGeneral, []string{"general", "biomedical", "plastic", "container", "bag", "tube", "mask"}},
}

// structuredResponse is the JSON shape the model is prompted to return.
// All fields are optional; Confidence is a pointer so a present-but-zero
// value is distinguishable from an absent one.
type structuredResponse struct {
	Category   string   `json:"category"`
	Confidence *float64 `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// Normalize turns raw model output into a guaranteed-valid Record. It is
// total: every input, including garbage, yields a usable record. Internal
// failures degrade to the safe default (general_biomedical, confidence 0.5)
// with a diagnostic rationale. The Outcome reports which path was taken.
func Normalize(raw string) (Record, Outcome) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return fallbackRecord("empty model response"), OutcomeParseFailure
	}

	if looksStructured(text) {
		rec, outcome := normalizeStructured(text)
		log.Debug().
			Str("outcome", outcome.String()).
			Str("category", string(rec.Category)).
			Float64("confidence", rec.Confidence).
			Msg("Normalized structured classification response")
		return rec, outcome
	}

	rec, outcome := normalizeFreeText(text)
	log.Debug().
		Str("outcome", outcome.String()).
		Str("category", string(rec.Category)).
		Str("item", rec.ItemLabel).
		Msg("Normalized free-text classification response")
	return rec, outcome
}

// looksStructured reports whether the response should be treated as JSON:
// either fenced as a code block or leading with an object brace. This is
// the trial-parse gate: free prose that merely mentions a brace later in
// the text still goes down the keyword path.
func looksStructured(text string) bool {
	if strings.HasPrefix(text, "```") {
		return true
	}
	return strings.HasPrefix(text, "{")
}

func normalizeStructured(text string) (Record, Outcome) {
	resp, err := jsonutil.ParseObject[structuredResponse](text)
	if err != nil {
		log.Warn().Err(err).Msg("Malformed structured classification response")
		return fallbackRecord("response parse failed: " + err.Error()), OutcomeParseFailure
	}

	confidence := structuredDefaultConfidence
	if resp.Confidence != nil {
		confidence = clamp01(*resp.Confidence)
	}

	rationale := resp.Reasoning
	if rationale == "" {
		rationale = "AI classification"
	}

	category, ok := ParseCategory(resp.Category)
	outcome := OutcomeStructured
	if !ok {
		// Unknown key: substitute the default bin but keep the model's
		// confidence and reasoning, which are still informative.
		log.Warn().Str("category", resp.Category).Msg("Unrecognized category in structured response, using default")
		outcome = OutcomeInvalidCategory
	}

	return Record{
		Category:   category,
		Confidence: confidence,
		ItemLabel:  PlaceholderItemLabel,
		Rationale:  rationale,
	}, outcome
}

func normalizeFreeText(text string) (Record, Outcome) {
	lower := strings.ToLower(text)

	category := DefaultCategory
	outcome := OutcomeKeywordFallback
	for _, rule := range keywordRules {
		if containsAny(lower, rule.keywords) {
			category = rule.category
			outcome = OutcomeKeywordMatch
			break
		}
	}

	return Record{
		Category:   category,
		Confidence: keywordConfidence,
		ItemLabel:  extractItemLabel(text),
		Rationale:  text,
	}, outcome
}

// extractItemLabel pulls the item name out of the prompted
// "Category: Item Name. Explanation." response format: the text after the
// first colon, cut at the first period, or at maxItemLabelLen when the
// model skipped the punctuation.
func extractItemLabel(text string) string {
	_, after, found := strings.Cut(text, ":")
	if !found {
		return PlaceholderItemLabel
	}
	after = strings.TrimSpace(after)

	if dot := strings.Index(after, "."); dot != -1 {
		after = after[:dot]
	} else if len(after) > maxItemLabelLen {
		after = after[:maxItemLabelLen]
	}

	label := strings.TrimSpace(after)
	if label == "" {
		return PlaceholderItemLabel
	}
	return label
}

// fallbackRecord is the safe default: general-biomedical at confidence 0.5
// with a rationale naming the fault. The system must always hand the
// operator a bin recommendation, and the yellow stream is the safe
// over-approximation.
func fallbackRecord(reason string) Record {
	return Record{
		Category:   DefaultCategory,
		Confidence: fallbackConfidence,
		ItemLabel:  PlaceholderItemLabel,
		Rationale:  "Classified as general biomedical waste for safety (" + reason + ")",
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
