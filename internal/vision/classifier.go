// Package vision sends waste images to Gemini for classification and
// returns the model's raw text response. The response is untrusted: the
// waste package normalizes it into a bounded record. The classifier also
// works with no API key at all, returning a canned safe-default response so
// the rest of the pipeline behaves identically offline.
package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/sortyx/sortyx-backend/internal/assets"
	"github.com/sortyx/sortyx-backend/internal/metrics"
)

// Classifier wraps a Gemini client for waste image classification.
// A nil client is valid and puts the classifier in offline mode.
type Classifier struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini API client from an API key.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return client, nil
}

// NewClassifier returns a Classifier using the given client and model.
// Pass a nil client for offline mode.
func NewClassifier(client *genai.Client, model string) *Classifier {
	if model == "" {
		model = DefaultModelName
	}
	return &Classifier{client: client, model: model}
}

// Online reports whether a Gemini client is configured.
func (c *Classifier) Online() bool {
	return c.client != nil
}

// Classify sends the image to Gemini and returns the raw response text.
// In offline mode it returns OfflineResponse() without error. API errors
// are returned to the caller, who decides whether to degrade.
func (c *Classifier) Classify(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	if c.client == nil {
		log.Warn().Msg("Gemini not configured, returning offline default classification")
		return OfflineResponse(), nil
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: assets.ClassificationSystemPrompt}},
		},
	}
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageData}},
			{Text: assets.ClassificationUserPrompt},
		},
	}}

	log.Debug().
		Str("model", c.model).
		Str("mime_type", mimeType).
		Int("image_bytes", len(imageData)).
		Msg("Starting Gemini classification call")

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	elapsed := time.Since(start)

	m := metrics.New("classify").
		Duration("GeminiApiLatencyMs", elapsed).
		Count("GeminiApiCalls")
	if err != nil {
		m.Count("GeminiApiErrors")
	}
	if resp != nil && resp.UsageMetadata != nil {
		m.Metric("GeminiInputTokens", float64(resp.UsageMetadata.PromptTokenCount), metrics.UnitCount)
		m.Metric("GeminiOutputTokens", float64(resp.UsageMetadata.CandidatesTokenCount), metrics.UnitCount)
	}
	m.Flush()

	if err != nil {
		log.Error().Err(err).Dur("duration", elapsed).Msg("Gemini classification call failed")
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil || resp.Text() == "" {
		log.Warn().Dur("duration", elapsed).Msg("Received empty response from Gemini")
		return "", fmt.Errorf("received empty response from Gemini API")
	}

	log.Debug().
		Int("response_length", len(resp.Text())).
		Dur("duration", elapsed).
		Msg("Gemini classification response received")

	return resp.Text(), nil
}

// canned is the structured response shape emitted when no model verdict is
// available, matching the JSON shape the normalizer accepts.
type canned struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// OfflineResponse is the pre-built response used when Gemini is not
// configured. It normalizes to the safe default at confidence 0.5.
func OfflineResponse() string {
	return cannedResponse("Gemini AI not configured - defaulting to General Biomedical Waste")
}

// FailureResponse is the pre-built response substituted when a Gemini call
// fails, carrying the failure into the record's rationale.
func FailureResponse(err error) string {
	return cannedResponse(fmt.Sprintf("Classification failed: %v - defaulting to General Biomedical Waste", err))
}

func cannedResponse(reason string) string {
	data, err := json.Marshal(canned{
		Category:   "general_biomedical",
		Confidence: 0.5,
		Reasoning:  reason,
	})
	if err != nil {
		// Marshal of a flat struct cannot realistically fail; keep the
		// pipeline total anyway.
		return `{"category":"general_biomedical","confidence":0.5,"reasoning":"classification unavailable"}`
	}
	return string(data)
}
