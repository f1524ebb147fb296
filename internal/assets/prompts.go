// Package assets provides embedded static assets for the application.
//
// Prompt templates are stored as text files under prompts/ and embedded at
// compile time, keeping prompt wording reviewable without touching Go code.
package assets

import (
	_ "embed"
)

// ClassificationSystemPrompt frames the model as a medical waste classifier
// that must always pick one of the four categories.
//
//go:embed prompts/classification-system.txt
var ClassificationSystemPrompt string

// ClassificationUserPrompt is the per-request instruction sent alongside the
// waste image. It pins the "Category: Item. Explanation." response format
// the normalizer's free-text path expects.
//
//go:embed prompts/classification-user.txt
var ClassificationUserPrompt string
