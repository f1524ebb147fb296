package vision

import "os"

// Gemini Model IDs
//
// | Model Name             | API Model ID          | Use Case                      |
// |------------------------|-----------------------|-------------------------------|
// | Gemini 2.5 Flash       | gemini-2.5-flash      | Stable, balanced performance  |
// | Gemini 2.5 Flash-Lite  | gemini-2.5-flash-lite | High-throughput, lowest cost  |
// | Gemini 2.5 Pro         | gemini-2.5-pro        | High-reasoning tasks          |
const (
	// ModelGemini25Flash is stable, balanced performance.
	ModelGemini25Flash = "gemini-2.5-flash"

	// ModelGemini25FlashLite is for high-throughput, lowest cost.
	ModelGemini25FlashLite = "gemini-2.5-flash-lite"

	// ModelGemini25Pro is for high-reasoning tasks.
	ModelGemini25Pro = "gemini-2.5-pro"
)

// DefaultModelName is the default Gemini model for waste classification.
// Single-item image classification is a light task; Flash is plenty.
const DefaultModelName = ModelGemini25Flash

// GetModelName returns the Gemini model to use, resolved from the
// GEMINI_MODEL environment variable with DefaultModelName as fallback.
func GetModelName() string {
	if env := os.Getenv("GEMINI_MODEL"); env != "" {
		return env
	}
	return DefaultModelName
}
