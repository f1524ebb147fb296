// Package jsonutil extracts JSON from Gemini responses that may arrive
// wrapped in markdown code fences or surrounded by prose.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes ```json ... ``` or ``` ... ``` wrapping and returns
// the fenced content, or the trimmed original text when no fences exist.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	end := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}

	// lines[0] is the opening fence (possibly with a language tag)
	return strings.TrimSpace(strings.Join(lines[1:end], "\n"))
}

// ExtractObject returns the first JSON object embedded in text, matching the
// first "{" with the last "}". Model responses sometimes lead with a
// sentence before the object, so a plain Unmarshal of the whole text fails.
func ExtractObject(text string) (string, error) {
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return "", fmt.Errorf("no JSON object found")
	}
	end := strings.LastIndex(text, "}")
	if end < start {
		return "", fmt.Errorf("no closing } found")
	}
	return text[start : end+1], nil
}

// ParseObject strips fences from raw model output, extracts the embedded
// JSON object, and unmarshals it into T.
func ParseObject[T any](raw string) (T, error) {
	var result T

	text := StripFences(raw)
	jsonStr, err := ExtractObject(text)
	if err != nil {
		return result, fmt.Errorf("%w (raw length: %d)", err, len(raw))
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		preview := jsonStr
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return result, fmt.Errorf("invalid JSON: %w (text: %s)", err, preview)
	}
	return result, nil
}
