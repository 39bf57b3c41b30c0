package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// generationPayload mirrors model.GenerationResult with pointer fields so a
// missing key is distinguishable from an empty string.
type generationPayload struct {
	Transcript *string `json:"transcript"`
	Summary    *string `json:"summary"`
	Language   *string `json:"language"`
}

type translationPayload struct {
	TranslatedText *string `json:"translatedText"`
}

// stripCodeFence removes a markdown json fence some models wrap around
// structured output despite the response MIME type.
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```JSON")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func decodeJSONObject(raw string, target any) error {
	text := stripCodeFence(raw)
	if text == "" {
		return fmt.Errorf("response body is empty")
	}
	decoder := json.NewDecoder(bytes.NewReader([]byte(text)))
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("response is not a valid JSON object: %w", err)
	}
	if decoder.More() {
		return fmt.Errorf("response has trailing content after the JSON object")
	}
	return nil
}

func missingFields(fields map[string]*string, order ...string) []string {
	missing := make([]string, 0, len(order))
	for _, name := range order {
		if fields[name] == nil {
			missing = append(missing, name)
		}
	}
	return missing
}
