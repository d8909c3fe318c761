package openai

import (
	"encoding/json"
	"fmt"
	"strings"
)

const triageSystemPrompt = `You are a medical triage assistant for an Indian hospital finder. Classify the patient's description. Return ONLY valid JSON with this schema:
{
  "urgency": string (one of "HIGH", "MEDIUM", "LOW"),
  "specialties": string[] (1-3 hospital departments, e.g. "Cardiology", "General Medicine"),
  "explanation": string (1-2 short sentences in simple language),
  "confidence": number (0.0-1.0)
}
Use HIGH only for conditions needing emergency care now. Do not diagnose and do not suggest medication.`

// triagePayload is the JSON the model is asked to produce
type triagePayload struct {
	Urgency     string   `json:"urgency"`
	Specialties []string `json:"specialties"`
	Explanation string   `json:"explanation"`
	Confidence  *float64 `json:"confidence"`
}

func buildTriageUserPrompt(text string) string {
	return fmt.Sprintf("Patient description: %s\n", text)
}

// stripCodeFence removes a surrounding Markdown code block if present
func stripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}

func parseTriagePayload(data []byte) (*triagePayload, error) {
	var payload triagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse triage payload: %w", err)
	}
	return &payload, nil
}
