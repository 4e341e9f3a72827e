package tools

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"concierge/models"
)

func geminiAPIBase() string {
	if v := strings.TrimSpace(os.Getenv("GEMINI_API_BASE")); v != "" {
		return v
	}
	return "https://generativelanguage.googleapis.com/v1beta"
}

type geminiBackend struct{}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

// Gemini keeps no server-side context, so the full history is replayed as
// alternating user/model contents on every call.
func (geminiBackend) generate(ctx context.Context, s models.ResolvedSettings, history []Turn, message string) (Reply, error) {
	contents := make([]geminiContent, 0, len(history)+1)
	for _, t := range history {
		role := "user"
		if t.Sender == models.TURN_SENDER_AI {
			role = "model"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: t.Message}}})
	}

	parts := []geminiPart{{Text: "System: " + s.SystemPrompt + "\nReference: " + s.ReferenceText}}
	if s.ReferenceFileURL != "" {
		if b := fetchReference(ctx, s.ReferenceFileURL); b != nil {
			mime := "text/plain"
			if strings.HasSuffix(s.ReferenceFileURL, ".pdf") {
				mime = "application/pdf"
			}
			parts = append(parts, geminiPart{InlineData: &geminiInlineData{
				MimeType: mime,
				Data:     base64.StdEncoding.EncodeToString(b),
			}})
		}
	}
	parts = append(parts, geminiPart{Text: "User: " + message})
	contents = append(contents, geminiContent{Role: "user", Parts: parts})

	generationConfig := map[string]any{
		"temperature":     s.GeminiTemperature,
		"maxOutputTokens": s.GeminiMaxTokens,
	}
	// The 2.5 generation accepts an explicit thinking budget.
	if strings.Contains(s.GeminiModelName, "2.5") {
		generationConfig["thinkingConfig"] = map[string]any{"thinkingBudget": s.GeminiThinkingBudget}
	}

	reqBody := map[string]any{
		"contents":         contents,
		"generationConfig": generationConfig,
	}
	b, _ := json.Marshal(reqBody)

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", geminiAPIBase(), s.GeminiModelName, s.GeminiAPIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return Reply{}, &BackendError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Reply{}, &BackendError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return Reply{}, &BackendError{Message: fmt.Sprintf("gemini error %d: %s", resp.StatusCode, string(body))}
	}

	var parsed struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Reply{}, &BackendError{Message: err.Error()}
	}
	if parsed.Error != nil {
		return Reply{}, &BackendError{Message: parsed.Error.Message}
	}

	for _, cand := range parsed.Candidates {
		for _, p := range cand.Content.Parts {
			if strings.TrimSpace(p.Text) != "" {
				return Reply{Text: p.Text}, nil
			}
		}
	}
	return Reply{}, &BackendError{Message: "empty response from model (no candidate text)"}
}
