package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"concierge/models"

	openai "github.com/sashabaranov/go-openai"
)

func openaiAPIBase() string {
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_BASE")); v != "" {
		return v
	}
	return "https://api.openai.com/v1"
}

type gptBackend struct{}

func (gptBackend) generate(ctx context.Context, s models.ResolvedSettings, history []Turn, message string) (Reply, error) {
	fileContent := ""
	if s.ReferenceFileURL != "" {
		if b := fetchReference(ctx, s.ReferenceFileURL); b != nil {
			fileContent = string(b)
		}
	}
	system := buildSystemContent(s, fileContent)

	if isReasoningModel(s.GPTModelName) {
		return gptResponses(ctx, s, history, system, message)
	}
	return gptChat(ctx, s, history, system, message)
}

// The gpt-5 family runs on the Responses API with reasoning controls; every
// other model name goes through classic chat completions.
func isReasoningModel(model string) bool {
	return strings.Contains(model, "gpt-5")
}

func buildSystemContent(s models.ResolvedSettings, fileContent string) string {
	return s.SystemPrompt + "\n\nReference:\n" + s.ReferenceText + "\n\nFile content:\n" + fileContent
}

// gptResponses performs a stateless single-shot Responses API call. Instead of
// replaying history it threads previous_response_id, letting the provider keep
// the reasoning context server side; the response id becomes the next handle.
func gptResponses(ctx context.Context, s models.ResolvedSettings, history []Turn, system, message string) (Reply, error) {
	effort := s.GPTReasoningEffort
	if effort == "" {
		effort = "none"
	}
	verbosity := s.GPTVerbosity
	if verbosity == "" {
		verbosity = "medium"
	}

	reqBody := map[string]any{
		"model":     s.GPTModelName,
		"input":     "System: " + system + "\nUser: " + message,
		"reasoning": map[string]any{"effort": effort},
		"text":      map[string]any{"verbosity": verbosity},
	}
	if prev := latestContinuation(history); prev != "" {
		reqBody["previous_response_id"] = prev
	}

	b, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiAPIBase()+"/responses", bytes.NewReader(b))
	if err != nil {
		return Reply{}, &BackendError{Message: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+s.GPTAPIKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Reply{}, &BackendError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return Reply{}, &BackendError{Message: fmt.Sprintf("openai error %d: %s", resp.StatusCode, string(body))}
	}

	var parsed struct {
		ID    string `json:"id"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Output []struct {
			Type    string `json:"type"`
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Reply{}, &BackendError{Message: err.Error()}
	}
	if parsed.Error != nil {
		return Reply{}, &BackendError{Message: parsed.Error.Message}
	}

	var sb strings.Builder
	for _, item := range parsed.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, c := range item.Content {
				if c.Type == "output_text" && strings.TrimSpace(c.Text) != "" {
					if sb.Len() > 0 {
						sb.WriteString("\n")
					}
					sb.WriteString(c.Text)
				}
			}
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return Reply{}, &BackendError{Message: "empty response from model (no output_text items found)"}
	}
	return Reply{Text: out, ContinuationID: parsed.ID}, nil
}

// gptChat replays the history through the chat-completions endpoint: system
// message first, prior turns oldest to newest, then the current message.
func gptChat(ctx context.Context, s models.ResolvedSettings, history []Turn, system, message string) (Reply, error) {
	cfg := openai.DefaultConfig(s.GPTAPIKey)
	cfg.BaseURL = openaiAPIBase()
	client := openai.NewClientWithConfig(cfg)

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, t := range history {
		role := openai.ChatMessageRoleUser
		if t.Sender == models.TURN_SENDER_AI {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Message})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	req := openai.ChatCompletionRequest{
		Model:    s.GPTModelName,
		Messages: messages,
	}
	// o1/o3 reject max_tokens and temperature.
	if strings.HasPrefix(s.GPTModelName, "o1") || strings.HasPrefix(s.GPTModelName, "o3") {
		req.MaxCompletionTokens = s.GPTMaxTokens
	} else {
		req.MaxTokens = s.GPTMaxTokens
		req.Temperature = float32(s.GPTTemperature)
	}

	completion, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Reply{}, &BackendError{Message: err.Error()}
	}
	if len(completion.Choices) == 0 {
		return Reply{}, &BackendError{Message: "empty response from model (no choices)"}
	}
	return Reply{Text: completion.Choices[0].Message.Content}, nil
}
