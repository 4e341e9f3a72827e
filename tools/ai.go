package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"concierge/models"
)

// BackendError is a failed AI call. Its message is rendered back to the end
// user as a bot reply, so it must stay human-readable.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}

// Turn is one prior exchange line used to rebuild conversational context.
type Turn struct {
	Sender       string // models.TURN_SENDER_USER or models.TURN_SENDER_AI
	Message      string
	AIResponseID string
}

// Reply carries the assistant text plus an optional continuation handle for
// backends that preserve context server side.
type Reply struct {
	Text           string
	ContinuationID string
}

type backend interface {
	generate(ctx context.Context, s models.ResolvedSettings, history []Turn, message string) (Reply, error)
}

// Generate routes the message to the active AI backend. Both backends share
// this contract; only the wire shapes differ.
func Generate(ctx context.Context, s models.ResolvedSettings, history []Turn, message string) (Reply, error) {
	var b backend
	switch s.ActiveAI {
	case models.AI_BACKEND_GPT:
		b = gptBackend{}
	case models.AI_BACKEND_GEMINI:
		b = geminiBackend{}
	default:
		return Reply{}, &BackendError{Message: fmt.Sprintf("unknown AI backend %q", s.ActiveAI)}
	}
	return b.generate(ctx, s, history, message)
}

// latestContinuation finds the continuation handle of the most recent
// assistant turn, if any.
func latestContinuation(history []Turn) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Sender == models.TURN_SENDER_AI && history[i].AIResponseID != "" {
			return history[i].AIResponseID
		}
	}
	return ""
}

// fetchReference downloads the configured reference file. Best effort: any
// failure returns nil and the caller proceeds without the document.
func fetchReference(ctx context.Context, url string) []byte {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	return b
}
