package tools

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// LineClient talks to the LINE Messaging API. The zero BaseURL means the
// production endpoint; tests point it (or LINE_API_BASE) at a fake server.
type LineClient struct {
	AccessToken string
	BaseURL     string
}

func (c LineClient) base() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if v := strings.TrimSpace(os.Getenv("LINE_API_BASE")); v != "" {
		return v
	}
	return "https://api.line.me"
}

// TextMessage is a LINE text message, optionally carrying quick-reply buttons.
type TextMessage struct {
	Type       string      `json:"type"`
	Text       string      `json:"text"`
	QuickReply *QuickReply `json:"quickReply,omitempty"`
}

type QuickReply struct {
	Items []QuickReplyItem `json:"items"`
}

type QuickReplyItem struct {
	Type   string           `json:"type"`
	Action QuickReplyAction `json:"action"`
}

type QuickReplyAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

func NewText(text string) TextMessage {
	return TextMessage{Type: "text", Text: text}
}

// NewTextWithChoices builds a text message whose quick-reply buttons send the
// choice string back verbatim.
func NewTextWithChoices(text string, choices []string) TextMessage {
	items := make([]QuickReplyItem, 0, len(choices))
	for _, choice := range choices {
		items = append(items, QuickReplyItem{
			Type:   "action",
			Action: QuickReplyAction{Type: "message", Label: choice, Text: choice},
		})
	}
	return TextMessage{Type: "text", Text: text, QuickReply: &QuickReply{Items: items}}
}

// ValidateLineSignature checks the X-Line-Signature header value: the
// base64-encoded HMAC-SHA256 of the raw request body under the channel secret.
func ValidateLineSignature(body []byte, secret, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Reply answers an inbound event via its reply token.
func (c LineClient) Reply(ctx context.Context, replyToken string, messages ...TextMessage) error {
	payload := map[string]any{
		"replyToken": replyToken,
		"messages":   messages,
	}
	return c.post(ctx, "/v2/bot/message/reply", payload)
}

// Push sends messages directly to a user, outside any reply window.
func (c LineClient) Push(ctx context.Context, to string, messages ...TextMessage) error {
	payload := map[string]any{
		"to":       to,
		"messages": messages,
	}
	return c.post(ctx, "/v2/bot/message/push", payload)
}

// GetProfile returns the user's display name.
func (c LineClient) GetProfile(ctx context.Context, userID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base()+"/v2/bot/profile/"+userID, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("line profile error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var parsed struct {
		DisplayName string `json:"displayName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	return parsed.DisplayName, nil
}

func (c LineClient) post(ctx context.Context, path string, payload any) error {
	b, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base()+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("line api error: path=%s status=%d body=%s", path, resp.StatusCode, string(body))
	}
	return nil
}
