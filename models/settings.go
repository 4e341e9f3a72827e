package models

import (
	"strings"
	"time"
)

/************************************************
/**** MARK: AI BACKENDS ****/
/************************************************/
const AI_BACKEND_GPT = "gpt"
const AI_BACKEND_GEMINI = "gemini"

const DEFAULT_HANDOVER_TIMEOUT_MINUTES = 30

// Settings is the bot configuration record. Exactly one row exists (id=1);
// it is edited through the admin API and read fresh on every webhook call.
// List-shaped columns (keywords, agent ids) stay as raw comma-separated text
// here; Resolved() produces the parsed per-request view.
type Settings struct {
	ID int64 `gorm:"primary_key" json:"id"`

	LineChannelAccessToken string `gorm:"column:line_channel_access_token" json:"line_channel_access_token"`
	LineChannelSecret      string `gorm:"column:line_channel_secret" json:"line_channel_secret"`

	HandoverKeywords       string `gorm:"column:handover_keywords" json:"handover_keywords"`
	AgentIDs               string `gorm:"column:agent_ids" json:"agent_ids"`
	HandoverTimeoutMinutes int    `gorm:"column:handover_timeout_minutes" json:"handover_timeout_minutes"`

	IsAIEnabled bool   `gorm:"column:is_ai_enabled" json:"is_ai_enabled"`
	ActiveAI    string `gorm:"column:active_ai;default:'gpt'" json:"active_ai"`

	SystemPrompt     string `gorm:"column:system_prompt;type:text" json:"system_prompt"`
	ReferenceText    string `gorm:"column:reference_text;type:text" json:"reference_text"`
	ReferenceFileURL string `gorm:"column:reference_file_url" json:"reference_file_url"`

	GPTModelName       string  `gorm:"column:gpt_model_name" json:"gpt_model_name"`
	GPTAPIKey          string  `gorm:"column:gpt_api_key" json:"gpt_api_key"`
	GPTMaxTokens       int     `gorm:"column:gpt_max_tokens" json:"gpt_max_tokens"`
	GPTTemperature     float64 `gorm:"column:gpt_temperature" json:"gpt_temperature"`
	GPTReasoningEffort string  `gorm:"column:gpt_reasoning_effort" json:"gpt_reasoning_effort"`
	GPTVerbosity       string  `gorm:"column:gpt_verbosity" json:"gpt_verbosity"`

	GeminiModelName      string  `gorm:"column:gemini_model_name" json:"gemini_model_name"`
	GeminiAPIKey         string  `gorm:"column:gemini_api_key" json:"gemini_api_key"`
	GeminiMaxTokens      int     `gorm:"column:gemini_max_tokens" json:"gemini_max_tokens"`
	GeminiTemperature    float64 `gorm:"column:gemini_temperature" json:"gemini_temperature"`
	GeminiThinkingBudget int     `gorm:"column:gemini_thinking_budget" json:"gemini_thinking_budget"`

	UpdatedAt *time.Time `json:"updated_at"`
}

// ResolvedSettings is the validated, defaulted view of the settings row,
// computed once per request instead of re-parsed inline at every use.
type ResolvedSettings struct {
	Settings

	Keywords        []string
	Agents          []string
	HandoverTimeout time.Duration
}

func (s Settings) Resolved() ResolvedSettings {
	minutes := s.HandoverTimeoutMinutes
	if minutes <= 0 {
		minutes = DEFAULT_HANDOVER_TIMEOUT_MINUTES
	}
	return ResolvedSettings{
		Settings:        s,
		Keywords:        SplitKeywords(s.HandoverKeywords),
		Agents:          SplitIDs(s.AgentIDs),
		HandoverTimeout: time.Duration(minutes) * time.Minute,
	}
}

// SplitKeywords parses the configured keyword list. Full-width commas are
// accepted as separators; entries are trimmed and empties dropped.
func SplitKeywords(raw string) []string {
	return splitList(strings.ReplaceAll(raw, "，", ","))
}

// SplitIDs parses a comma-separated list of LINE user ids.
func SplitIDs(raw string) []string {
	return splitList(raw)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
