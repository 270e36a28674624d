package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultPersona is used when a request omits npc_persona.
const DefaultPersona = "기본 NPC"

// DialogRequest is the body of POST /v1/dialog/generate.
type DialogRequest struct {
	// PlayerID identifies the player.
	PlayerID string `json:"player_id"`

	// SessionID identifies the game or conversation session.
	SessionID string `json:"session_id"`

	// DialogText is what the player said.
	DialogText string `json:"dialog_text"`

	// Locale such as "ko-KR" or "en-US".
	Locale string `json:"locale,omitempty"`

	// NPCPersona describes the NPC's role and tone.
	NPCPersona string `json:"npc_persona,omitempty"`

	// GameState is opaque game context forwarded to the worker.
	GameState map[string]any `json:"game_state,omitempty"`
}

// Normalize trims input and fills defaults.
func (r *DialogRequest) Normalize(defaultLocale string) {
	r.PlayerID = strings.TrimSpace(r.PlayerID)
	r.SessionID = strings.TrimSpace(r.SessionID)
	r.DialogText = strings.TrimSpace(r.DialogText)
	if r.Locale == "" {
		r.Locale = defaultLocale
	}
	if r.NPCPersona == "" {
		r.NPCPersona = DefaultPersona
	}
}

// Validate checks required fields and the input length limit, counted in
// characters.
func (r *DialogRequest) Validate(maxInputChars int) *ErrorResponse {
	switch {
	case r.PlayerID == "":
		return NewInvalidRequestError("player_id is required", "player_id", CodeMissingField)
	case r.SessionID == "":
		return NewInvalidRequestError("session_id is required", "session_id", CodeMissingField)
	case r.DialogText == "":
		return NewInvalidRequestError("dialog_text is required", "dialog_text", CodeMissingField)
	}

	if n := utf8.RuneCountInString(r.DialogText); n > maxInputChars {
		return NewErrorResponse(
			fmt.Sprintf("dialog_text too long (>%d chars)", maxInputChars),
			ErrorTypeRequestTooLarge, "dialog_text", CodeRequestTooLarge,
		)
	}
	return nil
}

// EmotionTask is the payload of an "emotion" task.
type EmotionTask struct {
	Text   string `json:"text"`
	Locale string `json:"locale"`
}

// GPTTask is the payload of a "gpt" task.
type GPTTask struct {
	DialogText string          `json:"dialog_text"`
	Emotion    json.RawMessage `json:"emotion"`
	Persona    string          `json:"persona"`
	GameState  map[string]any  `json:"game_state"`
	Locale     string          `json:"locale"`
}

// DialogResponse is returned by POST /v1/dialog/generate. Emotion and Dialog
// are the worker's results, passed through unchanged.
type DialogResponse struct {
	Emotion   json.RawMessage `json:"emotion"`
	Dialog    json.RawMessage `json:"dialog"`
	RequestID string          `json:"request_id"`
	LatencyMS int64           `json:"latency_ms"`
	Auth      string          `json:"auth"`
	Usage     UsageInfo       `json:"usage"`
}

// UsageInfo carries per-stage timings.
type UsageInfo struct {
	EmotionMS int64 `json:"emotion_ms"`
	GPTMS     int64 `json:"gpt_ms"`
}

// PingResponse is returned by GET /v1/dialog/ping.
type PingResponse struct {
	OK   bool   `json:"ok"`
	Auth string `json:"auth"`
	RID  string `json:"rid"`
	Env  string `json:"env"`
}
