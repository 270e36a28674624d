package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"npcgate/gateway/pkg/bridge"
	"npcgate/gateway/pkg/proxy/types"
	"npcgate/gateway/pkg/security/auth"
	"npcgate/gateway/pkg/telemetry/logging"
)

// DialogSettings are the reloadable knobs of the dialog routes.
type DialogSettings struct {
	Env            string
	MaxInputChars  int
	EmotionTimeout time.Duration
	GPTTimeout     time.Duration
	DefaultLocale  string
}

// DialogHandler serves /v1/dialog/ping and /v1/dialog/generate. Both routes
// expect the auth middleware to have run.
type DialogHandler struct {
	bridge   Bridge
	settings atomic.Pointer[DialogSettings]
	logger   *slog.Logger
	now      func() time.Time
}

// NewDialogHandler creates the dialog handler.
func NewDialogHandler(b Bridge, settings DialogSettings, logger *slog.Logger) *DialogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &DialogHandler{
		bridge: b,
		logger: logger.With("component", "dialog"),
		now:    time.Now,
	}
	h.Update(settings)
	return h
}

// Update swaps the settings used by subsequent requests.
func (h *DialogHandler) Update(settings DialogSettings) {
	h.settings.Store(&settings)
}

// Ping answers with the authentication outcome. It never touches the worker.
func (h *DialogHandler) Ping(w http.ResponseWriter, r *http.Request) {
	rid := logging.GetRequestID(r.Context())
	if rid == "" {
		rid = "-"
	}

	types.WriteJSON(w, http.StatusOK, types.PingResponse{
		OK:   true,
		Auth: authMethod(r),
		RID:  rid,
		Env:  h.settings.Load().Env,
	})
}

// Generate runs the emotion task and then the gpt task, returning both
// results untouched.
func (h *DialogHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings := h.settings.Load()
	start := h.now()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		types.WriteError(w, types.NewInvalidRequestError("failed to read request body", "", types.CodeInvalidJSON))
		return
	}

	var req types.DialogRequest
	if err := json.Unmarshal(body, &req); err != nil {
		types.WriteError(w, types.NewInvalidRequestError("invalid JSON: "+err.Error(), "", types.CodeInvalidJSON))
		return
	}
	req.Normalize(settings.DefaultLocale)
	if errResp := req.Validate(settings.MaxInputChars); errResp != nil {
		types.WriteError(w, errResp)
		return
	}

	emotion, err := h.bridge.Submit(ctx, bridge.TaskEmotion, types.EmotionTask{
		Text:   req.DialogText,
		Locale: req.Locale,
	}, settings.EmotionTimeout)
	if err != nil {
		h.logger.WarnContext(ctx, "emotion task failed", "error", err, "player_id", req.PlayerID)
		types.WriteError(w, types.FromBridgeError("Emotion", err))
		return
	}
	emotionDone := h.now()

	dialog, err := h.bridge.Submit(ctx, bridge.TaskGPT, types.GPTTask{
		DialogText: req.DialogText,
		Emotion:    emotion,
		Persona:    req.NPCPersona,
		GameState:  req.GameState,
		Locale:     req.Locale,
	}, settings.GPTTimeout)
	if err != nil {
		h.logger.WarnContext(ctx, "gpt task failed", "error", err, "player_id", req.PlayerID)
		types.WriteError(w, types.FromBridgeError("GPT", err))
		return
	}
	end := h.now()

	types.WriteJSON(w, http.StatusOK, types.DialogResponse{
		Emotion:   emotion,
		Dialog:    dialog,
		RequestID: logging.GetRequestID(ctx),
		LatencyMS: end.Sub(start).Milliseconds(),
		Auth:      authMethod(r),
		Usage: types.UsageInfo{
			EmotionMS: emotionDone.Sub(start).Milliseconds(),
			GPTMS:     end.Sub(emotionDone).Milliseconds(),
		},
	})
}

func authMethod(r *http.Request) string {
	if sc, ok := auth.GetSecurityContext(r.Context()); ok {
		return string(sc.Method)
	}
	return string(auth.MethodNone)
}
