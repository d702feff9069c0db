package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kaiwa-go/kaiwa/pkg/core"
	"github.com/kaiwa-go/kaiwa/pkg/core/providers/gemini"
	"github.com/kaiwa-go/kaiwa/pkg/core/translate/deepl"
	"github.com/kaiwa-go/kaiwa/pkg/core/types"
	"github.com/kaiwa-go/kaiwa/pkg/gateway/config"
	"github.com/kaiwa-go/kaiwa/pkg/gateway/metrics"
	"github.com/kaiwa-go/kaiwa/pkg/gateway/mw"
)

// chatRequest is the /chat request body. The history shape matches what
// the browser client round-trips.
type chatRequest struct {
	AudioBase64         string       `json:"audioBase64,omitempty"`
	AudioMIMEType       string       `json:"audioMimeType,omitempty"`
	TextMessage         string       `json:"textMessage,omitempty"`
	ConversationHistory []types.Turn `json:"conversationHistory,omitempty"`
}

// chatResponse is the reconciled record plus the updated history so a
// stateless client can replay the session on its next submission.
type chatResponse struct {
	types.DisplayTurn
	ConversationHistory []types.Turn `json:"conversationHistory"`
}

// ChatHandler runs one conversation turn per request.
type ChatHandler struct {
	Config     config.Config
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

func (h ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	reqID, _ := mw.RequestIDFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.Config.MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.finish(w, reqID, start, core.NewInvalidInputError("failed to read request body"), http.StatusBadRequest)
		return
	}

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.finish(w, reqID, start, core.NewInvalidInputError("invalid JSON body"), http.StatusBadRequest)
		return
	}

	if req.TextMessage == "" && req.AudioBase64 == "" {
		h.finish(w, reqID, start, core.NewInvalidInputError("no audio or text provided"), http.StatusBadRequest)
		return
	}
	if len(req.ConversationHistory) > h.Config.MaxHistoryTurns {
		h.finish(w, reqID, start, core.NewInvalidInputErrorWithParam("conversation history too long", "conversationHistory"), http.StatusBadRequest)
		return
	}
	if req.AudioBase64 != "" {
		decoded := base64.StdEncoding.DecodedLen(len(req.AudioBase64))
		if int64(decoded) > h.Config.MaxAudioBytes {
			h.finish(w, reqID, start, core.NewInvalidInputErrorWithParam("audio payload too large", "audioBase64"), http.StatusBadRequest)
			return
		}
	}

	if h.Config.GeminiAPIKey == "" {
		h.finish(w, reqID, start, &core.Error{
			Type:    core.ErrTransport,
			Message: "API key not configured",
		}, http.StatusInternalServerError)
		return
	}

	provider := gemini.New(h.Config.GeminiAPIKey,
		gemini.WithBaseURL(h.Config.GeminiBaseURL),
		gemini.WithModel(h.Config.GeminiModel),
		gemini.WithHTTPClient(h.HTTPClient),
	)
	translator := deepl.New(h.Config.DeepLAPIKey,
		deepl.WithBaseURL(h.Config.DeepLBaseURL),
		deepl.WithHTTPClient(h.HTTPClient),
	)

	session := core.NewSession(provider, translator,
		core.WithHistory(req.ConversationHistory),
		core.WithLogger(h.Logger),
	)

	ctx := r.Context()
	if h.Config.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Config.TurnTimeout)
		defer cancel()
	}

	result, err := session.Exchange(ctx, types.PendingTurnInput{
		Text:          req.TextMessage,
		AudioBase64:   req.AudioBase64,
		AudioMIMEType: req.AudioMIMEType,
	})
	if err != nil {
		coreErr, status := writeErrJSON(w, reqID, err)
		h.record("chat", status, start)
		if h.Metrics != nil {
			h.Metrics.RecordError("chat", string(coreErr.Type))
		}
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordTurn(result.Recovered)
	}
	writeJSON(w, http.StatusOK, chatResponse{
		DisplayTurn:         result.Display,
		ConversationHistory: result.History,
	})
	h.record("chat", http.StatusOK, start)
}

func (h ChatHandler) finish(w http.ResponseWriter, reqID string, start time.Time, coreErr *core.Error, status int) {
	writeCoreErrorJSON(w, reqID, coreErr, status)
	h.record("chat", status, start)
	if h.Metrics != nil {
		h.Metrics.RecordError("chat", string(coreErr.Type))
	}
}

func (h ChatHandler) record(endpoint string, status int, start time.Time) {
	if h.Metrics == nil {
		return
	}
	h.Metrics.RecordRequest(endpoint, strconv.Itoa(status), time.Since(start))
}
