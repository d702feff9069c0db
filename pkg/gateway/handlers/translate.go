package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kaiwa-go/kaiwa/pkg/core"
	"github.com/kaiwa-go/kaiwa/pkg/core/translate/deepl"
	"github.com/kaiwa-go/kaiwa/pkg/gateway/config"
	"github.com/kaiwa-go/kaiwa/pkg/gateway/metrics"
	"github.com/kaiwa-go/kaiwa/pkg/gateway/mw"
)

type translateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// TranslateHandler exposes free-form text translation.
type TranslateHandler struct {
	Config     config.Config
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

func (h TranslateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	var req translateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.finish(w, reqID, start, core.NewInvalidInputError("invalid JSON body"), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		h.finish(w, reqID, start, core.NewInvalidInputErrorWithParam("text must not be empty", "text"), http.StatusBadRequest)
		return
	}

	if h.Config.DeepLAPIKey == "" {
		h.finish(w, reqID, start, &core.Error{
			Type:    core.ErrTransport,
			Message: "API key not configured",
		}, http.StatusInternalServerError)
		return
	}

	client := deepl.New(h.Config.DeepLAPIKey,
		deepl.WithBaseURL(h.Config.DeepLBaseURL),
		deepl.WithHTTPClient(h.HTTPClient),
	)

	translated, err := client.Translate(r.Context(), req.Text, req.SourceLang, req.TargetLang)
	if err != nil {
		coreErr, status := writeErrJSON(w, reqID, err)
		h.record(status, start)
		if h.Metrics != nil {
			h.Metrics.RecordError("translate", string(coreErr.Type))
		}
		return
	}

	writeJSON(w, http.StatusOK, translateResponse{TranslatedText: translated})
	h.record(http.StatusOK, start)
}

func (h TranslateHandler) finish(w http.ResponseWriter, reqID string, start time.Time, coreErr *core.Error, status int) {
	writeCoreErrorJSON(w, reqID, coreErr, status)
	h.record(status, start)
	if h.Metrics != nil {
		h.Metrics.RecordError("translate", string(coreErr.Type))
	}
}

func (h TranslateHandler) record(status int, start time.Time) {
	if h.Metrics == nil {
		return
	}
	h.Metrics.RecordRequest("translate", strconv.Itoa(status), time.Since(start))
}
