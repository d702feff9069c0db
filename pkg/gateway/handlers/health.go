package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kaiwa-go/kaiwa/pkg/gateway/config"
)

type HealthHandler struct{}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

type ReadyHandler struct {
	Config config.Config
}

func (h ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type readyResp struct {
		OK               bool     `json:"ok"`
		GeminiConfigured bool     `json:"gemini_configured"`
		DeepLConfigured  bool     `json:"deepl_configured"`
		Model            string   `json:"model"`
		Issues           []string `json:"issues,omitempty"`
	}

	// Missing credentials degrade specific endpoints but the process is
	// still serving; only structural config problems flip readiness.
	var structural []string
	if h.Config.TurnTimeout <= 0 {
		structural = append(structural, "turn timeout must be > 0")
	}
	if h.Config.MaxBodyBytes <= 0 || h.Config.MaxAudioBytes <= 0 {
		structural = append(structural, "body and audio budgets must be > 0")
	}
	if h.Config.MaxHistoryTurns <= 0 {
		structural = append(structural, "max history turns must be > 0")
	}
	if h.Config.ReadHeaderTimeout <= 0 || h.Config.ReadTimeout <= 0 {
		structural = append(structural, "server timeouts must be > 0")
	}

	issues := make([]string, 0, len(structural)+2)
	issues = append(issues, structural...)
	if h.Config.GeminiAPIKey == "" {
		issues = append(issues, "GOOGLE_GENERATIVE_AI_API_KEY not set; /chat will answer 500")
	}
	if h.Config.DeepLAPIKey == "" {
		issues = append(issues, "DEEPL_API_KEY not set; /translate will answer 500 and fallback replies degrade to a placeholder")
	}

	ok := len(structural) == 0
	status := http.StatusOK
	if !ok {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(readyResp{
		OK:               ok,
		GeminiConfigured: h.Config.GeminiAPIKey != "",
		DeepLConfigured:  h.Config.DeepLAPIKey != "",
		Model:            h.Config.GeminiModel,
		Issues:           issues,
	})
}
