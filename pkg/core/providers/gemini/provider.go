// Package gemini implements the Model Gateway against the Google
// generative-language REST API. It translates encoded turns into Gemini's
// wire format and returns the raw text of the first candidate.
package gemini

import (
	"context"
	"net/http"

	"github.com/kaiwa-go/kaiwa/pkg/core/types"
)

const (
	// DefaultBaseURL is the default generative-language API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is the deployment's fixed model. It supports inline
	// audio input, which the conversation turns depend on.
	DefaultModel = "gemini-2.5-flash"
)

// Provider sends encoded turns to the Gemini API.
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// New creates a new Gemini provider.
func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "gemini"
}

// Model returns the configured model name.
func (p *Provider) Model() string {
	return p.model
}

// GenerateReply sends one encoded turn and returns the model's raw text.
// No retries; transient-failure policy belongs to the caller.
func (p *Provider) GenerateReply(ctx context.Context, turn *types.EncodedTurn) (string, error) {
	geminiReq := buildRequest(turn)

	respBody, err := p.doRequest(ctx, geminiReq)
	if err != nil {
		return "", err
	}

	return parseResponse(respBody)
}
