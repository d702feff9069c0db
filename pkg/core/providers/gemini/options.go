package gemini

import "net/http"

// Option configures the Provider.
type Option func(*Provider)

// WithBaseURL sets the base URL for API requests.
// Default: https://generativelanguage.googleapis.com/v1beta
func WithBaseURL(url string) Option {
	return func(p *Provider) {
		p.baseURL = url
	}
}

// WithModel sets the model name. Default: gemini-2.5-flash
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithHTTPClient sets the HTTP client for API requests.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = client
	}
}
