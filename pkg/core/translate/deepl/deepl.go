// Package deepl implements the translation upstream against the DeepL v2
// REST API. It serves the /translate endpoint, the parse-failure fallback,
// and the transcript backfill.
package deepl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the free-tier DeepL API endpoint.
const DefaultBaseURL = "https://api-free.deepl.com"

// Client calls the DeepL v2 translate API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL sets the base URL. Paid-tier keys use https://api.deepl.com.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets the HTTP client for API requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// New creates a new DeepL client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// translateResponse is the DeepL v2 response format.
type translateResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

// Translate converts text from sourceLang to targetLang. Language codes
// are passed through as-is (DeepL expects upper-case ISO 639-1).
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if c.apiKey == "" {
		return "", &Error{StatusCode: http.StatusInternalServerError, Message: "API key not configured"}
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("source_lang", sourceLang)
	form.Set("target_lang", targetLang)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/translate", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return "", &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(out.Translations) == 0 {
		return "", &Error{StatusCode: resp.StatusCode, Message: "no translations in response"}
	}
	return out.Translations[0].Text, nil
}

// Error represents a failed DeepL API call.
type Error struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("deepl: status %d: %s", e.StatusCode, e.Message)
}
