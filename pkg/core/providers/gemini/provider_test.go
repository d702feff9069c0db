package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kaiwa-go/kaiwa/pkg/core/types"
)

func requireTCPListen(t testing.TB) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test: TCP listen not permitted in this environment: %v", err)
	}
	ln.Close()
}

func textTurn(text string) *types.EncodedTurn {
	return &types.EncodedTurn{
		Contents: []types.Content{
			{Role: types.RoleUser, Parts: []types.Part{{Text: text}}},
		},
	}
}

func TestProvider_Name(t *testing.T) {
	p := New("test-key")
	if got := p.Name(); got != "gemini" {
		t.Errorf("Name() = %q, want %q", got, "gemini")
	}
}

func TestProvider_DefaultModel(t *testing.T) {
	p := New("test-key")
	if got := p.Model(); got != DefaultModel {
		t.Errorf("Model() = %q, want %q", got, DefaultModel)
	}
}

func TestProvider_GenerateReply(t *testing.T) {
	requireTCPListen(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		wantPath := "/models/" + DefaultModel + ":generateContent"
		if r.URL.Path != wantPath {
			t.Errorf("path = %s, want %s", r.URL.Path, wantPath)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing x-goog-api-key header")
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}

		var reqBody geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(reqBody.Contents) != 1 || reqBody.Contents[0].Parts[0].Text != "Hello" {
			t.Errorf("unexpected request contents: %+v", reqBody.Contents)
		}

		resp := map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{
						"role": "model",
						"parts": []map[string]any{
							{"text": `{"user_transcript":"Hello",`},
							{"text": `"ai_response_en":"Hi!","ai_response_jp":"やあ！"}`},
						},
					},
					"finishReason": "STOP",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))
	got, err := p.GenerateReply(context.Background(), textTurn("Hello"))
	if err != nil {
		t.Fatalf("GenerateReply: %v", err)
	}
	want := `{"user_transcript":"Hello","ai_response_en":"Hi!","ai_response_jp":"やあ！"}`
	if got != want {
		t.Errorf("reply = %q, want %q", got, want)
	}
}

func TestProvider_GenerateReply_NoCandidates(t *testing.T) {
	requireTCPListen(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))
	_, err := p.GenerateReply(context.Background(), textTurn("Hello"))
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if apiErr.Type != ErrProvider {
		t.Errorf("error type = %q, want %q", apiErr.Type, ErrProvider)
	}
}

func TestProvider_GenerateReply_ErrorMapping(t *testing.T) {
	requireTCPListen(t)
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantType   ErrorType
		retryable  bool
	}{
		{
			name:       "rate limited",
			statusCode: 429,
			body:       `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`,
			wantType:   ErrRateLimit,
			retryable:  true,
		},
		{
			name:       "unauthenticated",
			statusCode: 401,
			body:       `{"error":{"code":401,"message":"API key not valid","status":"UNAUTHENTICATED"}}`,
			wantType:   ErrAuthentication,
			retryable:  false,
		},
		{
			name:       "overloaded",
			statusCode: 503,
			body:       `{"error":{"code":503,"message":"try again later","status":"UNAVAILABLE"}}`,
			wantType:   ErrOverloaded,
			retryable:  true,
		},
		{
			name:       "bad request",
			statusCode: 400,
			body:       `{"error":{"code":400,"message":"invalid audio","status":"INVALID_ARGUMENT"}}`,
			wantType:   ErrInvalidRequest,
			retryable:  false,
		},
		{
			name:       "unparseable error body",
			statusCode: 500,
			body:       `upstream exploded`,
			wantType:   ErrProvider,
			retryable:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := New("test-key", WithBaseURL(server.URL))
			_, err := p.GenerateReply(context.Background(), textTurn("Hello"))
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("error type = %T, want *Error", err)
			}
			if apiErr.Type != tt.wantType {
				t.Errorf("error type = %q, want %q", apiErr.Type, tt.wantType)
			}
			if apiErr.IsRetryable() != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", apiErr.IsRetryable(), tt.retryable)
			}
		})
	}
}

func TestProvider_GenerateReply_ContextCanceled(t *testing.T) {
	requireTCPListen(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New("test-key", WithBaseURL(server.URL))
	_, err := p.GenerateReply(ctx, textTurn("Hello"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
