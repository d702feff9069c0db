// Package apierror maps internal errors to the JSON error envelope and an
// HTTP status.
package apierror

import (
	"context"
	"errors"
	"net/http"

	"github.com/kaiwa-go/kaiwa/pkg/core"
	"github.com/kaiwa-go/kaiwa/pkg/core/providers/gemini"
	"github.com/kaiwa-go/kaiwa/pkg/core/translate/deepl"
)

type Envelope struct {
	Error *core.Error `json:"error"`
}

func FromError(err error, requestID string) (*core.Error, int) {
	if err == nil {
		return nil, http.StatusOK
	}

	// Context timeouts/cancellation.
	if errors.Is(err, context.DeadlineExceeded) {
		return &core.Error{
			Type:      core.ErrTransport,
			Message:   "request timeout",
			RequestID: requestID,
		}, http.StatusGatewayTimeout
	}
	if errors.Is(err, context.Canceled) {
		return &core.Error{
			Type:      core.ErrTransport,
			Message:   "request cancelled",
			RequestID: requestID,
		}, http.StatusRequestTimeout
	}

	// Already canonical.
	var coreErr *core.Error
	if errors.As(err, &coreErr) && coreErr != nil {
		out := *coreErr
		out.RequestID = requestID
		return &out, statusFromType(coreErr.Type)
	}

	// Upstream errors.
	var geminiErr *gemini.Error
	if errors.As(err, &geminiErr) && geminiErr != nil {
		return &core.Error{
			Type:      core.ErrTransport,
			Message:   geminiErr.Message,
			RequestID: requestID,
			Upstream:  geminiErr.ProviderError,
		}, http.StatusBadGateway
	}

	var deeplErr *deepl.Error
	if errors.As(err, &deeplErr) && deeplErr != nil {
		status := http.StatusBadGateway
		if deeplErr.StatusCode == http.StatusInternalServerError {
			status = http.StatusInternalServerError
		}
		return &core.Error{
			Type:      core.ErrTransport,
			Message:   deeplErr.Message,
			RequestID: requestID,
		}, status
	}

	// Unknown errors: treat as internal (do not leak details by default).
	return &core.Error{
		Type:      core.ErrTransport,
		Message:   "internal error",
		RequestID: requestID,
	}, http.StatusInternalServerError
}

func statusFromType(t core.ErrorType) int {
	switch t {
	case core.ErrInvalidInput:
		return http.StatusBadRequest
	case core.ErrSessionBusy:
		return http.StatusConflict
	case core.ErrTransport:
		return http.StatusBadGateway
	case core.ErrRateLimit:
		return http.StatusTooManyRequests
	case core.ErrParse, core.ErrTranslationUnavailable:
		// Recovered internally; surfacing one is a bug, not a client error.
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
