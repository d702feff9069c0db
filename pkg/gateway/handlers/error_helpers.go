package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kaiwa-go/kaiwa/pkg/core"
	"github.com/kaiwa-go/kaiwa/pkg/gateway/apierror"
)

func writeCoreErrorJSON(w http.ResponseWriter, reqID string, coreErr *core.Error, status int) {
	if coreErr != nil && coreErr.RequestID == "" {
		coreErr.RequestID = reqID
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apierror.Envelope{Error: coreErr})
}

func writeErrJSON(w http.ResponseWriter, reqID string, err error) (*core.Error, int) {
	coreErr, status := apierror.FromError(err, reqID)
	writeCoreErrorJSON(w, reqID, coreErr, status)
	return coreErr, status
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
