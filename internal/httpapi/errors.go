package httpapi

import (
	"encoding/json"
	"net/http"

	"signalscope/internal/protocol"
)

// Error codes carried in the message field of error envelopes.
const (
	codeNotFound          = "not_found"
	codeMethodNotAllowed  = "method_not_allowed"
	codeEncodeFailed      = "encode_failed"
	codeStreamUnsupported = "streaming_unsupported"
)

// writeError writes a consistent JSON error envelope.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(protocol.Error(msg, status))
}

// writeJSON encodes v before touching the response so encoding failures can
// still be reported as a 500 envelope.
func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logError(err, "encode response")
		writeError(w, http.StatusInternalServerError, codeEncodeFailed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(b, '\n'))
}
