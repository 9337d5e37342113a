package kit

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Toast is a notice for page scripts to show as-is.
type Toast struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Toast     *Toast `json:"toast,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string, details any) {
	writeError(w, r, status, ErrorResponse{Error: msg, Details: details})
}

// WriteErrorToast also puts msg in an error toast, for endpoints called from
// the browser rather than by services.
func WriteErrorToast(w http.ResponseWriter, r *http.Request, status int, msg string, details any) {
	writeError(w, r, status, ErrorResponse{
		Error:   msg,
		Details: details,
		Toast:   &Toast{Kind: "error", Message: msg},
	})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, body ErrorResponse) {
	body.RequestID = chimw.GetReqID(r.Context())
	WriteJSON(w, status, body)
}
