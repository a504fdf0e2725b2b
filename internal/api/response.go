package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"recolector/internal/httpclient"
	"recolector/internal/notify"
	"recolector/internal/pages"
)

// envelope is the body of every screen response. Notifications carries the
// queue as it stands after the handler ran.
type envelope struct {
	Data          any                   `json:"data,omitempty"`
	Error         string                `json:"error,omitempty"`
	Notifications []notify.Notification `json:"notifications"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Shell) respond(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Data: data, Notifications: s.queue.List()})
}

// fail maps an error to a status. A rejected token sends the caller to login.
func (s *Shell) fail(w http.ResponseWriter, err error, data any) {
	if httpclient.IsUnauthorized(err) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"redirect": "/login"})
		return
	}
	writeJSON(w, failStatus(err), envelope{Data: data, Error: err.Error(), Notifications: s.queue.List()})
}

func failStatus(err error) int {
	var formErr *pages.FormError
	if errors.As(err, &formErr) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, pages.ErrBusy) {
		return http.StatusConflict
	}
	var apiErr *httpclient.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
