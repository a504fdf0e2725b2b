package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"recolector/internal/auth"
	"recolector/internal/notify"
	"recolector/internal/pages"
	"recolector/internal/theme"
)

// SessionStore is what the shell needs from the session.
type SessionStore interface {
	pages.Session
	pages.Authenticator
	Logout(ctx context.Context)
}

// Shell serves the collector screens as JSON over a local HTTP listener.
type Shell struct {
	store   SessionStore
	backend pages.Backend
	queue   *notify.Queue
	theme   *theme.Service
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewShell(store SessionStore, backend pages.Backend, queue *notify.Queue, th *theme.Service, log logrus.FieldLogger) *Shell {
	return &Shell{store: store, backend: backend, queue: queue, theme: th, log: log, now: time.Now}
}

func (s *Shell) deps() pages.Deps {
	return pages.Deps{Backend: s.backend, Session: s.store, Notifier: s.queue}
}

// NewRouter builds the route table. Everything but health, login,
// notifications and theme sits behind the session gate.
func (s *Shell) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
	}).Methods("GET")
	r.HandleFunc("/login", s.LoginHandler).Methods("POST")
	r.HandleFunc("/notifications", s.NotificationsHandler).Methods("GET")
	r.HandleFunc("/notifications/{id}", s.DismissHandler).Methods("DELETE")
	r.HandleFunc("/theme/toggle", s.ThemeToggleHandler).Methods("POST")

	p := r.NewRoute().Subrouter()
	p.Use(s.gate)
	p.HandleFunc("/", s.DashboardHandler).Methods("GET")
	p.HandleFunc("/dashboard", s.DashboardHandler).Methods("GET")
	p.HandleFunc("/generar-qr", s.CatalogHandler).Methods("GET")
	p.HandleFunc("/generar-qr", s.GenerateHandler).Methods("POST")
	p.HandleFunc("/generar-qr/estimate", s.EstimateHandler).Methods("GET")
	p.HandleFunc("/mis-qrs", s.CodesHandler).Methods("GET")
	p.HandleFunc("/mis-qrs/{codigo}/qr.png", s.QRImageHandler).Methods("GET")
	p.HandleFunc("/entregas", s.PendingHandler).Methods("GET")
	p.HandleFunc("/entregas/{id:[0-9]+}/entregar", s.DeliverHandler).Methods("POST")
	p.HandleFunc("/historial-entregas", s.HistoryHandler).Methods("GET")
	p.HandleFunc("/residuos", s.WasteHandler).Methods("GET")
	p.HandleFunc("/perfil", s.ProfileHandler).Methods("GET")
	p.HandleFunc("/perfil", s.UpdateProfileHandler).Methods("PUT")
	p.HandleFunc("/perfil/password", s.PasswordHandler).Methods("PATCH")
	p.HandleFunc("/header", s.HeaderHandler).Methods("GET")
	p.HandleFunc("/logout", s.LogoutHandler).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})
	return r
}

// gate holds protected routes while the session is restoring and sends
// anonymous callers to the login screen.
func (s *Shell) gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := s.store.Snapshot()
		switch {
		case snap.Loading || snap.State == auth.StateUnknown:
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		case !snap.Authenticated():
			writeJSON(w, http.StatusUnauthorized, map[string]string{"redirect": "/login"})
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (s *Shell) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"elapsed": time.Since(start).String(),
		}).Debug("shell request")
	})
}
