package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreds struct {
	mu      sync.Mutex
	token   string
	epoch   uint64
	revoked []uint64
}

func (f *fakeCreds) Token() (string, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.epoch
}

func (f *fakeCreds) Revoke(epoch uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, epoch)
}

func newTestClient(t *testing.T, r *mux.Router) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL + "/api/", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestBearerAndQuery(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/api/recolector/qrs", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
		assert.NotEmpty(t, req.Header.Get(RequestIDHeader))
		assert.Equal(t, "disponible", req.URL.Query().Get("estado"))
		_ = json.NewEncoder(w).Encode([]map[string]any{{"id": 1}})
	}).Methods(http.MethodGet)

	c := newTestClient(t, r)
	c.SetCredentials(&fakeCreds{token: "tok", epoch: 1})

	var out []map[string]any
	params := struct {
		Estado string `url:"estado,omitempty"`
	}{Estado: "disponible"}
	require.NoError(t, c.Get(context.Background(), "/recolector/qrs", params, &out))
	assert.Len(t, out, 1)
}

func TestNoTokenNoHeader(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/api/login", func(w http.ResponseWriter, req *http.Request) {
		assert.Empty(t, req.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	})
	c := newTestClient(t, r)
	c.SetCredentials(&fakeCreds{})
	require.NoError(t, c.Post(context.Background(), "/login", map[string]string{"email": "x"}, nil))
}

func TestUnauthorizedRevokesWithEpoch(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/api/perfil", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthenticated."}`))
	})
	c := newTestClient(t, r)
	creds := &fakeCreds{token: "tok", epoch: 7}
	c.SetCredentials(creds)

	err := c.Get(context.Background(), "/perfil", nil, nil)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, []uint64{7}, creds.revoked)
}

func TestAPIErrorMessage(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/api/recolector/transacciones/{id}/entregar", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Ya fue entregado"}`))
	}).Methods(http.MethodPatch)
	r.HandleFunc("/api/broken", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})
	c := newTestClient(t, r)

	err := c.Patch(context.Background(), "/recolector/transacciones/5/entregar", nil, nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "Ya fue entregado", MessageOr(err, "fallback"))
	assert.False(t, IsUnauthorized(err))

	err = c.Get(context.Background(), "/broken", nil, nil)
	assert.Equal(t, "fallback", MessageOr(err, "fallback"))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)
	err = c.Get(context.Background(), "/x", nil, nil)
	var te *TransportError
	assert.True(t, errors.As(err, &te))
	assert.Equal(t, "fallback", MessageOr(err, "fallback"))
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}
