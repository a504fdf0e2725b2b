package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recolector/internal/auth"
	"recolector/internal/config"
	"recolector/internal/files"
	"recolector/internal/logging"
	"recolector/internal/pages"
	"recolector/internal/utils"
)

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func fakeRemote(t *testing.T, role string) string {
	t.Helper()
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/login", func(w http.ResponseWriter, req *http.Request) {
		reply(w, http.StatusOK, map[string]any{
			"access_token": "tok",
			"user":         map[string]any{"id": 3, "nombre": "Rosa", "apellido": "Quispe", "email": "rosa@eco.pe", "rol": role},
		})
	}).Methods("POST")
	api.HandleFunc("/recolector/puntos", func(w http.ResponseWriter, req *http.Request) {
		reply(w, http.StatusOK, map[string]any{"total_puntos_distribuidos": 120, "punto_acopio": map[string]any{"nombre": "Centro"}})
	})
	api.HandleFunc("/tipos-residuos", func(w http.ResponseWriter, req *http.Request) {
		reply(w, http.StatusOK, []map[string]any{{"id_tipo": 1, "nombre": "Plástico", "puntos_por_kg": "5.00"}})
	})
	api.HandleFunc("/recolector/transacciones", func(w http.ResponseWriter, req *http.Request) {
		reply(w, http.StatusCreated, map[string]any{
			"codigo":  "ABC123",
			"residuo": map[string]any{"tipo": "Plástico", "cantidad_kg": 2.5, "puntos": 12},
		})
	}).Methods("POST")
	api.HandleFunc("/recolector/canjes-pendientes", func(w http.ResponseWriter, req *http.Request) {
		reply(w, http.StatusOK, map[string]any{"data": []any{}})
	})
	api.HandleFunc("/recolector/transacciones/{id}/entregar", func(w http.ResponseWriter, req *http.Request) {
		reply(w, http.StatusUnprocessableEntity, map[string]string{"message": "El canje ya fue entregado"})
	}).Methods("PATCH")
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

type harness struct {
	baseURL string
	storage *files.MemoryStore
}

func (h *harness) run(t *testing.T, args ...string) (int, string) {
	t.Helper()
	rt := &cmdState{newApp: func(cfg *config.Config, out io.Writer) (*App, error) {
		return newApp(cfg, logging.Discard(), func() {}, h.storage, out)
	}}
	cmd := newRootCmd(rt)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--base-url", h.baseURL}, args...))
	err := cmd.ExecuteContext(context.Background())
	rt.close()
	return utils.ExitCode(err), buf.String()
}

func TestRequiresSession(t *testing.T) {
	h := &harness{baseURL: fakeRemote(t, "recolector"), storage: files.NewMemoryStore()}
	code, out := h.run(t, "whoami")
	assert.Equal(t, ExitNoAuth, code)
	assert.Contains(t, out, MsgNotLoggedIn)
}

func TestLoginClienteDenied(t *testing.T) {
	h := &harness{baseURL: fakeRemote(t, "cliente"), storage: files.NewMemoryStore()}
	code, out := h.run(t, "login", "-e", "c@eco.pe", "-p", "secret")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, out, auth.MsgRoleDenied)
	assert.Zero(t, h.storage.Len())
}

func TestLoginDashboardGenerate(t *testing.T) {
	h := &harness{baseURL: fakeRemote(t, "recolector"), storage: files.NewMemoryStore()}

	code, out := h.run(t, "login", "-e", "rosa@eco.pe", "-p", "secret")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, pages.MsgWelcome)

	code, out = h.run(t, "dashboard")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "¡Hola, Rosa!")
	assert.Contains(t, out, "120 pts")
	assert.Contains(t, out, "Centro")

	dir := t.TempDir()
	code, out = h.run(t, "generate", "--tipo", "Plástico", "--kg", "2.5", "--qr-out", dir)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Puntos estimados: 13")
	assert.Contains(t, out, "12 pts")
	assert.Contains(t, out, pages.MsgGenerateOK)
	assert.FileExists(t, dir+"/"+files.QRFileName("ABC123"))

	code, out = h.run(t, "generate", "--tipo", "Plástico")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, out, pages.MsgFillAllFields)
}

func TestPendingAndDeliver(t *testing.T) {
	h := &harness{baseURL: fakeRemote(t, "recolector"), storage: files.NewMemoryStore()}
	code, _ := h.run(t, "login", "-e", "rosa@eco.pe", "-p", "secret")
	require.Equal(t, 0, code)

	code, out := h.run(t, "pending")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, pages.MsgNoPending)

	code, out = h.run(t, "deliver", "7")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, out, "El canje ya fue entregado")
}

func TestThemeAndLogout(t *testing.T) {
	h := &harness{baseURL: fakeRemote(t, "recolector"), storage: files.NewMemoryStore()}
	_, out := h.run(t, "theme")
	assert.Contains(t, out, "dark")
	_, out = h.run(t, "theme", "toggle")
	assert.Contains(t, out, "light")
	code, out := h.run(t, "theme", "set", "dark")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "dark")
	v, _, _ := h.storage.Get(files.ThemeKey)
	assert.Equal(t, "dark", v)
	code, _ = h.run(t, "theme", "set", "sepia")
	assert.Equal(t, ExitFailure, code)

	code, out = h.run(t, "login", "-e", "rosa@eco.pe", "-p", "secret")
	require.Equal(t, 0, code, out)
	code, out = h.run(t, "whoami")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, h.baseURL)

	code, _ = h.run(t, "logout")
	assert.Equal(t, 0, code)
	code, _ = h.run(t, "whoami")
	assert.Equal(t, ExitNoAuth, code)
}
