package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recolector/internal/httpclient"
	"recolector/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newService(t *testing.T, r *mux.Router) *Service {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	c, err := httpclient.New(httpclient.Options{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return New(c)
}

func TestLoginAndCreate(t *testing.T) {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/login", func(w http.ResponseWriter, req *http.Request) {
		var body models.LoginRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "r@x.com", body.Email)
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "tok",
			"user":         map[string]any{"id": 3, "nombre": "Rosa", "rol": "recolector", "puntos": "0"},
		})
	}).Methods(http.MethodPost)
	api.HandleFunc("/recolector/transacciones", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "Plástico", body["tipo_residuo"])
		assert.Equal(t, 2.5, body["cantidad_kg"])
		writeJSON(w, http.StatusCreated, map[string]any{
			"codigo":  "ABC123",
			"residuo": map[string]any{"tipo": "Plástico", "cantidad_kg": "2.50", "puntos": 12, "precio_por_kg": "5.00"},
		})
	}).Methods(http.MethodPost)

	s := newService(t, r)
	ctx := context.Background()

	login, err := s.Login(ctx, models.LoginRequest{Email: "r@x.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok", login.AccessToken)
	assert.True(t, login.User.IsCollector())

	created, err := s.CreateCollection(ctx, models.CreateCollectionRequest{TipoResiduo: "Plástico", CantidadKg: 2.5})
	require.NoError(t, err)
	assert.Equal(t, "ABC123", created.Codigo)
	assert.Equal(t, 12.0, created.Residuo.Puntos.Float())
}

func TestListsAndQueries(t *testing.T) {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/recolector/qrs", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "reclamado", req.URL.Query().Get("estado"))
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{{"id_transaccion": 1, "estado": "reclamado"}}})
	})
	api.HandleFunc("/tipos-residuos", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id_tipo": 1, "nombre": "Vidrio", "puntos_por_kg": "3"}})
	})
	api.HandleFunc("/recolector/residuos-recibidos", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "2024-01-01", req.URL.Query().Get("fecha_inicio"))
		assert.False(t, req.URL.Query().Has("estado"))
		writeJSON(w, http.StatusOK, map[string]any{"residuos": []map[string]any{{"id_residuo": 9, "cantidad_kg": "1.5"}}})
	})
	api.HandleFunc("/recolector/transacciones/{id}/entregar", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "42", mux.Vars(req)["id"])
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok"})
	}).Methods(http.MethodPatch)
	api.HandleFunc("/perfil", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": 3, "nombre": "Rosa", "dni": "12345678"}})
	}).Methods(http.MethodGet)

	s := newService(t, r)
	ctx := context.Background()

	codes, err := s.ListCodes(ctx, models.CodeQuery{Estado: models.StatusClaimed})
	require.NoError(t, err)
	require.Len(t, codes, 1)

	types, err := s.WasteTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3.0, types[0].PuntosPorKg.Float())

	waste, err := s.ReceivedWaste(ctx, models.WasteQuery{FechaInicio: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, 1.5, waste.Residuos[0].CantidadKg.Float())

	require.NoError(t, s.MarkDelivered(ctx, 42))

	profile, err := s.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "12345678", profile.DNI)
}

func TestErrorsPropagateUnchanged(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/api/perfil/password", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "La contraseña actual es incorrecta"})
	})
	s := newService(t, r)
	_, err := s.ChangePassword(context.Background(), models.PasswordChange{})
	require.Error(t, err)
	assert.Equal(t, "La contraseña actual es incorrecta", httpclient.MessageOr(err, "x"))
	assert.Equal(t, http.StatusUnprocessableEntity, httpclient.StatusCode(err))
}
