package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recolector/internal/files"
	"recolector/internal/httpclient"
	"recolector/internal/models"
	"recolector/internal/service"
)

type fakeRemote struct {
	resp      *models.LoginResponse
	err       error
	logoutErr error
	logouts   int
	onLogout  func()
}

func (f *fakeRemote) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	return f.resp, f.err
}

func (f *fakeRemote) Logout(ctx context.Context) error {
	f.logouts++
	if f.onLogout != nil {
		f.onLogout()
	}
	return f.logoutErr
}

func collector() *models.User {
	return &models.User{ID: 3, Nombre: "Rosa", Apellido: "Quispe", Email: "rosa@eco.pe", Rol: models.RoleCollector, Puntos: 10}
}

func persist(t *testing.T, st files.Storage, u models.User, token string) {
	t.Helper()
	data, err := json.Marshal(u)
	require.NoError(t, err)
	require.NoError(t, st.Set(map[string]string{files.TokenKey: token, files.UserKey: string(data)}))
}

func TestRestore(t *testing.T) {
	t.Run("collector", func(t *testing.T) {
		st := files.NewMemoryStore()
		persist(t, st, *collector(), "tok")
		s := NewStore(&fakeRemote{}, st, nil)
		assert.Equal(t, StateUnknown, s.Snapshot().State)

		s.Restore()
		snap := s.Snapshot()
		assert.True(t, snap.Authenticated())
		assert.False(t, snap.Loading)
		assert.Equal(t, "Rosa", snap.User.Nombre)
		tok, _ := s.Token()
		assert.Equal(t, "tok", tok)
	})

	t.Run("foreign role clears storage", func(t *testing.T) {
		st := files.NewMemoryStore()
		u := *collector()
		u.Rol = "cliente"
		persist(t, st, u, "tok")
		s := NewStore(&fakeRemote{}, st, nil)
		s.Restore()
		assert.Equal(t, StateAnonymous, s.Snapshot().State)
		assert.Zero(t, st.Len())
	})

	t.Run("corrupt user clears storage", func(t *testing.T) {
		st := files.NewMemoryStore()
		require.NoError(t, st.Set(map[string]string{files.TokenKey: "tok", files.UserKey: "{nope"}))
		s := NewStore(&fakeRemote{}, st, nil)
		s.Restore()
		assert.Equal(t, StateAnonymous, s.Snapshot().State)
		assert.Zero(t, st.Len())
	})

	t.Run("token without user", func(t *testing.T) {
		st := files.NewMemoryStore()
		require.NoError(t, st.Set(map[string]string{files.TokenKey: "tok"}))
		s := NewStore(&fakeRemote{}, st, nil)
		s.Restore()
		assert.Equal(t, StateAnonymous, s.Snapshot().State)
		assert.Zero(t, st.Len())
	})
}

func TestLoginClienteNeverPersists(t *testing.T) {
	st := files.NewMemoryStore()
	u := collector()
	u.Rol = "cliente"
	s := NewStore(&fakeRemote{resp: &models.LoginResponse{AccessToken: "tok", User: u}}, st, nil)
	s.Restore()
	before := st.WriteCount()

	res := s.Login(context.Background(), "c@eco.pe", "secret")
	assert.False(t, res.Success)
	assert.Equal(t, MsgRoleDenied, res.Message)
	assert.Equal(t, before, st.WriteCount())
	assert.Zero(t, st.Len())
	assert.Equal(t, StateAnonymous, s.Snapshot().State)
	tok, _ := s.Token()
	assert.Empty(t, tok)
}

func TestLoginSuccessPersists(t *testing.T) {
	st := files.NewMemoryStore()
	s := NewStore(&fakeRemote{resp: &models.LoginResponse{AccessToken: "tok", User: collector()}}, st, nil)
	res := s.Login(context.Background(), "rosa@eco.pe", "secret")
	require.True(t, res.Success)

	tok, ok, err := st.Get(files.TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", tok)
	assert.True(t, s.Snapshot().Authenticated())
}

func TestLoginRemoteMessage(t *testing.T) {
	s := NewStore(&fakeRemote{err: &httpclient.APIError{Status: 422, Message: "Credenciales inválidas"}}, files.NewMemoryStore(), nil)
	assert.Equal(t, "Credenciales inválidas", s.Login(context.Background(), "a", "b").Message)

	s = NewStore(&fakeRemote{err: errors.New("dial tcp: refused")}, files.NewMemoryStore(), nil)
	assert.Equal(t, MsgLoginFailed, s.Login(context.Background(), "a", "b").Message)
}

func TestLogoutAlwaysClears(t *testing.T) {
	st := files.NewMemoryStore()
	persist(t, st, *collector(), "tok")
	remote := &fakeRemote{logoutErr: errors.New("boom")}
	s := NewStore(remote, st, nil)
	s.Restore()

	s.Logout(context.Background())
	assert.Equal(t, 1, remote.logouts)
	assert.Equal(t, StateAnonymous, s.Snapshot().State)
	assert.Zero(t, st.Len())
}

func TestLogoutRejectedTokenIsNotExpiry(t *testing.T) {
	st := files.NewMemoryStore()
	persist(t, st, *collector(), "tok")
	remote := &fakeRemote{logoutErr: &httpclient.APIError{Status: http.StatusUnauthorized}}
	s := NewStore(remote, st, nil)
	s.Restore()
	remote.onLogout = func() {
		_, epoch := s.Token()
		s.Revoke(epoch)
	}
	expired := 0
	s.OnExpired(func() { expired++ })

	s.Logout(context.Background())
	assert.Zero(t, expired)
	assert.Equal(t, StateAnonymous, s.Snapshot().State)
	assert.Zero(t, st.Len())

	persist(t, st, *collector(), "tok")
	s.Restore()
	_, epoch := s.Token()
	s.Revoke(epoch)
	assert.Equal(t, 1, expired)
}

type blockingStorage struct {
	files.Storage
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStorage) Get(key string) (string, bool, error) {
	if key == files.TokenKey {
		close(b.entered)
		<-b.release
	}
	return b.Storage.Get(key)
}

func TestRestoreReportsLoading(t *testing.T) {
	mem := files.NewMemoryStore()
	persist(t, mem, *collector(), "tok")
	st := &blockingStorage{Storage: mem, entered: make(chan struct{}), release: make(chan struct{})}
	s := NewStore(&fakeRemote{}, st, nil)

	done := make(chan struct{})
	go func() {
		s.Restore()
		close(done)
	}()
	<-st.entered
	snap := s.Snapshot()
	assert.True(t, snap.Loading)
	assert.Equal(t, StateUnknown, snap.State)
	assert.True(t, s.Loading())

	close(st.release)
	<-done
	assert.False(t, s.Loading())
	assert.True(t, s.Snapshot().Authenticated())
}

func TestUpdateUser(t *testing.T) {
	st := files.NewMemoryStore()
	persist(t, st, *collector(), "tok")
	s := NewStore(&fakeRemote{}, st, nil)

	name := "Rosa María"
	assert.ErrorIs(t, s.UpdateUser(models.UserPatch{Nombre: &name}), ErrNotAuthenticated)

	s.Restore()
	require.NoError(t, s.UpdateUser(models.UserPatch{Nombre: &name}))
	assert.Equal(t, "Rosa María", s.Snapshot().User.Nombre)

	raw, _, _ := st.Get(files.UserKey)
	var saved models.User
	require.NoError(t, json.Unmarshal([]byte(raw), &saved))
	assert.Equal(t, "Rosa María", saved.Nombre)
	assert.Equal(t, "Quispe", saved.Apellido)
}

func TestRevokeIgnoresStaleEpoch(t *testing.T) {
	st := files.NewMemoryStore()
	remote := &fakeRemote{resp: &models.LoginResponse{AccessToken: "tok2", User: collector()}}
	persist(t, st, *collector(), "tok1")
	s := NewStore(remote, st, nil)
	s.Restore()
	_, old := s.Token()

	require.True(t, s.Login(context.Background(), "a", "b").Success)
	s.Revoke(old)
	assert.True(t, s.Snapshot().Authenticated())

	_, cur := s.Token()
	s.Revoke(cur)
	assert.Equal(t, StateAnonymous, s.Snapshot().State)
}

func TestConcurrentUnauthorizedClearsOnce(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/api/recolector/puntos", func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthenticated."}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	client, err := httpclient.New(httpclient.Options{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second})
	require.NoError(t, err)
	svc := service.New(client)

	st := files.NewMemoryStore()
	persist(t, st, *collector(), "tok")
	s := NewStore(svc, st, nil)
	client.SetCredentials(s)
	s.Restore()

	var expired atomic.Int32
	s.OnExpired(func() { expired.Add(1) })
	writesBefore := st.WriteCount()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PointsSummary(context.Background())
			assert.True(t, httpclient.IsUnauthorized(err))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), expired.Load())
	assert.Equal(t, writesBefore+1, st.WriteCount())
	assert.Equal(t, StateAnonymous, s.Snapshot().State)
}
