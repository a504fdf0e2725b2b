// Package auth holds the collector session: who is signed in and with which
// token. Store is the only writer of that state and of its persisted keys.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"recolector/internal/files"
	"recolector/internal/httpclient"
	"recolector/internal/models"
)

// User-facing login messages.
const (
	MsgRoleDenied  = "Acceso denegado. Solo recolectores pueden acceder."
	MsgLoginFailed = "Error al iniciar sesión"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// State is the session lifecycle: Unknown until Restore runs, then
// Authenticated or Anonymous.
type State int

const (
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Authenticator is the remote half of login and logout.
type Authenticator interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context) error
}

// Result is the outcome of Login. Message is user-facing.
type Result struct {
	Success bool
	Message string
}

// Snapshot is a read-only copy of the session for consumers.
type Snapshot struct {
	State   State
	Loading bool
	User    *models.User
}

func (s Snapshot) Authenticated() bool { return s.State == StateAuthenticated }

type Store struct {
	remote  Authenticator
	storage files.Storage
	log     logrus.FieldLogger

	mu      sync.RWMutex
	state   State
	loading bool
	user    *models.User
	token   string
	// epoch changes whenever the session is established or cleared.
	epoch uint64
	// loggingOut is the epoch an explicit Logout is ending, or zero.
	loggingOut uint64
	onExpired  []func()
}

var _ httpclient.Credentials = (*Store)(nil)

func NewStore(remote Authenticator, storage files.Storage, log logrus.FieldLogger) *Store {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Store{remote: remote, storage: storage, log: log}
}

// OnExpired registers fn to run once each time a rejected token clears the session.
func (s *Store) OnExpired(fn func()) {
	s.mu.Lock()
	s.onExpired = append(s.onExpired, fn)
	s.mu.Unlock()
}

// Restore rebuilds the session from storage. A record that is incomplete,
// undecodable or owned by another role is removed. Loading reports true while
// the record is being read.
func (s *Store) Restore() {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	user, token, ok := s.readPersisted()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if !ok {
		if err := s.storage.Remove(files.TokenKey, files.UserKey); err != nil {
			s.log.WithError(err).Warn("clear persisted session")
		}
		s.setAnonymous()
		return
	}
	s.user = user
	s.token = token
	s.state = StateAuthenticated
	s.epoch++
	s.log.WithField("user_id", user.ID).Debug("session restored")
}

func (s *Store) readPersisted() (*models.User, string, bool) {
	token, hasToken, err := s.storage.Get(files.TokenKey)
	if err != nil {
		s.log.WithError(err).Warn("read persisted token")
		return nil, "", false
	}
	raw, hasUser, err := s.storage.Get(files.UserKey)
	if err != nil {
		s.log.WithError(err).Warn("read persisted user")
		return nil, "", false
	}
	if !hasToken || !hasUser || token == "" {
		return nil, "", false
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.log.WithError(err).Warn("persisted user is not valid JSON")
		return nil, "", false
	}
	if !user.IsCollector() {
		s.log.WithField("rol", user.Rol).Warn("persisted session belongs to another role")
		return nil, "", false
	}
	return &user, token, true
}

// Login authenticates against the API. It never fails with an error; the
// Result carries the user-facing message.
func (s *Store) Login(ctx context.Context, email, password string) Result {
	resp, err := s.remote.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		s.log.WithError(err).Info("login failed")
		return Result{Message: httpclient.MessageOr(err, MsgLoginFailed)}
	}
	if resp.User == nil || resp.AccessToken == "" {
		return Result{Message: MsgLoginFailed}
	}
	if !resp.User.IsCollector() {
		s.log.WithField("rol", resp.User.Rol).Info("login refused for role")
		return Result{Message: MsgRoleDenied}
	}

	user := *resp.User
	data, err := json.Marshal(user)
	if err != nil {
		return Result{Message: MsgLoginFailed}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Set(map[string]string{files.TokenKey: resp.AccessToken, files.UserKey: string(data)}); err != nil {
		s.log.WithError(err).Warn("persist session, continuing in memory")
	}
	s.user = &user
	s.token = resp.AccessToken
	s.state = StateAuthenticated
	s.epoch++
	s.log.WithField("user_id", user.ID).Info("logged in")
	return Result{Success: true}
}

// Logout notifies the API best-effort and always clears local state. A 401
// from the logout call itself does not count as an expired session.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	authenticated := s.state == StateAuthenticated
	if authenticated {
		s.loggingOut = s.epoch
	}
	s.mu.Unlock()

	if authenticated {
		if err := s.remote.Logout(ctx); err != nil {
			s.log.WithError(err).Warn("remote logout failed")
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggingOut = 0
	s.clearLocked()
}

// UpdateUser merges patch into the session user and persists it.
func (s *Store) UpdateUser(patch models.UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated || s.user == nil {
		return ErrNotAuthenticated
	}
	updated := patch.Apply(*s.user)
	data, err := json.Marshal(updated)
	if err != nil {
		return err
	}
	if err := s.storage.Set(map[string]string{files.UserKey: string(data)}); err != nil {
		return err
	}
	s.user = &updated
	return nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{State: s.state, Loading: s.loading}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Token returns the bearer token and the epoch it belongs to.
func (s *Store) Token() (string, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.epoch
}

// Revoke clears the session if epoch is still current. Later calls for the
// same epoch are no-ops.
func (s *Store) Revoke(epoch uint64) {
	s.mu.Lock()
	if s.state != StateAuthenticated || s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	explicit := s.loggingOut == epoch
	s.clearLocked()
	hooks := append([]func(){}, s.onExpired...)
	s.mu.Unlock()

	if explicit {
		return
	}
	s.log.Warn("session expired")
	for _, fn := range hooks {
		fn()
	}
}

func (s *Store) clearLocked() {
	if err := s.storage.Remove(files.TokenKey, files.UserKey); err != nil {
		s.log.WithError(err).Warn("clear persisted session")
	}
	s.setAnonymous()
}

func (s *Store) setAnonymous() {
	s.user = nil
	s.token = ""
	s.state = StateAnonymous
	s.epoch++
}
