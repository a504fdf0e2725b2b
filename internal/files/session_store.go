package files

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"recolector/internal/crypto"
)

// Fixed keys of the persisted session record.
const (
	TokenKey = "recolector_token"
	UserKey  = "recolector_user"
	ThemeKey = "recolector_theme"
)

// SessionFileName is the file holding the persisted keys inside the data dir.
const SessionFileName = "session.json"

// Storage is the persisted key/value record the client survives restarts with.
// Set replaces the given keys in one write; Remove deletes keys in one write.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(values map[string]string) error
	Remove(keys ...string) error
}

// FileStore keeps the record in a single JSON file, sealed with AES-GCM when a
// key is set. Every mutation rewrites the whole file through a temp file and rename.
type FileStore struct {
	filePath string
	key      []byte
	mu       sync.RWMutex
}

var sessionAAD = []byte("recolector-session")

// NewFileStore creates a store at dir/session.json (or session.json.enc when key
// is non-nil).
func NewFileStore(dir string, key []byte) *FileStore {
	name := SessionFileName
	if key != nil {
		name += ".enc"
	}
	return &FileStore{filePath: filepath.Join(dir, name), key: key}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.filePath }

func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

func (s *FileStore) Set(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		// An unreadable record is replaced rather than blocking every login.
		m = map[string]string{}
	}
	for k, v := range values {
		m[k] = v
	}
	return s.save(m)
}

func (s *FileStore) Remove(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		m = map[string]string{}
	}
	for _, k := range keys {
		delete(m, k)
	}
	if len(m) == 0 {
		if err := os.Remove(s.filePath); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return s.save(m)
}

func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	if s.key != nil {
		data, err = crypto.DecryptAESGCM(s.key, data, sessionAAD)
		if err != nil {
			return nil, fmt.Errorf("open session file: %w", err)
		}
	}
	m := map[string]string{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return m, nil
}

func (s *FileStore) save(m map[string]string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if s.key != nil {
		data, err = crypto.EncryptAESGCM(s.key, data, sessionAAD)
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), ".session-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.filePath)
}

// MemoryStore is an in-process Storage. Writes counts Set and Remove calls.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	Writes int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Writes++
	for k, v := range values {
		s.values[k] = v
	}
	return nil
}

func (s *MemoryStore) Remove(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Writes++
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

// Len reports how many keys are stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

// WriteCount returns Writes under the lock.
func (s *MemoryStore) WriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Writes
}
