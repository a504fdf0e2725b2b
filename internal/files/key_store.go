package files

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"recolector/internal/crypto"
)

// MasterKeyEnv overrides the master key file with a hex-encoded key.
const MasterKeyEnv = "RECOLECTOR_MASTER_KEY_HEX"

// ErrNoMasterKey is returned when neither the env var nor the key file exist.
var ErrNoMasterKey = errors.New("master key not configured")

// ReadMasterKey reads the session master key from MasterKeyEnv or, failing
// that, from path (hex, 64 chars -> 32 bytes).
func ReadMasterKey(path string) ([]byte, error) {
	h := os.Getenv(MasterKeyEnv)
	if h == "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, ErrNoMasterKey
			}
			return nil, err
		}
		h = string(data)
	}
	b, err := hex.DecodeString(strings.TrimSpace(h))
	if err != nil {
		return nil, fmt.Errorf("master key hex decode error: %w", err)
	}
	if len(b) != crypto.KeySize {
		return nil, fmt.Errorf("master key length must be %d bytes (hex %d chars)", crypto.KeySize, crypto.KeySize*2)
	}
	return b, nil
}

// WriteMasterKey generates a new key at path. It refuses to overwrite.
func WriteMasterKey(path string) error {
	if FileExists(path) {
		return fmt.Errorf("%s already exists, refusing to overwrite", path)
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(hex.EncodeToString(key)+"\n"), 0600)
}

// FileExists checks if the given file exists.
func FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}
