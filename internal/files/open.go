package files

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"recolector/internal/config"
	"recolector/internal/crypto"
	"recolector/internal/utils"
)

const sessionKeyInfo = "recolector-session"

// OpenSessionStore picks the session file key: the configured master key if
// present, otherwise one derived from the device fingerprint. If neither is
// available, or encryption is off, the record is stored in plain JSON.
func OpenSessionStore(cfg config.Session, log logrus.FieldLogger) (*FileStore, error) {
	if err := utils.EnsureDir(cfg.Dir); err != nil {
		return nil, fmt.Errorf("session dir: %w", err)
	}
	if !cfg.Encrypt {
		return NewFileStore(cfg.Dir, nil), nil
	}

	secret, err := ReadMasterKey(cfg.MasterKeyFile)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoMasterKey):
		fp, fpErr := utils.GetDeviceFingerprint()
		if fpErr != nil {
			log.WithError(fpErr).Warn("no master key and no device fingerprint, session file stored unencrypted")
			return NewFileStore(cfg.Dir, nil), nil
		}
		secret = []byte(fp)
	default:
		return nil, fmt.Errorf("master key: %w", err)
	}

	key, err := crypto.DeriveKey(secret, sessionKeyInfo)
	if err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return NewFileStore(cfg.Dir, key), nil
}
