package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCert(t *testing.T, dir, name, cn string, notAfter time.Time) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             notAfter.Add(-48 * time.Hour),
		NotAfter:              notAfter,
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), pemBytes, 0o600))
}

func TestPoolSkipsExpired(t *testing.T) {
	dir := t.TempDir()
	writeCert(t, dir, "valid.pem", "valid-ca", time.Now().Add(24*time.Hour))
	writeCert(t, dir, "old.crt", "old-ca", time.Now().Add(-time.Hour))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("ignored"), 0o600))

	cm := NewCertManager(dir)
	certs, err := cm.LoadCertificates()
	require.NoError(t, err)
	assert.Len(t, certs, 2)

	pool, expired, err := cm.Pool()
	require.NoError(t, err)
	assert.NotNil(t, pool)
	assert.Equal(t, []string{"old-ca"}, expired)
}

func TestLoadRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.pem"), []byte("not a cert"), 0o600))
	_, err := NewCertManager(dir).LoadCertificates()
	assert.Error(t, err)
}
