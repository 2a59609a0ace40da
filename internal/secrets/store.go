package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/auth-service/internal/observability"
)

// ErrNoMaterial indicates the secrets file configures neither a shared
// secret nor a keypair.
var ErrNoMaterial = errors.New("no signing material configured")

// fileConfig mirrors the watched secrets file. The inline secret and the
// key paths are both optional, but at least one form must be present; key
// paths take precedence when both are set.
type fileConfig struct {
	JWT struct {
		Secret         string `yaml:"secret"`
		PrivateKeyPath string `yaml:"private_key_path"`
		PublicKeyPath  string `yaml:"public_key_path"`
	} `yaml:"jwt"`
}

// Store serves the currently-active signing material. Readers call Load and
// get an immutable snapshot; the watcher goroutine replaces the snapshot
// atomically on reload, so no reader ever observes torn key bytes.
type Store struct {
	path    string
	logger  *zap.Logger
	metrics *observability.Metrics

	current  atomic.Pointer[Material]
	keyPaths atomic.Pointer[[]string]
}

// NewStore loads the secrets file at path. Failure here is fatal to the
// caller: the process must not serve requests without signing capability.
func NewStore(path string, logger *zap.Logger, metrics *observability.Metrics) (*Store, error) {
	s := &Store{path: path, logger: logger, metrics: metrics}
	material, keyPaths, err := loadMaterial(path)
	if err != nil {
		return nil, fmt.Errorf("load signing material: %w", err)
	}
	s.current.Store(material)
	s.keyPaths.Store(&keyPaths)
	return s, nil
}

// Load returns the active material snapshot. It never blocks on a
// concurrent reload.
func (s *Store) Load() *Material {
	return s.current.Load()
}

// Reload re-parses the secrets file and re-reads any referenced key files,
// swapping in the new snapshot only on full success. On failure the
// previous snapshot stays authoritative and the error is returned for the
// watcher to log; it is never surfaced to readers.
func (s *Store) Reload() error {
	material, keyPaths, err := loadMaterial(s.path)
	if err != nil {
		s.metrics.RecordSecretReload(false)
		return err
	}
	s.current.Store(material)
	s.keyPaths.Store(&keyPaths)
	s.metrics.RecordSecretReload(true)
	return nil
}

// KeyPaths returns the key file paths referenced by the last successful
// load, used by the watcher to track renamed key files.
func (s *Store) KeyPaths() []string {
	if paths := s.keyPaths.Load(); paths != nil {
		return *paths
	}
	return nil
}

func loadMaterial(path string) (*Material, []string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	if cfg.JWT.PrivateKeyPath != "" || cfg.JWT.PublicKeyPath != "" {
		if cfg.JWT.PrivateKeyPath == "" || cfg.JWT.PublicKeyPath == "" {
			return nil, nil, errors.New("keypair requires both private_key_path and public_key_path")
		}
		private, err := os.ReadFile(cfg.JWT.PrivateKeyPath)
		if err != nil {
			return nil, nil, fmt.Errorf("read private key: %w", err)
		}
		public, err := os.ReadFile(cfg.JWT.PublicKeyPath)
		if err != nil {
			return nil, nil, fmt.Errorf("read public key: %w", err)
		}
		material := &Material{Kind: KindKeyPair, PrivateKeyPEM: private, PublicKeyPEM: public}
		return material, []string{cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath}, nil
	}

	if cfg.JWT.Secret != "" {
		return &Material{Kind: KindSharedSecret, Secret: []byte(cfg.JWT.Secret)}, nil, nil
	}

	return nil, nil, ErrNoMaterial
}
