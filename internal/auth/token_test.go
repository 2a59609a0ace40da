package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/internal/secrets"
)

type fakeRoles struct {
	mu    sync.Mutex
	roles map[string][]domain.Role
	err   error
}

func (f *fakeRoles) RolesOf(_ context.Context, userID string) ([]domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	roles, ok := f.roles[userID]
	if !ok {
		return nil, fmt.Errorf("user %s not found", userID)
	}
	return roles, nil
}

func (f *fakeRoles) set(userID string, roles []domain.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roles == nil {
		f.roles = map[string][]domain.Role{}
	}
	f.roles[userID] = roles
}

func newSharedSecretStore(t *testing.T, secret string) (*secrets.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auth_config.yaml")
	writeSecretsFile(t, path, secret)
	store, err := secrets.NewStore(path, zap.NewNop(), observability.NewMetrics())
	require.NoError(t, err)
	return store, path
}

func writeSecretsFile(t *testing.T, path, secret string) {
	t.Helper()
	content := fmt.Sprintf("jwt:\n  secret: %q\n", secret)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newKeypairStore(t *testing.T) *secrets.Store {
	t.Helper()
	dir := t.TempDir()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	privDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	privPath := filepath.Join(dir, "ec-priv.pem")
	require.NoError(t, os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: privDER}), 0o600))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPath := filepath.Join(dir, "ec-pub.pem")
	require.NoError(t, os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}), 0o600))

	configPath := filepath.Join(dir, "auth_config.yaml")
	content := fmt.Sprintf("jwt:\n  private_key_path: %s\n  public_key_path: %s\n", privPath, pubPath)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	store, err := secrets.NewStore(configPath, zap.NewNop(), observability.NewMetrics())
	require.NoError(t, err)
	return store
}

func TestIssueDecodeRoundTripSharedSecret(t *testing.T) {
	store, _ := newSharedSecretStore(t, "test-secret")
	tm, err := NewTokenManager(store, &fakeRoles{})
	require.NoError(t, err)

	token, expiresAt, err := tm.Issue("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), expiresAt, 5*time.Second)

	claims, err := tm.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
}

func TestIssueDecodeRoundTripKeypair(t *testing.T) {
	store := newKeypairStore(t)
	tm, err := NewTokenManager(store, &fakeRoles{})
	require.NoError(t, err)

	token, _, err := tm.Issue("user-2")
	require.NoError(t, err)

	claims, err := tm.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.UserID())
}

func TestDecodeRejectsAlgorithmMismatch(t *testing.T) {
	hsStore, _ := newSharedSecretStore(t, "test-secret")
	hsManager, err := NewTokenManager(hsStore, &fakeRoles{})
	require.NoError(t, err)

	esStore := newKeypairStore(t)
	esManager, err := NewTokenManager(esStore, &fakeRoles{})
	require.NoError(t, err)

	hsToken, _, err := hsManager.Issue("user-1")
	require.NoError(t, err)
	esToken, _, err := esManager.Issue("user-1")
	require.NoError(t, err)

	_, err = esManager.Decode(hsToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = hsManager.Decode(esToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeRejectsExpiredToken(t *testing.T) {
	store, _ := newSharedSecretStore(t, "test-secret")
	tm, err := NewTokenManager(store, &fakeRoles{})
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		IssuedAt:  jwt.NewNumericDate(past),
		NotBefore: jwt.NewNumericDate(past),
		ExpiresAt: jwt.NewNumericDate(past.Add(TokenTTL)),
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tm.Decode(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeRejectsNotYetValidToken(t *testing.T) {
	store, _ := newSharedSecretStore(t, "test-secret")
	tm, err := NewTokenManager(store, &fakeRoles{})
	require.NoError(t, err)

	now := time.Now()
	premature := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(30 * time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	})
	signed, err := premature.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tm.Decode(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	store, _ := newSharedSecretStore(t, "test-secret")
	tm, err := NewTokenManager(store, &fakeRoles{})
	require.NoError(t, err)

	for _, token := range []string{"", "abc", "a.b.c", "ey.ey.sig"} {
		_, err := tm.Decode(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestValidateLevelUsesLiveRoles(t *testing.T) {
	store, _ := newSharedSecretStore(t, "test-secret")
	roles := &fakeRoles{}
	roles.set("user-1", []domain.Role{domain.RoleUser})

	tm, err := NewTokenManager(store, roles)
	require.NoError(t, err)

	token, _, err := tm.Issue("user-1")
	require.NoError(t, err)

	ctx := context.Background()
	assert.True(t, tm.ValidateLevel(ctx, token, domain.RoleUser))
	assert.False(t, tm.ValidateLevel(ctx, token, domain.RoleAdmin))

	// Revoking the role invalidates the still-unexpired token on the very
	// next check.
	roles.set("user-1", nil)
	assert.False(t, tm.ValidateLevel(ctx, token, domain.RoleUser))
}

func TestValidateLevelAdminDoesNotImplyUser(t *testing.T) {
	store, _ := newSharedSecretStore(t, "test-secret")
	roles := &fakeRoles{}
	roles.set("user-1", []domain.Role{domain.RoleAdmin})

	tm, err := NewTokenManager(store, roles)
	require.NoError(t, err)

	token, _, err := tm.Issue("user-1")
	require.NoError(t, err)

	ctx := context.Background()
	assert.True(t, tm.ValidateLevel(ctx, token, domain.RoleAdmin))
	assert.False(t, tm.ValidateLevel(ctx, token, domain.RoleUser))
}

func TestValidateLevelUnknownSubject(t *testing.T) {
	store, _ := newSharedSecretStore(t, "test-secret")
	tm, err := NewTokenManager(store, &fakeRoles{})
	require.NoError(t, err)

	token, _, err := tm.Issue("ghost")
	require.NoError(t, err)

	assert.False(t, tm.ValidateLevel(context.Background(), token, domain.RoleUser))
}

func TestReissueCarriesSubjectAndRecomputesExpiry(t *testing.T) {
	store, _ := newSharedSecretStore(t, "test-secret")
	tm, err := NewTokenManager(store, &fakeRoles{})
	require.NoError(t, err)

	oldToken, _, err := tm.Issue("user-1")
	require.NoError(t, err)

	newToken, expiresAt, err := tm.Reissue(oldToken)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), expiresAt, 5*time.Second)

	claims, err := tm.Decode(newToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())

	_, _, err = tm.Reissue("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRotationInvalidatesOldTokens(t *testing.T) {
	store, path := newSharedSecretStore(t, "secret-a")
	tm, err := NewTokenManager(store, &fakeRoles{})
	require.NoError(t, err)

	oldToken, _, err := tm.Issue("user-1")
	require.NoError(t, err)

	writeSecretsFile(t, path, "secret-b")
	require.NoError(t, store.Reload())

	_, err = tm.Decode(oldToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// New issuance picks up the rotated secret without reconstruction.
	newToken, _, err := tm.Issue("user-1")
	require.NoError(t, err)
	claims, err := tm.Decode(newToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
}

func TestConcurrentDecodeDuringReload(t *testing.T) {
	store, path := newSharedSecretStore(t, "secret-a")
	tm, err := NewTokenManager(store, &fakeRoles{})
	require.NoError(t, err)

	token, _, err := tm.Issue("user-1")
	require.NoError(t, err)

	const n = 64
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			<-start
			// Each decode sees exactly one snapshot: either it verifies
			// cleanly under material A, or it fails opaquely under B.
			claims, err := tm.Decode(token)
			if err == nil {
				assert.Equal(t, "user-1", claims.UserID())
			} else {
				assert.ErrorIs(t, err, ErrInvalidToken)
			}
		}()
	}

	close(start)
	writeSecretsFile(t, path, "secret-b")
	require.NoError(t, store.Reload())
	wg.Wait()
}
