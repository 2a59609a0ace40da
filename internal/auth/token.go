package auth

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/secrets"
)

// TokenTTL is the fixed validity window of every issued token. Expiry is
// always recomputed at issuance, never taken from caller input or extended
// from a previous token.
const TokenTTL = time.Hour

var (
	// ErrInvalidToken is the single opaque failure returned by Decode.
	// Expired, not yet valid, bad signature, wrong algorithm and malformed
	// structure all collapse into it so callers cannot build an oracle.
	ErrInvalidToken = errors.New("invalid token")

	// ErrNoSigningMaterial indicates the secret store holds no material
	// matching the manager's bound algorithm.
	ErrNoSigningMaterial = errors.New("signing material unavailable")
)

// RoleSource resolves the live role set of a user. Role membership is
// authoritative from storage, not from the token payload, so revocation
// takes effect without waiting for token expiry.
type RoleSource interface {
	RolesOf(ctx context.Context, userID string) ([]domain.Role, error)
}

// Claims is the signed token payload. The subject is the stable user ID;
// names and emails may change, IDs must not.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the stable user identifier carried in the subject claim.
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenManager issues and validates bearer tokens. The signing algorithm is
// bound once at construction from the material variant then active: HS256
// for a shared secret, ES256 for a keypair. Tokens declaring any other
// algorithm are rejected before signature verification.
type TokenManager struct {
	store  *secrets.Store
	roles  RoleSource
	method jwt.SigningMethod
}

// NewTokenManager binds the manager to the store's current material variant.
func NewTokenManager(store *secrets.Store, roles RoleSource) (*TokenManager, error) {
	material := store.Load()
	if material == nil {
		return nil, ErrNoSigningMaterial
	}

	var method jwt.SigningMethod
	switch material.Kind {
	case secrets.KindSharedSecret:
		method = jwt.SigningMethodHS256
	case secrets.KindKeyPair:
		method = jwt.SigningMethodES256
	default:
		return nil, ErrNoSigningMaterial
	}

	return &TokenManager{store: store, roles: roles, method: method}, nil
}

// Issue signs a fresh token for the user with iat = nbf = now and
// exp = now + TokenTTL. The current material is fetched from the store at
// call time so rotation applies immediately.
func (tm *TokenManager) Issue(userID string) (string, time.Time, error) {
	key, err := tm.signingKey(tm.store.Load())
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now()
	expiresAt := now.Add(TokenTTL)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(tm.method, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Decode verifies the token against the store's current material and
// returns its claims. The declared algorithm must match the bound one, and
// nbf <= now <= exp must hold. Every failure is ErrInvalidToken.
func (tm *TokenManager) Decode(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != tm.method.Alg() {
			return nil, ErrInvalidToken
		}
		return tm.verificationKey(tm.store.Load())
	}, jwt.WithValidMethods([]string{tm.method.Alg()}))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authorize decodes the token and tests the subject's live role set for the
// required role. Claims are returned only when the caller is admitted.
func (tm *TokenManager) Authorize(ctx context.Context, token string, required domain.Role) (*Claims, bool) {
	claims, err := tm.Decode(token)
	if err != nil {
		return nil, false
	}
	roles, err := tm.roles.RolesOf(ctx, claims.UserID())
	if err != nil {
		return nil, false
	}
	if !domain.HasRole(roles, required) {
		return nil, false
	}
	return claims, true
}

// ValidateLevel reports whether the token's subject currently holds the
// required role. Decode failures yield false, never an error.
func (tm *TokenManager) ValidateLevel(ctx context.Context, token string, required domain.Role) bool {
	_, ok := tm.Authorize(ctx, token, required)
	return ok
}

// Reissue mints a brand-new token for the subject of a still-valid token.
// Only the identity is carried forward; the expiry is recomputed.
func (tm *TokenManager) Reissue(token string) (string, time.Time, error) {
	claims, err := tm.Decode(token)
	if err != nil {
		return "", time.Time{}, err
	}
	return tm.Issue(claims.UserID())
}

func (tm *TokenManager) signingKey(material *secrets.Material) (any, error) {
	if material == nil {
		return nil, ErrNoSigningMaterial
	}
	switch {
	case tm.method == jwt.SigningMethodHS256 && material.Kind == secrets.KindSharedSecret:
		return material.Secret, nil
	case tm.method == jwt.SigningMethodES256 && material.Kind == secrets.KindKeyPair:
		return jwt.ParseECPrivateKeyFromPEM(material.PrivateKeyPEM)
	}
	return nil, ErrNoSigningMaterial
}

func (tm *TokenManager) verificationKey(material *secrets.Material) (any, error) {
	if material == nil {
		return nil, ErrNoSigningMaterial
	}
	switch {
	case tm.method == jwt.SigningMethodHS256 && material.Kind == secrets.KindSharedSecret:
		return material.Secret, nil
	case tm.method == jwt.SigningMethodES256 && material.Kind == secrets.KindKeyPair:
		return jwt.ParseECPublicKeyFromPEM(material.PublicKeyPEM)
	}
	return nil, ErrNoSigningMaterial
}
