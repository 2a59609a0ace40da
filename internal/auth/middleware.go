package auth

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/observability"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal is the authenticated identity attached to an admitted request.
// It is derived per request and never persisted.
type Principal struct {
	UserID string
	Claims *Claims
}

// Middleware gates protected routes behind a required role.
type Middleware struct {
	tokens  *TokenManager
	metrics *observability.Metrics
}

// NewMiddleware constructs the authorization gate.
func NewMiddleware(tokens *TokenManager, metrics *observability.Metrics) *Middleware {
	return &Middleware{tokens: tokens, metrics: metrics}
}

// Require admits only callers presenting a valid bearer token whose subject
// currently holds the required role. Missing header, malformed scheme,
// decode failure and absent role all produce the identical opaque 401; the
// response carries no hint about which stage failed.
func (m *Middleware) Require(required domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return m.reject()
		}
		claims, ok := m.tokens.Authorize(c.UserContext(), token, required)
		if !ok {
			return m.reject()
		}
		c.Locals(principalKey, &Principal{UserID: claims.UserID(), Claims: claims})
		return c.Next()
	}
}

func (m *Middleware) reject() error {
	m.metrics.RecordAuthRejected()
	return apperrors.NewUnauthorized(http.StatusText(http.StatusUnauthorized))
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// PrincipalFromContext retrieves the authenticated identity set by Require.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
