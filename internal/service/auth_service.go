package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/internal/repository"
)

// ErrInvalidCredentials is the uniform sign-in failure. Unknown email and
// wrong password are indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService coordinates registration, sign-in and credential flows.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.ResetTokenRepository
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	resetTTL   time.Duration
}

// AuthDependencies encapsulates collaborator requirements for auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	ResetRepo    repository.ResetTokenRepository
	TokenManager *auth.TokenManager
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.ResetRepo,
		tokens:     deps.TokenManager,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		resetTTL:   cfg.Auth.PasswordResetTTL(),
	}
}

// SignUp creates a new account holding only the USER role.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string, image *string) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, errors.New("email already registered")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Roles:        []domain.Role{domain.RoleUser},
		Image:        image,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("registered user", zap.String("user_id", user.ID))

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		Name:  user.Name,
		Email: user.Email,
	})
	return user, nil
}

// SignIn verifies credentials and issues a bearer token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	cred, err := s.users.CredentialOf(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !auth.VerifyPassword(cred.PasswordHash, password) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, cred.UserID)
	if err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	s.metrics.RecordTokenIssued()
	s.logger.Info("issued token", zap.String("user_id", user.ID))
	return user, token, expiresAt, nil
}

// Reissue exchanges a still-valid token for a fresh one and returns the
// subject's current profile. The new expiry is recomputed, never extended.
func (s *AuthService) Reissue(ctx context.Context, oldToken string) (*domain.User, string, time.Time, error) {
	newToken, expiresAt, err := s.tokens.Reissue(oldToken)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	claims, err := s.tokens.Decode(newToken)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	user, err := s.users.GetByID(ctx, claims.UserID())
	if err != nil {
		return nil, "", time.Time{}, err
	}
	s.metrics.RecordTokenIssued()
	return user, newToken, expiresAt, nil
}

// RequestPasswordReset stores a single-use reset token and hands it to the
// notification pipeline for delivery. The token is never returned to the
// HTTP caller.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	token := uuid.NewString()
	if err := s.resets.Create(ctx, token, user.ID, s.resetTTL); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordResetRequested, user.ID, events.PasswordResetRequestedPayload{
		Email:      user.Email,
		ResetToken: token,
		ExpiresAt:  time.Now().Add(s.resetTTL),
	})
	return nil
}

// ConfirmPasswordReset consumes the reset token and replaces the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	userID, err := s.resets.Consume(ctx, token)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordChanged, user.ID, nil)
	return nil
}

// ChangePassword verifies the current password before updating to new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(user.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordChanged, user.ID, nil)
	return nil
}

// EnsureDefaultUser bootstraps the configured default account at startup.
// A missing account is created with all three roles when creation is
// enabled; otherwise its absence is an error, since a fresh deployment
// would be unreachable with no admin.
func (s *AuthService) EnsureDefaultUser(ctx context.Context, cfg config.DefaultUserConfig) error {
	user, err := s.users.GetByEmail(ctx, cfg.Email)
	switch {
	case err == nil:
		if cfg.Password != "" && !auth.VerifyPassword(user.PasswordHash, cfg.Password) {
			s.logger.Warn("default user password differs from configuration", zap.String("email", cfg.Email))
		}
		return nil
	case !errors.Is(err, pgx.ErrNoRows):
		return err
	}

	if !cfg.Create {
		return errors.New("default user missing and creation disabled")
	}
	if cfg.Password == "" {
		return errors.New("default user creation enabled but no password configured")
	}

	hash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return err
	}
	user = &domain.User{
		ID:           uuid.NewString(),
		Name:         cfg.Name,
		Email:        cfg.Email,
		PasswordHash: hash,
		Roles:        []domain.Role{domain.RoleAdmin, domain.RoleModerator, domain.RoleUser},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	s.logger.Warn("created default user", zap.String("email", cfg.Email))
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
