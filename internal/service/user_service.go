package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
)

// UserUpdate carries optional self-service profile changes.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Image    *string
}

// AdminUpdate additionally allows replacing the role set.
type AdminUpdate struct {
	UserUpdate
	Roles []domain.Role
}

// UserService covers profile reads and account management.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	return &UserService{users: users, dispatcher: dispatcher, logger: logger}
}

// Get returns one user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetBatch resolves a list of IDs, silently skipping unknown ones.
func (s *UserService) GetBatch(ctx context.Context, ids []string) []*domain.User {
	users := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			continue
		}
		users = append(users, user)
	}
	return users
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// Update applies self-service profile changes. Roles are untouchable here.
func (s *UserService) Update(ctx context.Context, id string, update UserUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyUpdate(user, update); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if update.Password != nil {
		s.publish(ctx, events.EventPasswordChanged, user.ID, nil)
	}
	return user, nil
}

// AdminCreate provisions an account with an explicit role set.
func (s *UserService) AdminCreate(ctx context.Context, name, email, password string, roles []domain.Role, image *string) (*domain.User, error) {
	for _, role := range roles {
		if !domain.ValidRole(role) {
			return nil, errors.New("unknown role")
		}
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
		Roles:        roles,
		Image:        image,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("admin created user", zap.String("user_id", user.ID), zap.Any("roles", roles))
	return user, nil
}

// AdminUpdate applies profile changes and, when roles are present, replaces
// the role set. Revocation takes effect on the next request because the
// gate checks roles live.
func (s *UserService) AdminUpdate(ctx context.Context, id string, update AdminUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyUpdate(user, update.UserUpdate); err != nil {
		return nil, err
	}

	var oldRoles []domain.Role
	if update.Roles != nil {
		for _, role := range update.Roles {
			if !domain.ValidRole(role) {
				return nil, errors.New("unknown role")
			}
		}
		oldRoles = user.Roles
		user.Roles = update.Roles
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if update.Roles != nil {
		s.publish(ctx, events.EventRolesChanged, user.ID, events.RolesChangedPayload{
			OldRoles: oldRoles,
			NewRoles: user.Roles,
		})
	}
	return user, nil
}

// Delete removes the account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.EventUserDeleted, id, events.UserDeletedPayload{Email: user.Email})
	return nil
}

func applyUpdate(user *domain.User, update UserUpdate) error {
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Image != nil {
		user.Image = update.Image
	}
	if update.Password != nil {
		hash, err := auth.HashPassword(*update.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}
	return nil
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, userID string, payload any) {
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
