package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// UserService handles user CRUD with email uniqueness enforcement.
type UserService struct {
	users  domain.UserRepository
	logger *zerolog.Logger
}

func NewUserService(users domain.UserRepository, logger *zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

func (s *UserService) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if err := validateEmail(user.Email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(user.Name) == "" {
		return nil, fmt.Errorf("%w: user name cannot be blank", domain.ErrInvalidRequest)
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: email %s already registered", domain.ErrConflict, user.Email)
		}
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetUser(ctx, id)
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.GetAllUsers(ctx)
}

// UpdateUser patches the present fields. A changed email must stay unique;
// resubmitting the user's own email is not a conflict.
func (s *UserService) UpdateUser(ctx context.Context, req *models.UpdateUserRequest, id int64) (*models.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		if err := validateEmail(*req.Email); err != nil {
			return nil, err
		}

		existing, err := s.users.GetUserByEmail(ctx, *req.Email)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: email %s already registered", domain.ErrConflict, *req.Email)
		}
		user.Email = *req.Email
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: user name cannot be blank", domain.ErrInvalidRequest)
		}
		user.Name = *req.Name
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user updated")
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email cannot be blank", domain.ErrInvalidRequest)
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("%w: invalid email format", domain.ErrInvalidRequest)
	}
	return nil
}
