package service

import (
	"context"

	"contentboard/internal/actor"
	"contentboard/internal/apperror"
	"contentboard/internal/logger"
	"contentboard/internal/models"
	"contentboard/internal/repository"
)

type UpdateUserInput struct {
	UserID string
	Email  *string
	Role   *string
}

type UserService interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateUser(ctx context.Context, in UpdateUserInput) (*models.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

type userService struct {
	userRepo repository.UserRepository
	log      *logger.Logger
}

func NewUserService(userRepo repository.UserRepository, log *logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      log,
	}
}

func (s *userService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

func (s *userService) UpdateUser(ctx context.Context, in UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Role != nil {
		if !validRole(*in.Role) {
			return nil, apperror.Validation("role must be %q or %q", actor.RoleUser, actor.RoleAdmin)
		}
		user.Role = *in.Role
	}

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user updated", append(actor.LogFields(ctx), "user_id", user.UserID)...)
	return user, nil
}

// DeleteUser removes the account; the refresh token goes with it.
func (s *userService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.userRepo.DeleteUser(ctx, userID); err != nil {
		return err
	}

	s.log.Info("user deleted", append(actor.LogFields(ctx), "user_id", userID)...)
	return nil
}

func validRole(role string) bool {
	return role == actor.RoleUser || role == actor.RoleAdmin
}
