package services

import (
	"context"
	"errors"

	"github.com/miguelmartinez95/rest-api-project/internal/config"
	"github.com/miguelmartinez95/rest-api-project/internal/models"
	"github.com/miguelmartinez95/rest-api-project/internal/repositories"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

// PostCommitHook runs after a user row has been committed.
type PostCommitHook func(ctx context.Context, user *models.User) error

type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	// Delete removes id on behalf of actor. Only the account owner or an
	// admin may do so.
	Delete(ctx context.Context, actor *models.Claims, id int64) error
}

type userService struct {
	repo  repositories.UserRepository
	cfg   *config.Config
	hooks []PostCommitHook
}

func NewUserService(repo repositories.UserRepository, cfg *config.Config, hooks ...PostCommitHook) UserService {
	return &userService{repo: repo, cfg: cfg, hooks: hooks}
}

func (s *userService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, utils.NewInternalError("Failed to check username", err)
	}
	if exists {
		return nil, utils.NewConflictError("A user with that username already exists.", utils.ErrConflict)
	}

	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, utils.NewInternalError("Failed to hash password", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, utils.ErrConflict) {
			return nil, utils.NewConflictError("A user with that username or email already exists.", err)
		}
		return nil, utils.NewInternalError("Failed to create user", err)
	}

	utils.Logger.WithField("user_id", user.ID).Info("User registered")
	for _, hook := range s.hooks {
		hook := hook
		dispatch(func(ctx context.Context) error { return hook(ctx, user) })
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load user", err)
	}
	if user == nil {
		return nil, utils.NewNotFoundError("User not found.")
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, actor *models.Claims, id int64) error {
	if actor == nil {
		return utils.ErrForbidden
	}
	actorID, err := actor.UserID()
	if err != nil {
		return utils.ErrTokenMalformed
	}
	if actorID != id && !actor.IsAdmin() {
		return utils.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.NewNotFoundError("User not found.")
		}
		return utils.NewInternalError("Failed to delete user", err)
	}
	utils.Logger.WithField("user_id", id).WithField("by", actorID).Info("User deleted")
	return nil
}
