package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"moments_api/internal/metrics"
	"moments_api/internal/model"
	"moments_api/internal/repository"
)

// UserService handles account registration, login and the current-user view.
type UserService struct {
	repo                repository.UserRepository
	defaultProfileImage string
}

func NewUserService(repo repository.UserRepository, defaultProfileImage string) *UserService {
	return &UserService{
		repo:                repo,
		defaultProfileImage: defaultProfileImage,
	}
}

// Register creates a user together with their profile and returns the
// current-user view of the new account.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.CurrentUser, error) {
	username := strings.TrimSpace(req.Username)
	switch {
	case username == "":
		return nil, model.NewValidationError("username", "This field is required.")
	case utf8.RuneCountInString(username) > model.MaxUsernameLength:
		return nil, model.NewValidationError("username",
			fmt.Sprintf("Ensure this field has no more than %d characters.", model.MaxUsernameLength))
	}
	if utf8.RuneCountInString(req.Password) < model.MinPasswordLength {
		return nil, model.NewValidationError("password",
			fmt.Sprintf("This password is too short. It must contain at least %d characters.", model.MinPasswordLength))
	}

	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       username,
		PasswordHashed: string(hashedPassword),
	}

	// The unique constraint still catches a concurrent registration of the same name.
	profile, err := s.repo.CreateWithProfile(ctx, user, s.defaultProfileImage)
	if err != nil {
		if errors.Is(err, model.ErrUsernameExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.Created(metrics.KindUser)
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "profile_id": profile.ID}).Info("User registered")

	return &model.CurrentUser{
		ID:           user.ID,
		Username:     user.Username,
		ProfileID:    profile.ID,
		ProfileImage: profile.Image,
	}, nil
}

// Login authenticates a user with username and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.CurrentUser, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			// Don't reveal whether username exists or not
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return s.repo.GetCurrent(ctx, user.ID)
}

// Current returns the authenticated viewer's own account details.
func (s *UserService) Current(ctx context.Context, viewer model.Viewer) (*model.CurrentUser, error) {
	if !viewer.Authenticated {
		return nil, model.ErrNotAuthenticated
	}
	return s.repo.GetCurrent(ctx, viewer.UserID)
}
