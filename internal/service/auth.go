package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dan9191/task-tracker/internal/models"
)

// Register creates a new user with hashed password. It does not log the user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	existing, err := s.repo.FindUserByUsername(ctx, in.Username)
	if err == nil && existing != nil {
		return nil, models.ErrDuplicateUsername
	}
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		verr := &models.ValidationError{}
		verr.Add("password", fmt.Sprintf("Password must be at most %d bytes", maxPasswordBytes))
		return nil, verr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Infof("User registered: %s", user.Username)

	if s.notifier != nil {
		if err := s.notifier.SendWelcome(user.Email, user.Username); err != nil {
			s.log.WithError(err).Warnf("Welcome email to %s not delivered", user.Email)
		}
	}
	return user, nil
}

// Login checks the credentials and returns the matching user. The username is
// trimmed the same way registration trims it. Unknown usernames and wrong
// passwords both yield models.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	user, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		// Unknown usernames still cost one bcrypt comparison.
		_ = bcrypt.CompareHashAndPassword(s.placeholderHash(), []byte(password))
		s.log.WithField("username", username).Info("Login rejected")
		return nil, models.ErrInvalidCredentials
	}

	if !s.VerifyPassword(user, password) {
		s.log.WithField("username", username).Info("Login rejected")
		return nil, models.ErrInvalidCredentials
	}

	s.log.WithField("user_id", user.ID).Infof("User logged in: %s", user.Username)
	return user, nil
}

// VerifyPassword compares plaintext against the stored bcrypt hash.
func (s *Service) VerifyPassword(user *models.User, password string) bool {
	if user == nil || user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// CurrentUser loads the user a session refers to.
func (s *Service) CurrentUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.FindUserByID(ctx, id)
}

func (s *Service) placeholderHash() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("placeholder-password"), bcrypt.DefaultCost)
		if err != nil {
			s.log.WithError(err).Error("failed to build placeholder hash")
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
