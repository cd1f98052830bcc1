// Package account orchestrates registration and login on top of the
// credential hasher, the token service and the user store.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/taskvault/backend/domain"
	"github.com/taskvault/backend/internal/auth"
	"github.com/taskvault/backend/repository"
	"github.com/taskvault/backend/usecase"
)

type registerInput struct {
	Username string `validate:"required,min=3,max=100"`
	Password string `validate:"required,min=8"`
}

// LoginResult carries the issued token plus the public identity fields
// returned alongside it.
type LoginResult struct {
	Token    string
	UserID   int64
	Username string
}

type UseCase struct {
	users    repository.UserRepository
	tokens   *auth.TokenService
	audit    usecase.AuditTrail
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

func New(users repository.UserRepository, tokens *auth.TokenService, audit usecase.AuditTrail, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		tokens:   tokens,
		audit:    audit,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Register creates a new identity. The username is trimmed and lowercased
// before the uniqueness check so "Alice" and "alice" collide.
func (uc *UseCase) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	input := registerInput{Username: username, Password: password}
	if err := uc.validate.Struct(input); err != nil {
		return nil, registerValidationError(err)
	}

	taken, err := uc.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "registration failed", err)
	}
	if taken {
		uc.record(0, username, usecase.AuditActionRegister, false)
		return nil, domain.ErrUsernameTaken
	}

	hash, salt, err := auth.HashPassword(password)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "registration failed", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		PasswordSalt: salt,
		CreatedAt:    uc.now(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeConflict) {
			uc.record(0, username, usecase.AuditActionRegister, false)
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "registration failed", err)
	}

	uc.logger.Info("user registered", zap.Int64("user_id", user.ID))
	uc.record(user.ID, username, usecase.AuditActionRegister, true)
	return user, nil
}

// Login verifies the credentials and issues a bearer token. An unknown
// username and a wrong password both yield domain.ErrInvalidCredentials so
// responses do not reveal which usernames exist.
func (uc *UseCase) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			uc.record(0, username, usecase.AuditActionLogin, false)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "login failed", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash, user.PasswordSalt)
	if err != nil {
		// Stored hash or salt failed to decode. The record is corrupt and no
		// amount of retyping the password will fix it.
		uc.logger.Error("stored credential corrupt", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, domain.WrapError(domain.ErrCodeInternal, "login failed", err)
	}
	if !ok {
		uc.record(user.ID, username, usecase.AuditActionLogin, false)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := uc.tokens.Issue(user.ID, user.Username, uc.now())
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "login failed", err)
	}

	uc.record(user.ID, username, usecase.AuditActionLogin, true)
	return &LoginResult{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
	}, nil
}

func (uc *UseCase) record(userID int64, username, action string, success bool) {
	if uc.audit == nil {
		return
	}
	uc.audit.Record(usecase.AuthEvent{
		UserID:   userID,
		Username: username,
		Action:   action,
		Success:  success,
		Time:     uc.now(),
	})
}

func registerValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ErrInvalidPayload
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case "Username":
			fields["username"] = "username must be between 3 and 100 characters"
		case "Password":
			fields["password"] = "password must be at least 8 characters long"
		}
	}
	return domain.NewValidationError(fields)
}
