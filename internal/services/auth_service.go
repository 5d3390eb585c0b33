// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/storefront-labs/storefront-api/internal/config"
	"github.com/storefront-labs/storefront-api/internal/models"
	"github.com/storefront-labs/storefront-api/internal/store"
	"github.com/storefront-labs/storefront-api/internal/utils"
)

const tokenIssuer = "storefront-api"

type AuthService struct {
	users         store.UserStore
	access        *utils.TokenManager
	reset         *utils.TokenManager
	accessTTL     time.Duration
	resetTTL      time.Duration
	revoker       TokenRevoker
	notifications *NotificationService
	log           *logrus.Logger
}

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Age       int    `json:"age" validate:"gte=0,lte=150"`
	Password  string `json:"password" validate:"required,strong_password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      *models.UserDTO `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,strong_password"`
}

func NewAuthService(users store.UserStore, cfg config.JWTConfig, revoker TokenRevoker, notifications *NotificationService, log *logrus.Logger) *AuthService {
	return &AuthService{
		users:         users,
		access:        utils.NewTokenManager(cfg.SecretKey, tokenIssuer),
		reset:         utils.NewTokenManager(cfg.ResetSecretKey, tokenIssuer),
		accessTTL:     time.Duration(cfg.AccessTokenTTL) * time.Hour,
		resetTTL:      time.Duration(cfg.ResetTokenTTL) * time.Minute,
		revoker:       revoker,
		notifications: notifications,
		log:           log,
	}
}

// Register creates a user together with its cart. Self registration always
// yields the user role.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*models.UserDTO, error) {
	req.Email = normalizeEmail(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	user := &models.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
		Age:       req.Age,
		Role:      models.RoleUser,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.RegisterUser(ctx, user, &models.Cart{Items: models.CartItems{}}); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("User registered")
	dto := models.NewUserDTO(user)
	return &dto, nil
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	user, err := s.users.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := user.CheckPassword(req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.access.Generate(utils.JWTClaims{
		UserID:  user.ID,
		Email:   user.Email,
		Role:    string(user.Role),
		CartID:  user.CartID,
		Purpose: utils.TokenPurposeAccess,
	}, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	dto := models.NewUserDTO(user)
	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: &dto}, nil
}

// Authenticate verifies an access token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*utils.JWTClaims, error) {
	claims, err := s.access.Validate(token, utils.TokenPurposeAccess)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: token revocation lookup: %w", store.ErrUnavailable, err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: token revoked", ErrInvalidCredentials)
		}
	}
	return claims, nil
}

func (s *AuthService) Current(ctx context.Context, userID string) (*models.UserDTO, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	dto := models.NewUserDTO(user)
	return &dto, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *utils.JWTClaims) error {
	if s.revoker == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// ForgotPassword mails a reset link when the address is known. The result is
// the same either way so callers cannot probe for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return validationError(err)
	}

	user, err := s.users.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	token, _, err := s.reset.Generate(utils.JWTClaims{
		UserID:      user.ID,
		Email:       user.Email,
		Purpose:     utils.TokenPurposeReset,
		Fingerprint: passwordFingerprint(user.PasswordHash),
	}, s.resetTTL)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	if s.notifications != nil {
		s.notifications.SendAsync("password_reset", func(ctx context.Context) error {
			return s.notifications.SendPasswordResetEmail(ctx, user, token)
		})
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return validationError(err)
	}

	claims, err := s.reset.Validate(req.Token, utils.TokenPurposeReset)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResetToken, err)
	}

	user, err := s.users.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	// A token is single use: once the password changes the fingerprint no
	// longer matches.
	if claims.Fingerprint != passwordFingerprint(user.PasswordHash) {
		return ErrInvalidResetToken
	}

	if user.CheckPassword(req.NewPassword) == nil {
		return ErrPasswordReused
	}
	if user.PreviousPasswordHash != nil {
		prev := models.User{PasswordHash: *user.PreviousPasswordHash}
		if prev.CheckPassword(req.NewPassword) == nil {
			return ErrPasswordReused
		}
	}

	previous := user.PasswordHash
	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdateUserPassword(ctx, user.ID, user.PasswordHash, &previous); err != nil {
		return notFound(err, ErrUserNotFound)
	}

	s.log.WithField("user_id", user.ID).Info("Password reset")
	return nil
}

// EnsureAdmin creates the bootstrap administrator if it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, validationError(errors.New("admin email and password are required"))
	}

	_, err := s.users.FindUserByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	admin := &models.User{FirstName: "Admin", Email: email, Role: models.RoleAdmin}
	if err := admin.SetPassword(password); err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.RegisterUser(ctx, admin, &models.Cart{Items: models.CartItems{}}); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create admin: %w", err)
	}
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func passwordFingerprint(hash string) string {
	return utils.Fingerprint(hash, 16)
}
