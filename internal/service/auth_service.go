package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/contacts-api/internal/auth"
	"github.com/spec-kit/contacts-api/internal/config"
	"github.com/spec-kit/contacts-api/internal/domain"
	"github.com/spec-kit/contacts-api/internal/events"
	"github.com/spec-kit/contacts-api/internal/mail"
	"github.com/spec-kit/contacts-api/internal/repository"
	apperrors "github.com/spec-kit/contacts-api/pkg/util"
)

const verifyPath = "/api/users/verify/"

// AuthService coordinates registration, email verification, and session flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	mailer     mail.Mailer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	baseURL    string
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Mailer     mail.Mailer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL()),
		mailer:     deps.Mailer,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: cfg.Auth.BcryptCost,
		baseURL:    cfg.App.BaseURL,
	}
}

// Register creates a new unverified account with a default avatar and sends
// the verification email.
//
// User persistence and email delivery are not transactional: when the mailer
// fails the account is still created and the returned user is non-nil
// alongside the delivery error.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	// Best-effort early rejection; the unique constraint in the repository
	// is what actually guards against concurrent duplicate registrations.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewEmailInUse(email)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	verificationToken := uuid.NewString()
	user := &domain.User{
		Username:          username,
		Email:             email,
		PasswordHash:      hash,
		Subscription:      domain.SubscriptionStarter,
		Verified:          false,
		VerificationToken: &verificationToken,
		AvatarURL:         GravatarURL(email),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserRegistered,
		UserID:    user.ID,
		Timestamp: time.Now(),
		Payload: events.UserRegisteredPayload{
			Email:        user.Email,
			Subscription: string(user.Subscription),
		},
	})

	if err := s.sendVerificationEmail(ctx, user.Email, verificationToken); err != nil {
		s.logger.Warn("verification email delivery failed; account was created",
			zap.String("user_id", user.ID), zap.Error(err))
		return user, apperrors.NewMailDeliveryError(err)
	}
	return user, nil
}

// Verify redeems a verification token. The token is cleared on success, so a
// second redemption of the same token reports not found.
func (s *AuthService) Verify(ctx context.Context, token string) error {
	user, err := s.users.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserVerified,
		UserID:    user.ID,
		Timestamp: time.Now(),
	})
	return nil
}

// ResendVerification sends another verification email reusing the existing
// token. The token is never rotated here.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}
	if user.Verified || user.VerificationToken == nil {
		return apperrors.NewAlreadyVerified()
	}

	if err := s.sendVerificationEmail(ctx, user.Email, *user.VerificationToken); err != nil {
		return apperrors.NewMailDeliveryError(err)
	}
	return nil
}

// SignIn validates credentials and issues a session token. The signed token
// is also persisted on the user row, superseding any prior session.
//
// Unknown email and wrong password both yield the same invalid-credentials
// error; an unverified account with the right password is reported distinctly.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
		}
		return nil, "", time.Time{}, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
	}
	if !user.Verified {
		return nil, "", time.Time{}, apperrors.NewEmailNotVerified()
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := s.users.UpdateSessionToken(ctx, user.ID, &token); err != nil {
		return nil, "", time.Time{}, err
	}
	user.SessionToken = &token

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserSignedIn,
		UserID:    user.ID,
		Timestamp: time.Now(),
	})
	return user, token, expiresAt, nil
}

// SignOut clears the stored session token, immediately revoking the issued
// credential even though its signature stays valid until natural expiry.
// Signing out twice is a no-op.
func (s *AuthService) SignOut(ctx context.Context, userID string) error {
	if err := s.users.UpdateSessionToken(ctx, userID, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserSignedOut,
		UserID:    userID,
		Timestamp: time.Now(),
	})
	return nil
}

// UpdateSubscription changes the account's subscription tier.
func (s *AuthService) UpdateSubscription(ctx context.Context, userID string, tier domain.Subscription) (*domain.User, error) {
	if !domain.ValidSubscription(tier) {
		return nil, apperrors.NewValidationError("subscription must be one of starter, pro, business", nil)
	}

	user, err := s.users.UpdateSubscription(ctx, userID, tier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) sendVerificationEmail(ctx context.Context, email, token string) error {
	link := s.baseURL + verifyPath + token
	msg := mail.Message{
		To:      email,
		Subject: "Verify your email",
		HTML:    fmt.Sprintf(`<a target="_blank" href="%s">Click to verify your email</a>`, link),
	}
	return s.mailer.Send(ctx, msg)
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
