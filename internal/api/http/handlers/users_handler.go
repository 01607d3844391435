package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contacts-api/internal/api/dto"
	"github.com/spec-kit/contacts-api/internal/auth"
	"github.com/spec-kit/contacts-api/internal/domain"
	"github.com/spec-kit/contacts-api/internal/service"
	apperrors "github.com/spec-kit/contacts-api/pkg/util"
)

// UsersHandler exposes account endpoints.
type UsersHandler struct {
	auth    *service.AuthService
	avatars *service.AvatarService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, avatarService *service.AvatarService) *UsersHandler {
	return &UsersHandler{auth: authService, avatars: avatarService}
}

// Register handles POST /api/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	user, err := h.auth.Register(c.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"user": userResponse(user),
	})
}

// Verify handles GET /api/users/verify/:verificationToken.
func (h *UsersHandler) Verify(c *fiber.Ctx) error {
	token := c.Params("verificationToken")
	if token == "" {
		return apperrors.NewValidationError("verification token required", nil)
	}

	if err := h.auth.Verify(c.Context(), token); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Verification successful"})
}

// ResendVerification handles POST /api/users/verify.
func (h *UsersHandler) ResendVerification(c *fiber.Ctx) error {
	var req dto.ResendVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	if err := h.auth.ResendVerification(c.Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Verification email sent"})
}

// Login handles POST /api/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	user, token, exp, err := h.auth.SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		"user": fiber.Map{
			"email":        user.Email,
			"subscription": user.Subscription,
		},
	})
}

// Current handles GET /api/users/current.
func (h *UsersHandler) Current(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("not authorized")
	}
	return c.JSON(fiber.Map{
		"email":        user.Email,
		"subscription": user.Subscription,
	})
}

// Logout handles POST /api/users/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("not authorized")
	}
	if err := h.auth.SignOut(c.Context(), user.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Signout success"})
}

// UpdateSubscription handles PATCH /api/users.
func (h *UsersHandler) UpdateSubscription(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("not authorized")
	}

	var req dto.UpdateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	updated, err := h.auth.UpdateSubscription(c.Context(), user.ID, domain.Subscription(req.Subscription))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"subscription": updated.Subscription})
}

// UpdateAvatar handles PATCH /api/users/avatars (multipart form, field "avatar").
func (h *UsersHandler) UpdateAvatar(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("not authorized")
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return apperrors.NewMissingFile()
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewMissingFile()
	}
	defer file.Close()

	avatarURL, err := h.avatars.UpdateAvatar(c.Context(), user.ID, fileHeader.Filename, file)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"avatarURL": avatarURL})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Subscription: string(user.Subscription),
		Verified:     user.Verified,
		AvatarURL:    user.AvatarURL,
	}
}
