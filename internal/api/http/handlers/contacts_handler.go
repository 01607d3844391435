package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contacts-api/internal/api/dto"
	"github.com/spec-kit/contacts-api/internal/auth"
	"github.com/spec-kit/contacts-api/internal/domain"
	"github.com/spec-kit/contacts-api/internal/repository"
	"github.com/spec-kit/contacts-api/internal/service"
	apperrors "github.com/spec-kit/contacts-api/pkg/util"
)

// ContactsHandler manages the authenticated user's contacts.
type ContactsHandler struct {
	service *service.ContactService
}

// NewContactsHandler constructs handler.
func NewContactsHandler(contactService *service.ContactService) *ContactsHandler {
	return &ContactsHandler{service: contactService}
}

// List handles GET /api/contacts.
func (h *ContactsHandler) List(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("not authorized")
	}

	filter := repository.ContactFilter{
		Page:  parseIntQuery(c, "page", 0),
		Limit: parseIntQuery(c, "limit", 0),
	}
	if fav := c.Query("favorite"); fav != "" {
		parsed, err := strconv.ParseBool(fav)
		if err != nil {
			return apperrors.NewValidationError("favorite must be a boolean", nil)
		}
		filter.Favorite = &parsed
	}

	contacts, err := h.service.List(c.Context(), user.ID, filter)
	if err != nil {
		return err
	}

	out := make([]dto.ContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		out = append(out, contactResponse(contact))
	}
	return c.JSON(out)
}

// Get handles GET /api/contacts/:id.
func (h *ContactsHandler) Get(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("not authorized")
	}

	contact, err := h.service.Get(c.Context(), user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(contactResponse(contact))
}

// Create handles POST /api/contacts.
func (h *ContactsHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("not authorized")
	}

	var req dto.CreateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	contact, err := h.service.Create(c.Context(), user.ID, service.ContactInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(contactResponse(contact))
}

// Update handles PUT /api/contacts/:id.
func (h *ContactsHandler) Update(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("not authorized")
	}

	var req dto.UpdateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	contact, err := h.service.Update(c.Context(), user.ID, c.Params("id"), service.ContactPatch{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(contactResponse(contact))
}

// Delete handles DELETE /api/contacts/:id.
func (h *ContactsHandler) Delete(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("not authorized")
	}

	contact, err := h.service.Delete(c.Context(), user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(contactResponse(contact))
}

// SetFavorite handles PATCH /api/contacts/:id/favorite.
func (h *ContactsHandler) SetFavorite(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("not authorized")
	}

	var req dto.SetFavoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	contact, err := h.service.SetFavorite(c.Context(), user.ID, c.Params("id"), *req.Favorite)
	if err != nil {
		return err
	}
	return c.JSON(contactResponse(contact))
}

func parseIntQuery(c *fiber.Ctx, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func contactResponse(contact *domain.Contact) dto.ContactResponse {
	return dto.ContactResponse{
		ID:       contact.ID,
		Name:     contact.Name,
		Email:    contact.Email,
		Phone:    contact.Phone,
		Favorite: contact.Favorite,
	}
}
