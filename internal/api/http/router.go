package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contacts-api/internal/api/http/handlers"
	"github.com/spec-kit/contacts-api/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Contacts       *handlers.ContactsHandler
	AuthMiddleware *auth.Middleware
	AvatarDir      string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.AvatarDir != "" {
		app.Static("/avatars", cfg.AvatarDir)
	}

	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/register", cfg.Users.Register)
	users.Get("/verify/:verificationToken", cfg.Users.Verify)
	users.Post("/verify", cfg.Users.ResendVerification)
	users.Post("/login", cfg.Users.Login)

	protected := users.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/current", cfg.Users.Current)
	protected.Post("/logout", cfg.Users.Logout)
	protected.Patch("/avatars", cfg.Users.UpdateAvatar)
	protected.Patch("/", cfg.Users.UpdateSubscription)

	contacts := api.Group("/contacts", cfg.AuthMiddleware.Handle)
	contacts.Get("/", cfg.Contacts.List)
	contacts.Get("/:id", cfg.Contacts.Get)
	contacts.Post("/", cfg.Contacts.Create)
	contacts.Put("/:id", cfg.Contacts.Update)
	contacts.Delete("/:id", cfg.Contacts.Delete)
	contacts.Patch("/:id/favorite", cfg.Contacts.SetFavorite)
}
