package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// VisitorCookie names the cookie that carries the anonymous visitor id.
	VisitorCookie = "archives_visitor"
	// VisitorHeader lets non-browser clients present their visitor id explicitly.
	VisitorHeader = "X-Visitor-ID"

	visitorCookieTTL = 180 * 24 * time.Hour
)

// Visitor ensures every request carries a visitor id. Browsers get a
// long-lived cookie on first contact; the id is exposed as c.Locals("visitorID").
func Visitor(secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(VisitorHeader)
		if !validVisitorID(id) {
			id = c.Cookies(VisitorCookie)
		}
		if !validVisitorID(id) {
			id = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     VisitorCookie,
				Value:    id,
				Path:     "/",
				Expires:  time.Now().Add(visitorCookieTTL),
				HTTPOnly: true,
				Secure:   secure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		c.Locals("visitorID", id)
		c.Set(VisitorHeader, id)
		c.SetUserContext(context.WithValue(c.UserContext(), VisitorIDKey, id))
		return c.Next()
	}
}

// VisitorID returns the visitor id set by Visitor, or "" when the middleware did not run.
func VisitorID(c *fiber.Ctx) string {
	id, _ := c.Locals("visitorID").(string)
	return id
}

func validVisitorID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
