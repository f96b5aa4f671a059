package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"policytrack/internal/session"
)

// SessionOptions configures the session cookie.
type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type createSessionRequest struct {
	Name string `json:"name"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateSession starts a named session. The name is only used to attribute uploads.
//
// @Summary Start a session
// @Tags sessions
// @Accept json
// @Param body body createSessionRequest true "display name"
// @Success 201 {object} sessionResponse
// @Router /sessions [post]
func CreateSession(store session.Store, opts SessionOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createSessionRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name is required")
		}

		now := time.Now().UTC()
		sess := session.Session{ID: uuid.NewString(), Name: name, CreatedAt: now}
		if err := store.SaveSession(c.UserContext(), sess, opts.TTL); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		expires := now.Add(opts.TTL)
		c.Cookie(&fiber.Cookie{
			Name:     opts.CookieName,
			Value:    sess.ID,
			Expires:  expires,
			HTTPOnly: true,
			Secure:   opts.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.Status(fiber.StatusCreated).JSON(sessionResponse{ID: sess.ID, Name: name, ExpiresAt: expires})
	}
}

// DeleteSession ends the caller's session.
//
// @Summary End the session
// @Tags sessions
// @Success 204
// @Router /sessions [delete]
func DeleteSession(store session.Store, opts SessionOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies(opts.CookieName); sid != "" {
			if err := store.DeleteSession(c.UserContext(), sid); err != nil {
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		c.ClearCookie(opts.CookieName)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
