package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"policytrack/internal/session"
)

// UserLocalKey holds the display name of the session owner in Fiber's context locals.
const UserLocalKey = "user"

// Identity resolves the session cookie into the uploader name used for attribution.
// Requests without a valid session continue anonymously.
func Identity(store session.Store, cookieName string, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(cookieName)
		if sid == "" {
			return c.Next()
		}

		sess, err := store.LookupSession(c.UserContext(), sid)
		switch {
		case err == nil:
			c.Locals(UserLocalKey, sess.Name)
		case errors.Is(err, session.ErrNotFound):
			c.ClearCookie(cookieName)
		default:
			log.Warn().Err(err).Msg("session lookup failed")
		}
		return c.Next()
	}
}

// UserFromCtx returns the name stored by Identity, or "".
func UserFromCtx(c *fiber.Ctx) string {
	user, _ := c.Locals(UserLocalKey).(string)
	return user
}
