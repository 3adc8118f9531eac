package fiberauth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-chat-auth"
)

// RequireSession rejects requests without a valid session. The session is
// stored in Locals and on the user context.
func (h *Controller) RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := h.resolve(c)
		if err != nil {
			return h.respondError(c, err)
		}
		h.attach(c, session)
		return c.Next()
	}
}

// OptionalSession attaches the session when present and never rejects.
func (h *Controller) OptionalSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if session, err := h.resolve(c); err == nil {
			h.attach(c, session)
		}
		return c.Next()
	}
}

func (h *Controller) attach(c *fiber.Ctx, session *auth.Session) {
	c.Locals(h.cfg.LocalsKey, session)
	c.SetUserContext(auth.WithSession(c.UserContext(), session))
}

// SessionFromLocals returns the session stored by RequireSession.
func SessionFromLocals(c *fiber.Ctx, key ...string) (*auth.Session, bool) {
	k := DefaultLocalsKey
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}
	session, ok := c.Locals(k).(*auth.Session)
	return session, ok && session != nil
}
