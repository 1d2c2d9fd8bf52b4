package jwtauth

import (
	"github.com/gofiber/fiber/v2"
)

type fiberRequest struct {
	c *fiber.Ctx
}

func (r fiberRequest) Method() string {
	return r.c.Method()
}

func (r fiberRequest) QueryValues(name string) []string {
	args := r.c.Context().QueryArgs()
	if !args.Has(name) {
		return nil
	}
	raw := args.PeekMulti(name)
	values := make([]string, len(raw))
	for i, v := range raw {
		values[i] = string(v)
	}
	return values
}

func (r fiberRequest) Cookie(name string) string {
	return r.c.Cookies(name)
}

func (r fiberRequest) Header(name string) string {
	return r.c.Get(name)
}

type fiberHeaderWriter struct {
	c *fiber.Ctx
}

func (w fiberHeaderWriter) Set(name, value string) {
	w.c.Request().Header.Set(name, value)
}

func (w fiberHeaderWriter) Del(name string) {
	w.c.Request().Header.Del(name)
}

// NewFiberMiddleware exposes the filter as fiber middleware. Upstream headers
// are written onto the proxied request; identity lands on the user context.
func NewFiberMiddleware(filter *AuthFilter, cfg Config) fiber.Handler {
	cfg = cfg.WithDefaults()

	return func(c *fiber.Ctx) error {
		outcome := filter.Decide(c.UserContext(), fiberRequest{c: c}, cfg, fiberHeaderWriter{c: c})

		switch outcome.Kind {
		case OutcomeRejected:
			return c.Status(outcome.Status).JSON(fiber.Map{"message": outcome.Message})
		case OutcomeAuthenticated, OutcomeAnonymous:
			c.SetUserContext(outcome.Context(c.UserContext()))
		}

		return c.Next()
	}
}
