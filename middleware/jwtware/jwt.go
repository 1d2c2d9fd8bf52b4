package jwtware

import (
	"net/http"

	"github.com/goliatone/go-router"
	jwtauth "github.com/scmp/kong-jwt"
)

// Config configures the router middleware around a jwtauth.AuthFilter.
type Config struct {
	// Filter skips the middleware when it returns true
	Filter func(router.Context) bool
	// SuccessHandler runs after a non-rejected outcome; defaults to Next
	SuccessHandler router.HandlerFunc
	// ErrorHandler serves rejections; defaults to status + message
	ErrorHandler func(router.Context, *jwtauth.AuthOutcome) error
	// ContextKey is where the decided outcome is stored in router locals
	ContextKey string
	// UpstreamHeadersKey is where the decided upstream header set is stored
	// for the proxy layer to apply; response transmission stays the host's job
	UpstreamHeadersKey string

	// AuthFilter is required
	AuthFilter *jwtauth.AuthFilter
	// Route is the per-route filter configuration
	Route jwtauth.Config
}

// New builds the middleware. The AuthFilter decides; this adapter only moves
// data between the router context and the filter's interfaces.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		route := cfg.Route.WithDefaults()

		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			upstream := http.Header{}
			outcome := cfg.AuthFilter.Decide(ctx.Context(), routerRequest{ctx: ctx}, route, upstream)

			if outcome.Kind == jwtauth.OutcomeRejected {
				return cfg.ErrorHandler(ctx, outcome)
			}

			ctx.Locals(cfg.ContextKey, outcome)
			ctx.Locals(cfg.UpstreamHeadersKey, upstream)
			ctx.SetContext(outcome.Context(ctx.Context()))

			return cfg.SuccessHandler(ctx)
		}
	}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.AuthFilter == nil {
		panic("JWT middleware configuration: AuthFilter is required.")
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, outcome *jwtauth.AuthOutcome) error {
			return c.Status(outcome.Status).SendString(outcome.Message)
		}
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "auth_outcome"
	}

	if cfg.UpstreamHeadersKey == "" {
		cfg.UpstreamHeadersKey = "upstream_headers"
	}

	return cfg
}

// routerRequest adapts router.Context to the filter's request surface. The
// router API exposes single query values only, so repeated parameters
// collapse to their first value here; the net/http and fiber adapters see
// every value.
type routerRequest struct {
	ctx router.Context
}

func (r routerRequest) Method() string {
	return r.ctx.Method()
}

func (r routerRequest) QueryValues(name string) []string {
	if value := r.ctx.Query(name, ""); value != "" {
		return []string{value}
	}
	return nil
}

func (r routerRequest) Cookie(name string) string {
	return r.ctx.Cookies(name)
}

func (r routerRequest) Header(name string) string {
	return r.ctx.GetString(name, "")
}
