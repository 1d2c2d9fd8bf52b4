package jwtauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Registered claims the filter knows how to validate.
const (
	ClaimExpiration = "exp"
	ClaimNotBefore  = "nbf"
)

// validateRegisteredClaims checks the registered claims named by the route
// configuration against the current time. Every configured claim is checked;
// failures accumulate rather than short-circuit so the caller sees the full
// picture in one rejection.
func validateRegisteredClaims(claims jwt.MapClaims, cfg Config, now time.Time) map[string]string {
	var failures map[string]string
	fail := func(claim, reason string) {
		if failures == nil {
			failures = make(map[string]string)
		}
		failures[claim] = reason
	}

	for _, name := range cfg.ClaimsToVerify {
		switch name {
		case ClaimExpiration:
			exp, err := claims.GetExpirationTime()
			if err != nil || exp == nil {
				fail(ClaimExpiration, "must be a number")
				continue
			}
			if !now.Before(exp.Time) {
				fail(ClaimExpiration, "token expired")
				continue
			}
			if cfg.MaximumExpiration > 0 {
				limit := now.Add(time.Duration(cfg.MaximumExpiration) * time.Second)
				if exp.Time.After(limit) {
					fail(ClaimExpiration, "exceeds maximum allowed expiration")
				}
			}
		case ClaimNotBefore:
			nbf, err := claims.GetNotBefore()
			if err != nil || nbf == nil {
				fail(ClaimNotBefore, "must be a number")
				continue
			}
			if now.Before(nbf.Time) {
				fail(ClaimNotBefore, "token not valid yet")
			}
		}
	}

	return failures
}
