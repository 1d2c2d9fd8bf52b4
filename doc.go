// Package jwtauth implements a JWT authentication decision engine for API
// gateways: locate a token on the request, resolve the signing credential
// from a claim in the unverified payload, verify, and project the result
// onto upstream headers.
//
// Decision pipeline:
//   - LocateToken scans configured URI parameters, cookies, and the
//     Authorization header in that order. More than one token is a hard
//     rejection, never a pick-one.
//   - Verifier decodes the compact serialization without trusting it, reads
//     the configured key claim, loads the matching JWTSecret, pins the
//     algorithm to the stored record, and only then checks the signature and
//     registered claims.
//   - AuthFilter orchestrates the above per request and emits exactly one
//     AuthOutcome: skipped, authenticated, anonymous, or rejected. Anonymous
//     fallback applies only when no token was supplied at all.
//
// Consumer identity:
//   - Verified requests resolve the credential's Consumer and stamp
//     X-Consumer-* headers for the upstream service; anonymous requests get
//     the fallback consumer plus the X-Anonymous-Consumer marker.
//   - CachingCredentialResolver and CachingConsumerResolver front the Bun
//     repositories with a single-flight LRU so hot keys cost one query, not
//     one per request. Both cache misses, so unknown keys stay cheap too.
//
// Transport adapters live in fiber.go (Fiber) and middleware/jwtware
// (go-router); both delegate every decision to AuthFilter.Decide.
package jwtauth
