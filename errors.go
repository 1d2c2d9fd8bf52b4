package jwtauth

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeNoToken             = "jwt_missing_token"
	TextCodeMultipleTokens      = "jwt_multiple_tokens"
	TextCodeUnrecognizableToken = "jwt_unrecognizable_token"
	TextCodeBadToken            = "jwt_bad_token"
	TextCodeMissingKeyClaim     = "jwt_missing_key_claim"
	TextCodeCredentialNotFound  = "jwt_credential_not_found"
	TextCodeInvalidAlgorithm    = "jwt_invalid_algorithm"
	TextCodeInvalidKeyMaterial  = "jwt_invalid_key_material"
	TextCodeInvalidSignature    = "jwt_invalid_signature"
	TextCodeClaimFailure        = "jwt_claim_failure"
	TextCodeConsumerNotFound    = "jwt_consumer_not_found"
	TextCodeAnonymousNotFound   = "jwt_anonymous_consumer_not_found"
	TextCodeStoreFailure        = "jwt_store_failure"
)

// ErrNoToken is returned when no credential is present in any configured source.
var ErrNoToken = errors.New("Unauthorized", errors.CategoryAuth).
	WithTextCode(TextCodeNoToken).
	WithCode(errors.CodeUnauthorized)

// ErrMultipleTokens is returned when more than one token is supplied at once.
var ErrMultipleTokens = errors.New("Multiple tokens provided", errors.CategoryAuth).
	WithTextCode(TextCodeMultipleTokens).
	WithCode(errors.CodeUnauthorized)

// ErrUnrecognizableToken is returned when a bearer credential is announced but
// cannot be captured from the Authorization header.
var ErrUnrecognizableToken = errors.New("Unrecognizable token", errors.CategoryAuth).
	WithTextCode(TextCodeUnrecognizableToken).
	WithCode(errors.CodeUnauthorized)

// ErrBadToken is returned when the compact token cannot be decoded.
var ErrBadToken = errors.New("Bad token; invalid structure", errors.CategoryAuth).
	WithTextCode(TextCodeBadToken).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidAlgorithm is returned when the token alg header does not match the
// algorithm pinned on the stored secret record.
var ErrInvalidAlgorithm = errors.New("Invalid algorithm", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidAlgorithm).
	WithCode(errors.CodeForbidden)

// ErrInvalidKeyMaterial is returned when the stored secret record carries no
// usable key material for the pinned algorithm.
var ErrInvalidKeyMaterial = errors.New("Invalid key/secret", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidKeyMaterial).
	WithCode(errors.CodeForbidden)

// ErrInvalidSignature is returned when signature verification fails.
var ErrInvalidSignature = errors.New("Invalid signature", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidSignature).
	WithCode(errors.CodeForbidden)

// NewMissingKeyClaimError is returned when neither the claims nor the header
// segment carry the configured key claim.
func NewMissingKeyClaimError(claim string) *errors.Error {
	return errors.New(fmt.Sprintf("No mandatory '%s' in claims", claim), errors.CategoryAuth).
		WithTextCode(TextCodeMissingKeyClaim).
		WithCode(errors.CodeUnauthorized).
		WithMetadata(map[string]any{"claim": claim})
}

// NewCredentialNotFoundError is returned when no secret record exists for the
// key carried inside the token.
func NewCredentialNotFoundError(key string) *errors.Error {
	return errors.New(fmt.Sprintf("No credentials found for given '%s'", key), errors.CategoryAuth).
		WithTextCode(TextCodeCredentialNotFound).
		WithCode(errors.CodeForbidden).
		WithMetadata(map[string]any{"key": key})
}

// NewConsumerNotFoundError is returned when a verified credential references a
// consumer that no longer exists.
func NewConsumerNotFoundError(id string) *errors.Error {
	return errors.New(fmt.Sprintf("Could not find consumer '%s'", id), errors.CategoryAuth).
		WithTextCode(TextCodeConsumerNotFound).
		WithCode(errors.CodeForbidden).
		WithMetadata(map[string]any{"consumer": id})
}

// NewAnonymousConsumerError is returned when the configured anonymous consumer
// cannot be resolved. The reference comes from route configuration, not from
// the caller, so this is an internal failure rather than a rejection.
func NewAnonymousConsumerError(id string) *errors.Error {
	return errors.New(fmt.Sprintf("anonymous consumer '%s' not found", id), errors.CategoryInternal).
		WithTextCode(TextCodeAnonymousNotFound).
		WithCode(errors.CodeInternal).
		WithMetadata(map[string]any{"consumer": id})
}

// NewClaimValidationError aggregates registered claim failures into a single
// rejection carrying every failed claim.
func NewClaimValidationError(failures map[string]string) *errors.Error {
	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	meta := make(map[string]any, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+failures[name])
		meta[name] = failures[name]
	}

	return errors.New(strings.Join(parts, "; "), errors.CategoryAuth).
		WithTextCode(TextCodeClaimFailure).
		WithCode(errors.CodeUnauthorized).
		WithMetadata(meta)
}

// NewStoreError wraps a backing store failure. Store failures are always
// internal; they are never downgraded to a client rejection and never retried.
func NewStoreError(err error) *errors.Error {
	return errors.Wrap(err, errors.CategoryInternal, "credential store failure").
		WithTextCode(TextCodeStoreFailure).
		WithCode(errors.CodeInternal)
}

// rejectionFor maps a classified error to the wire status/message pair.
// Anything that reaches this point without an HTTP code is internal.
func rejectionFor(err error) (int, string) {
	var rich *errors.Error
	if errors.As(err, &rich) {
		status := rich.Code
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, rich.Message
	}
	return http.StatusInternalServerError, "An unexpected error occurred"
}
