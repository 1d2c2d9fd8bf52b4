package jwtauth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Upstream header names set for the proxied service.
const (
	HeaderConsumerID           = "X-Consumer-ID"
	HeaderConsumerCustomID     = "X-Consumer-Custom-ID"
	HeaderConsumerUsername     = "X-Consumer-Username"
	HeaderCredentialIdentifier = "X-Credential-Identifier"
	HeaderAnonymousConsumer    = "X-Anonymous-Consumer"
)

// DefaultKeyClaimName is the claim used to look up the signing secret when the
// route does not configure one.
const DefaultKeyClaimName = "iss"

var defaultURIParamNames = []string{"jwt"}

// ClaimHeader maps a claim path inside the verified token payload to an
// upstream header name. Paths support dotted field access and bracket
// indexing, e.g. "user.roles[0]".
type ClaimHeader struct {
	Path   string `json:"path"`
	Header string `json:"header"`
}

// Config is the immutable per-route configuration of the filter. Routes load
// it once; the filter never mutates it.
type Config struct {
	// URIParamNames are checked first, in order. A request carrying values in
	// more than one configured parameter is rejected as multiple tokens.
	URIParamNames []string `json:"uri_param_names"`
	// CookieNames are checked after URI parameters; first non-empty wins.
	CookieNames []string `json:"cookie_names"`
	// KeyClaimName is the claim (or header field) carrying the secret lookup key.
	KeyClaimName string `json:"key_claim_name"`
	// ClaimsToVerify restricts which registered claims are validated.
	// Supported: "exp", "nbf".
	ClaimsToVerify []string `json:"claims_to_verify"`
	// SecretIsBase64 indicates stored key material must be base64-decoded
	// before use.
	SecretIsBase64 bool `json:"secret_is_base64"`
	// AnonymousConsumerID enables anonymous fallback when non-empty. It may
	// reference a consumer by id or username.
	AnonymousConsumerID string `json:"anonymous"`
	// RunOnPreflight controls whether OPTIONS requests are authenticated.
	RunOnPreflight bool `json:"run_on_preflight"`
	// MaximumExpiration caps how far in the future "exp" may lie, in seconds.
	// Zero disables the cap. Only applied when "exp" is verified.
	MaximumExpiration int64 `json:"maximum_expiration"`
	// ClaimHeaders are projected into upstream headers after verification.
	ClaimHeaders []ClaimHeader `json:"claim_headers"`
}

// WithDefaults returns a copy with unset options defaulted.
func (c Config) WithDefaults() Config {
	if c.KeyClaimName == "" {
		c.KeyClaimName = DefaultKeyClaimName
	}
	if c.URIParamNames == nil {
		c.URIParamNames = defaultURIParamNames
	}
	return c
}

// Validate checks the route configuration before it is put in service.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.KeyClaimName, validation.Required),
		validation.Field(&c.ClaimsToVerify, validation.By(knownRegisteredClaims)),
		validation.Field(&c.MaximumExpiration, validation.Min(int64(0))),
		validation.Field(&c.ClaimHeaders, validation.By(resolvableClaimHeaders)),
	)
}

func knownRegisteredClaims(value any) error {
	names, _ := value.([]string)
	for _, name := range names {
		switch name {
		case ClaimExpiration, ClaimNotBefore:
		default:
			return fmt.Errorf("unsupported registered claim: %s", name)
		}
	}
	return nil
}

func resolvableClaimHeaders(value any) error {
	mappings, _ := value.([]ClaimHeader)
	for _, m := range mappings {
		if m.Header == "" {
			return fmt.Errorf("claim header mapping for path %q is missing a header name", m.Path)
		}
		if _, err := parseClaimPath(m.Path); err != nil {
			return err
		}
	}
	return nil
}
