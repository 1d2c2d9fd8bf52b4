package jwtauth

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a located token against its stored secret record. The
// record's lookup key travels inside the unverified token, so the resolved
// record stays untrusted input until the signature check passes: the record,
// not the token, pins the verification algorithm.
type Verifier struct {
	credentials CredentialResolver
	logger      Logger
	now         func() time.Time
}

func NewVerifier(credentials CredentialResolver) *Verifier {
	return &Verifier{
		credentials: credentials,
		logger:      defLogger{},
		now:         time.Now,
	}
}

func (v *Verifier) WithLogger(logger Logger) *Verifier {
	if logger != nil {
		v.logger = logger
	}
	return v
}

// Verify runs the full pipeline: decode, key claim extraction, secret
// resolution, algorithm pinning, key material selection, signature check and
// registered claim validation. On success both return values are trusted.
func (v *Verifier) Verify(ctx context.Context, raw string, cfg Config) (*DecodedToken, *JWTSecret, error) {
	decoded, err := DecodeToken(raw)
	if err != nil {
		return nil, nil, err
	}

	key, ok := decoded.KeyClaim(cfg.KeyClaimName)
	if !ok {
		return nil, nil, NewMissingKeyClaimError(cfg.KeyClaimName)
	}

	secret, err := v.credentials.ResolveCredential(ctx, key)
	if err != nil {
		v.logger.Error("credential lookup failed for %q: %v", key, err)
		return nil, nil, NewStoreError(err)
	}
	if secret == nil {
		return nil, nil, NewCredentialNotFoundError(key)
	}

	algorithm := secret.Algorithm
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	if decoded.Algorithm() != algorithm {
		v.logger.Debug("token alg %q does not match stored algorithm %q", decoded.Algorithm(), algorithm)
		return nil, nil, ErrInvalidAlgorithm
	}

	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, nil, ErrInvalidAlgorithm
	}

	material, err := keyMaterial(secret, algorithm, cfg.SecretIsBase64)
	if err != nil {
		return nil, nil, err
	}

	if err := method.Verify(decoded.signingString, decoded.signature, material); err != nil {
		return nil, nil, ErrInvalidSignature
	}

	if failures := validateRegisteredClaims(decoded.Claims, cfg, v.now()); len(failures) > 0 {
		return nil, nil, NewClaimValidationError(failures)
	}

	return decoded, secret, nil
}

// keyMaterial selects and prepares the verification key. HMAC algorithms use
// the shared secret; asymmetric ones use the stored PEM public key.
func keyMaterial(secret *JWTSecret, algorithm string, isBase64 bool) (any, error) {
	if strings.HasPrefix(algorithm, "HS") {
		value := secret.Secret
		if value == "" {
			return nil, ErrInvalidKeyMaterial
		}
		if isBase64 {
			decoded, err := base64.StdEncoding.DecodeString(value)
			if err != nil {
				return nil, ErrInvalidKeyMaterial
			}
			return decoded, nil
		}
		return []byte(value), nil
	}

	pem := secret.RSAPublicKey
	if pem == "" {
		return nil, ErrInvalidKeyMaterial
	}
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(pem)
		if err != nil {
			return nil, ErrInvalidKeyMaterial
		}
		pem = string(decoded)
	}

	var (
		key any
		err error
	)
	switch {
	case strings.HasPrefix(algorithm, "RS"), strings.HasPrefix(algorithm, "PS"):
		key, err = jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
	case strings.HasPrefix(algorithm, "ES"):
		key, err = jwt.ParseECPublicKeyFromPEM([]byte(pem))
	default:
		return nil, ErrInvalidAlgorithm
	}
	if err != nil {
		return nil, ErrInvalidKeyMaterial
	}
	return key, nil
}
