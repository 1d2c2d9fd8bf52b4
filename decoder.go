package jwtauth

import (
	"github.com/goliatone/go-errors"
	"github.com/golang-jwt/jwt/v5"
)

// DecodedToken is the structural decode of a compact token. Nothing in it is
// trusted until Verifier.Verify succeeds.
type DecodedToken struct {
	Header map[string]any
	Claims jwt.MapClaims

	signingString string
	signature     []byte
	raw           string
}

var compactParser = jwt.NewParser()

// DecodeToken splits and base64-decodes a compact token without validating
// trust. Structural problems map to ErrBadToken.
func DecodeToken(raw string) (*DecodedToken, error) {
	claims := jwt.MapClaims{}
	token, parts, err := compactParser.ParseUnverified(raw, claims)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryAuth, ErrBadToken.Message).
			WithTextCode(TextCodeBadToken).
			WithCode(errors.CodeUnauthorized)
	}

	signature, err := compactParser.DecodeSegment(parts[2])
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryAuth, ErrBadToken.Message).
			WithTextCode(TextCodeBadToken).
			WithCode(errors.CodeUnauthorized)
	}

	return &DecodedToken{
		Header:        token.Header,
		Claims:        claims,
		signingString: parts[0] + "." + parts[1],
		signature:     signature,
		raw:           raw,
	}, nil
}

// Algorithm returns the alg header, empty when absent or not a string.
func (t *DecodedToken) Algorithm() string {
	alg, _ := t.Header["alg"].(string)
	return alg
}

// KeyClaim resolves the secret lookup key: the claim set takes precedence,
// the header segment is the fallback. The value is untrusted input until the
// signature verifies.
func (t *DecodedToken) KeyClaim(name string) (string, bool) {
	if v, ok := t.Claims[name].(string); ok && v != "" {
		return v, true
	}
	if v, ok := t.Header[name].(string); ok && v != "" {
		return v, true
	}
	return "", false
}
