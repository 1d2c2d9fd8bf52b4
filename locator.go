package jwtauth

import "regexp"

var (
	bearerTokenRe  = regexp.MustCompile(`(?i)\bbearer\s+(\S+)`)
	bearerSchemeRe = regexp.MustCompile(`(?i)^\s*bearer\b`)
)

// LocateToken finds the raw credential on the request following the
// configured precedence: URI parameters, then cookies, then the Authorization
// header. Absence is a normal outcome, reported as ("", false, nil); an error
// means a credential was supplied but in an unusable shape.
func LocateToken(r Request, cfg Config) (string, bool, error) {
	var (
		token string
		count int
	)
	for _, name := range cfg.URIParamNames {
		for _, value := range r.QueryValues(name) {
			if count == 0 {
				token = value
			}
			count++
		}
	}
	switch {
	case count == 1:
		return token, true, nil
	case count > 1:
		return "", false, ErrMultipleTokens
	}

	for _, name := range cfg.CookieNames {
		if value := r.Cookie(name); value != "" {
			return value, true, nil
		}
	}

	header := r.Header("Authorization")
	if header == "" {
		return "", false, nil
	}
	if m := bearerTokenRe.FindStringSubmatch(header); m != nil {
		// first match wins when the header carries more than one bearer value
		return m[1], true, nil
	}
	if bearerSchemeRe.MatchString(header) {
		return "", false, ErrUnrecognizableToken
	}
	// a different scheme is someone else's credential, not ours
	return "", false, nil
}
