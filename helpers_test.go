package jwtauth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// fakeRequest satisfies Request for tests without a transport.
type fakeRequest struct {
	method  string
	query   map[string][]string
	cookies map[string]string
	headers map[string]string
}

func (r fakeRequest) Method() string {
	if r.method == "" {
		return "GET"
	}
	return r.method
}

func (r fakeRequest) QueryValues(name string) []string {
	return r.query[name]
}

func (r fakeRequest) Cookie(name string) string {
	return r.cookies[name]
}

func (r fakeRequest) Header(name string) string {
	return r.headers[name]
}

// stubCredentialResolver returns canned records keyed by lookup key.
type stubCredentialResolver struct {
	records map[string]*JWTSecret
	err     error
	calls   int
}

func (s *stubCredentialResolver) ResolveCredential(_ context.Context, key string) (*JWTSecret, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records[key], nil
}

// stubConsumerResolver returns canned consumers keyed by id or username.
type stubConsumerResolver struct {
	records map[string]*Consumer
	err     error
	calls   int
}

func (s *stubConsumerResolver) ResolveConsumer(_ context.Context, id string) (*Consumer, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records[id], nil
}

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func signHS512(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}
