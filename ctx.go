package jwtauth

import "context"

var consumerCtxKey = &contextKey{"consumer"}
var credentialCtxKey = &contextKey{"credential"}
var tokenCtxKey = &contextKey{"token"}

type contextKey struct {
	name string
}

// WithConsumer sets the authenticated Consumer in the given context
func WithConsumer(ctx context.Context, consumer *Consumer) context.Context {
	return context.WithValue(ctx, consumerCtxKey, consumer)
}

// ConsumerFromContext finds the consumer from the context.
func ConsumerFromContext(ctx context.Context) (*Consumer, bool) {
	raw, ok := ctx.Value(consumerCtxKey).(*Consumer)
	return raw, ok
}

// WithCredential sets the verified credential in the given context. A prior
// filter in an auth chain populates this; its presence is what the
// already-authenticated short circuit checks.
func WithCredential(ctx context.Context, credential *JWTSecret) context.Context {
	return context.WithValue(ctx, credentialCtxKey, credential)
}

// CredentialFromContext finds the verified credential from the context.
func CredentialFromContext(ctx context.Context) (*JWTSecret, bool) {
	raw, ok := ctx.Value(credentialCtxKey).(*JWTSecret)
	return raw, ok
}

// WithToken sets the raw verified token in the given context
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenCtxKey, token)
}

// TokenFromContext finds the raw verified token from the context.
func TokenFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(tokenCtxKey).(string)
	return raw, ok
}
