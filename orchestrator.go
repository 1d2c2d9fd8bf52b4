package jwtauth

import (
	"context"
	"net/http"
)

// AuthFilter is the authentication decision engine: one Decide call per
// request, one outcome per call. It holds no per-request state; the resolver
// caches are the only resources shared across requests.
type AuthFilter struct {
	credentials CredentialResolver
	consumers   ConsumerResolver
	verifier    *Verifier
	logger      Logger
}

// New returns a filter wired to the given resolvers.
func New(credentials CredentialResolver, consumers ConsumerResolver) *AuthFilter {
	return &AuthFilter{
		credentials: credentials,
		consumers:   consumers,
		verifier:    NewVerifier(credentials),
		logger:      defLogger{},
	}
}

func (f *AuthFilter) WithLogger(logger Logger) *AuthFilter {
	if logger != nil {
		f.logger = logger
		f.verifier = f.verifier.WithLogger(logger)
	}
	return f
}

// Decide runs the authentication state machine for one request. Upstream
// header mutations land on headers; identity context is returned on the
// outcome for the adapter to attach.
func (f *AuthFilter) Decide(ctx context.Context, r Request, cfg Config, headers HeaderWriter) *AuthOutcome {
	cfg = cfg.WithDefaults()

	if r.Method() == http.MethodOptions && !cfg.RunOnPreflight {
		return skippedOutcome()
	}

	// logical-OR chaining: once a prior filter in the chain authenticated the
	// request, skip this one, but only while anonymous fallback glues the
	// chain together
	if _, ok := CredentialFromContext(ctx); ok && cfg.AnonymousConsumerID != "" {
		return skippedOutcome()
	}

	token, found, err := LocateToken(r, cfg)
	if err != nil {
		// a credential was supplied, just unusable; anonymous fallback never
		// applies here
		return rejectedOutcome(err)
	}

	if !found {
		return f.fallbackAnonymous(ctx, cfg, headers)
	}

	_, secret, err := f.verifier.Verify(ctx, token, cfg)
	if err != nil {
		// a supplied-but-bad credential must not degrade into an anonymous
		// allow
		return rejectedOutcome(err)
	}

	consumer, err := f.consumers.ResolveConsumer(ctx, secret.ConsumerID.String())
	if err != nil {
		f.logger.Error("consumer lookup failed for %q: %v", secret.ConsumerID, err)
		return rejectedOutcome(NewStoreError(err))
	}
	if consumer == nil {
		return rejectedOutcome(NewConsumerNotFoundError(secret.ConsumerID.String()))
	}

	f.setAuthenticated(headers, consumer, secret)

	if len(cfg.ClaimHeaders) > 0 {
		projector, perr := NewClaimHeaderProjector(cfg.ClaimHeaders)
		if perr != nil {
			// config is validated before it is put in service; a bad mapping
			// here must not reject a verified request
			f.logger.Warn("claim header projection disabled: %v", perr)
		} else {
			projector.WithLogger(f.logger).Project(token, headers)
		}
	}

	return authenticatedOutcome(consumer, secret, token)
}

func (f *AuthFilter) fallbackAnonymous(ctx context.Context, cfg Config, headers HeaderWriter) *AuthOutcome {
	if cfg.AnonymousConsumerID == "" {
		return rejectedOutcome(ErrNoToken)
	}

	consumer, err := f.consumers.ResolveConsumer(ctx, cfg.AnonymousConsumerID)
	if err != nil {
		f.logger.Error("anonymous consumer lookup failed for %q: %v", cfg.AnonymousConsumerID, err)
		return rejectedOutcome(NewStoreError(err))
	}
	if consumer == nil {
		return rejectedOutcome(NewAnonymousConsumerError(cfg.AnonymousConsumerID))
	}

	f.setAnonymous(headers, consumer)
	return anonymousOutcome(consumer)
}

func (f *AuthFilter) setAuthenticated(headers HeaderWriter, consumer *Consumer, credential *JWTSecret) {
	f.setConsumerHeaders(headers, consumer)
	headers.Set(HeaderCredentialIdentifier, credential.Key)
	// clear any stale marker a previous anonymous decision left behind
	headers.Del(HeaderAnonymousConsumer)
}

func (f *AuthFilter) setAnonymous(headers HeaderWriter, consumer *Consumer) {
	f.setConsumerHeaders(headers, consumer)
	headers.Del(HeaderCredentialIdentifier)
	headers.Set(HeaderAnonymousConsumer, "true")
}

func (f *AuthFilter) setConsumerHeaders(headers HeaderWriter, consumer *Consumer) {
	headers.Set(HeaderConsumerID, consumer.ID.String())

	if consumer.CustomID != "" {
		headers.Set(HeaderConsumerCustomID, consumer.CustomID)
	} else {
		headers.Del(HeaderConsumerCustomID)
	}

	if consumer.Username != "" {
		headers.Set(HeaderConsumerUsername, consumer.Username)
	} else {
		headers.Del(HeaderConsumerUsername)
	}
}
