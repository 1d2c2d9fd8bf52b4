package jwtauth

import (
	"context"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type filterFixture struct {
	filter      *AuthFilter
	credentials *stubCredentialResolver
	consumers   *stubConsumerResolver
	consumer    *Consumer
	secret      *JWTSecret
}

func newFilterFixture() *filterFixture {
	consumer := &Consumer{
		ID:       uuid.New(),
		Username: "alice",
		CustomID: "ext-123",
	}
	secret := &JWTSecret{
		ID:         uuid.New(),
		Key:        "issuer-1",
		Algorithm:  AlgorithmHS256,
		Secret:     "top-secret",
		ConsumerID: consumer.ID,
	}

	credentials := &stubCredentialResolver{records: map[string]*JWTSecret{"issuer-1": secret}}
	consumers := &stubConsumerResolver{records: map[string]*Consumer{consumer.ID.String(): consumer}}

	return &filterFixture{
		filter:      New(credentials, consumers),
		credentials: credentials,
		consumers:   consumers,
		consumer:    consumer,
		secret:      secret,
	}
}

func TestDecideAuthenticated(t *testing.T) {
	f := newFilterFixture()
	raw := signHS256(t, "top-secret", jwt.MapClaims{"iss": "issuer-1", "sub": "caller"})

	request := fakeRequest{
		headers: map[string]string{"Authorization": "Bearer " + raw},
	}
	headers := http.Header{}
	// a spoofed marker from the client must not survive authentication
	headers.Set(HeaderAnonymousConsumer, "true")

	outcome := f.filter.Decide(context.Background(), request, Config{}, headers)

	require.Equal(t, OutcomeAuthenticated, outcome.Kind)
	assert.Equal(t, f.consumer, outcome.Consumer)
	assert.Equal(t, f.secret, outcome.Credential)
	assert.Equal(t, raw, outcome.Token)

	assert.Equal(t, f.consumer.ID.String(), headers.Get(HeaderConsumerID))
	assert.Equal(t, "alice", headers.Get(HeaderConsumerUsername))
	assert.Equal(t, "ext-123", headers.Get(HeaderConsumerCustomID))
	assert.Equal(t, "issuer-1", headers.Get(HeaderCredentialIdentifier))
	assert.Empty(t, headers.Get(HeaderAnonymousConsumer))

	t.Run("should attach identity to the context", func(t *testing.T) {
		ctx := outcome.Context(context.Background())

		consumer, ok := ConsumerFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, f.consumer, consumer)

		credential, ok := CredentialFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, f.secret, credential)

		token, ok := TokenFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, raw, token)
	})

	t.Run("should clear identity headers the consumer does not carry", func(t *testing.T) {
		bare := &Consumer{ID: uuid.New()}
		f.consumers.records[bare.ID.String()] = bare
		f.credentials.records["issuer-1"] = &JWTSecret{
			Key:        "issuer-1",
			Algorithm:  AlgorithmHS256,
			Secret:     "top-secret",
			ConsumerID: bare.ID,
		}

		stale := http.Header{}
		stale.Set(HeaderConsumerUsername, "spoofed")
		stale.Set(HeaderConsumerCustomID, "spoofed")

		outcome := f.filter.Decide(context.Background(), request, Config{}, stale)
		require.Equal(t, OutcomeAuthenticated, outcome.Kind)
		assert.Equal(t, bare.ID.String(), stale.Get(HeaderConsumerID))
		assert.Empty(t, stale.Get(HeaderConsumerUsername))
		assert.Empty(t, stale.Get(HeaderConsumerCustomID))
	})
}

func TestDecidePreflight(t *testing.T) {
	f := newFilterFixture()

	t.Run("should skip preflight requests by default", func(t *testing.T) {
		request := fakeRequest{method: http.MethodOptions}
		headers := http.Header{}

		outcome := f.filter.Decide(context.Background(), request, Config{}, headers)
		assert.Equal(t, OutcomeSkipped, outcome.Kind)
		assert.Empty(t, headers)
	})

	t.Run("should authenticate preflight requests when configured", func(t *testing.T) {
		request := fakeRequest{method: http.MethodOptions}

		outcome := f.filter.Decide(context.Background(), request, Config{RunOnPreflight: true}, http.Header{})
		assert.Equal(t, OutcomeRejected, outcome.Kind)
		assert.Equal(t, http.StatusUnauthorized, outcome.Status)
	})
}

func TestDecideAlreadyAuthenticated(t *testing.T) {
	f := newFilterFixture()
	ctx := WithCredential(context.Background(), &JWTSecret{Key: "earlier"})

	t.Run("should short circuit when chained behind another filter", func(t *testing.T) {
		cfg := Config{AnonymousConsumerID: "fallback"}
		outcome := f.filter.Decide(ctx, fakeRequest{}, cfg, http.Header{})
		assert.Equal(t, OutcomeSkipped, outcome.Kind)
	})

	t.Run("should still demand a token when not glued by anonymous fallback", func(t *testing.T) {
		outcome := f.filter.Decide(ctx, fakeRequest{}, Config{}, http.Header{})
		assert.Equal(t, OutcomeRejected, outcome.Kind)
		assert.Equal(t, http.StatusUnauthorized, outcome.Status)
	})
}

func TestDecideNoToken(t *testing.T) {
	f := newFilterFixture()

	t.Run("should reject with 401 when no token and no fallback", func(t *testing.T) {
		outcome := f.filter.Decide(context.Background(), fakeRequest{}, Config{}, http.Header{})
		require.Equal(t, OutcomeRejected, outcome.Kind)
		assert.Equal(t, http.StatusUnauthorized, outcome.Status)
		assert.Equal(t, "Unauthorized", outcome.Message)
	})

	t.Run("should reject multiple tokens with 401", func(t *testing.T) {
		request := fakeRequest{
			query: map[string][]string{"jwt": {"one", "two"}},
		}
		outcome := f.filter.Decide(context.Background(), request, Config{}, http.Header{})
		require.Equal(t, OutcomeRejected, outcome.Kind)
		assert.Equal(t, http.StatusUnauthorized, outcome.Status)
		assert.Equal(t, "Multiple tokens provided", outcome.Message)
	})
}

func TestDecideAnonymousFallback(t *testing.T) {
	anonymous := &Consumer{ID: uuid.New(), Username: "anonymous"}

	newFixture := func() *filterFixture {
		f := newFilterFixture()
		f.consumers.records["anonymous"] = anonymous
		f.consumers.records[anonymous.ID.String()] = anonymous
		return f
	}

	t.Run("should fall back when no token is supplied", func(t *testing.T) {
		f := newFixture()
		headers := http.Header{}
		headers.Set(HeaderCredentialIdentifier, "stale")

		cfg := Config{AnonymousConsumerID: "anonymous"}
		outcome := f.filter.Decide(context.Background(), fakeRequest{}, cfg, headers)

		require.Equal(t, OutcomeAnonymous, outcome.Kind)
		assert.Equal(t, anonymous, outcome.Consumer)
		assert.Nil(t, outcome.Credential)

		assert.Equal(t, anonymous.ID.String(), headers.Get(HeaderConsumerID))
		assert.Equal(t, "anonymous", headers.Get(HeaderConsumerUsername))
		assert.Equal(t, "true", headers.Get(HeaderAnonymousConsumer))
		assert.Empty(t, headers.Get(HeaderCredentialIdentifier))
	})

	t.Run("should resolve the fallback consumer by id as well", func(t *testing.T) {
		f := newFixture()
		cfg := Config{AnonymousConsumerID: anonymous.ID.String()}
		outcome := f.filter.Decide(context.Background(), fakeRequest{}, cfg, http.Header{})
		assert.Equal(t, OutcomeAnonymous, outcome.Kind)
	})

	t.Run("should attach only the consumer to the context", func(t *testing.T) {
		f := newFixture()
		cfg := Config{AnonymousConsumerID: "anonymous"}
		outcome := f.filter.Decide(context.Background(), fakeRequest{}, cfg, http.Header{})

		ctx := outcome.Context(context.Background())
		consumer, ok := ConsumerFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, anonymous, consumer)

		_, ok = CredentialFromContext(ctx)
		assert.False(t, ok)
	})

	t.Run("should never fall back when a token was supplied", func(t *testing.T) {
		f := newFixture()
		request := fakeRequest{
			headers: map[string]string{"Authorization": "Bearer garbage"},
		}
		cfg := Config{AnonymousConsumerID: "anonymous"}
		outcome := f.filter.Decide(context.Background(), request, cfg, http.Header{})

		require.Equal(t, OutcomeRejected, outcome.Kind)
		assert.Equal(t, http.StatusUnauthorized, outcome.Status)
	})

	t.Run("should never fall back on a bad signature", func(t *testing.T) {
		f := newFixture()
		raw := signHS256(t, "wrong-secret", jwt.MapClaims{"iss": "issuer-1"})
		request := fakeRequest{
			headers: map[string]string{"Authorization": "Bearer " + raw},
		}
		cfg := Config{AnonymousConsumerID: "anonymous"}
		outcome := f.filter.Decide(context.Background(), request, cfg, http.Header{})

		require.Equal(t, OutcomeRejected, outcome.Kind)
		assert.Equal(t, http.StatusForbidden, outcome.Status)
		assert.Equal(t, "Invalid signature", outcome.Message)
	})

	t.Run("should fail with 500 when the fallback consumer is missing", func(t *testing.T) {
		f := newFilterFixture()
		cfg := Config{AnonymousConsumerID: "who-dis"}
		outcome := f.filter.Decide(context.Background(), fakeRequest{}, cfg, http.Header{})

		require.Equal(t, OutcomeRejected, outcome.Kind)
		assert.Equal(t, http.StatusInternalServerError, outcome.Status)
	})

	t.Run("should fail with 500 when the consumer store errors", func(t *testing.T) {
		f := newFilterFixture()
		f.consumers.err = assert.AnError

		cfg := Config{AnonymousConsumerID: "anonymous"}
		outcome := f.filter.Decide(context.Background(), fakeRequest{}, cfg, http.Header{})

		require.Equal(t, OutcomeRejected, outcome.Kind)
		assert.Equal(t, http.StatusInternalServerError, outcome.Status)
	})
}

func TestDecideConsumerResolution(t *testing.T) {
	t.Run("should reject a credential whose consumer is gone", func(t *testing.T) {
		f := newFilterFixture()
		delete(f.consumers.records, f.consumer.ID.String())

		raw := signHS256(t, "top-secret", jwt.MapClaims{"iss": "issuer-1"})
		request := fakeRequest{headers: map[string]string{"Authorization": "Bearer " + raw}}

		outcome := f.filter.Decide(context.Background(), request, Config{}, http.Header{})
		require.Equal(t, OutcomeRejected, outcome.Kind)
		assert.Equal(t, http.StatusForbidden, outcome.Status)
	})

	t.Run("should fail with 500 when the consumer store errors", func(t *testing.T) {
		f := newFilterFixture()
		f.consumers.err = assert.AnError

		raw := signHS256(t, "top-secret", jwt.MapClaims{"iss": "issuer-1"})
		request := fakeRequest{headers: map[string]string{"Authorization": "Bearer " + raw}}

		outcome := f.filter.Decide(context.Background(), request, Config{}, http.Header{})
		require.Equal(t, OutcomeRejected, outcome.Kind)
		assert.Equal(t, http.StatusInternalServerError, outcome.Status)
	})
}

func TestDecideClaimHeaders(t *testing.T) {
	f := newFilterFixture()
	raw := signHS256(t, "top-secret", jwt.MapClaims{
		"iss":  "issuer-1",
		"role": "admin",
		"user": map[string]any{"groups": []any{"ops"}},
	})
	request := fakeRequest{headers: map[string]string{"Authorization": "Bearer " + raw}}

	cfg := Config{
		ClaimHeaders: []ClaimHeader{
			{Path: "role", Header: "X-Token-Role"},
			{Path: "user.groups[0]", Header: "X-Token-Group"},
			{Path: "missing", Header: "X-Token-Missing"},
		},
	}

	headers := http.Header{}
	outcome := f.filter.Decide(context.Background(), request, cfg, headers)

	require.Equal(t, OutcomeAuthenticated, outcome.Kind)
	assert.Equal(t, "admin", headers.Get("X-Token-Role"))
	assert.Equal(t, "ops", headers.Get("X-Token-Group"))
	assert.Empty(t, headers.Get("X-Token-Missing"))
}

func TestDecideIdempotence(t *testing.T) {
	f := newFilterFixture()
	raw := signHS256(t, "top-secret", jwt.MapClaims{"iss": "issuer-1"})
	request := fakeRequest{headers: map[string]string{"Authorization": "Bearer " + raw}}

	first := http.Header{}
	second := http.Header{}

	a := f.filter.Decide(context.Background(), request, Config{}, first)
	b := f.filter.Decide(context.Background(), request, Config{}, second)

	assert.Equal(t, a.Kind, b.Kind)
	assert.Equal(t, a.Consumer, b.Consumer)
	assert.Equal(t, first, second)
}
