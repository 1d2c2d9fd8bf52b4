package jwtauth

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CredentialResolver resolves a secret lookup key to its stored record.
// A nil record with a nil error means the key is unknown; an error always
// means the backing store failed.
type CredentialResolver interface {
	ResolveCredential(ctx context.Context, key string) (*JWTSecret, error)
}

// ConsumerResolver resolves a consumer by id or username under the same
// contract as CredentialResolver.
type ConsumerResolver interface {
	ResolveConsumer(ctx context.Context, id string) (*Consumer, error)
}

const (
	defaultCacheSize = 1000
	defaultCacheTTL  = 5 * time.Minute
)

type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
	href      *list.Element
}

// loadCache is a get-or-load cache with single-flight de-duplication: at most
// one concurrent backing load per distinct key, with every waiter receiving
// the same value or the same error. Not-found results are cached too, so
// probing unknown keys cannot stampede the store.
type loadCache[T any] struct {
	loader func(ctx context.Context, key string) (T, error)
	size   int
	ttl    time.Duration
	now    func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	entries map[string]*cacheEntry[T]
	// least recently used key at the back
	history *list.List
}

func newLoadCache[T any](loader func(ctx context.Context, key string) (T, error), size int, ttl time.Duration) *loadCache[T] {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &loadCache[T]{
		loader:  loader,
		size:    size,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*cacheEntry[T], size),
		history: list.New(),
	}
}

func (c *loadCache[T]) GetOrLoad(ctx context.Context, key string) (T, error) {
	if value, ok := c.cached(key); ok {
		return value, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		value, err := c.loader(ctx, key)
		if err == nil {
			c.store(key, value)
		}
		return value, err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// Invalidate drops a key so the next resolution hits the store. Collaborators
// call it when the underlying record mutates.
func (c *loadCache[T]) Invalidate(key string) {
	c.group.Forget(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.history.Remove(e.href)
	}
}

func (c *loadCache[T]) cached(key string) (T, bool) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if !now.Before(e.expiresAt) {
		delete(c.entries, key)
		c.history.Remove(e.href)
		var zero T
		return zero, false
	}
	c.history.MoveToFront(e.href)
	return e.value, true
}

func (c *loadCache[T]) store(key string, value T) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = now.Add(c.ttl)
		c.history.MoveToFront(e.href)
		return
	}

	c.entries[key] = &cacheEntry[T]{
		value:     value,
		expiresAt: now.Add(c.ttl),
		href:      c.history.PushFront(key),
	}

	if len(c.entries) > c.size {
		leastUsed := c.history.Back()
		delete(c.entries, leastUsed.Value.(string))
		c.history.Remove(leastUsed)
	}
}

// ResolverOption configures the caching resolvers.
type ResolverOption func(*resolverOptions)

type resolverOptions struct {
	size int
	ttl  time.Duration
}

func WithCacheSize(size int) ResolverOption {
	return func(o *resolverOptions) { o.size = size }
}

func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(o *resolverOptions) { o.ttl = ttl }
}

func buildResolverOptions(opts []ResolverOption) resolverOptions {
	var o resolverOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

type CachingCredentialResolver struct {
	cache *loadCache[*JWTSecret]
}

// NewCredentialResolver wraps the secrets repository with the shared
// single-flight cache.
func NewCredentialResolver(secrets Secrets, opts ...ResolverOption) *CachingCredentialResolver {
	o := buildResolverOptions(opts)
	return &CachingCredentialResolver{
		cache: newLoadCache(func(ctx context.Context, key string) (*JWTSecret, error) {
			return secrets.GetByKey(ctx, key)
		}, o.size, o.ttl),
	}
}

func (r *CachingCredentialResolver) ResolveCredential(ctx context.Context, key string) (*JWTSecret, error) {
	return r.cache.GetOrLoad(ctx, key)
}

func (r *CachingCredentialResolver) Invalidate(key string) {
	r.cache.Invalidate(key)
}

type CachingConsumerResolver struct {
	cache *loadCache[*Consumer]
}

// NewConsumerResolver wraps the consumers repository with the shared
// single-flight cache.
func NewConsumerResolver(consumers Consumers, opts ...ResolverOption) *CachingConsumerResolver {
	o := buildResolverOptions(opts)
	return &CachingConsumerResolver{
		cache: newLoadCache(func(ctx context.Context, id string) (*Consumer, error) {
			return consumers.GetByIdentifier(ctx, id)
		}, o.size, o.ttl),
	}
}

func (r *CachingConsumerResolver) ResolveConsumer(ctx context.Context, id string) (*Consumer, error) {
	return r.cache.GetOrLoad(ctx, id)
}

func (r *CachingConsumerResolver) Invalidate(id string) {
	r.cache.Invalidate(id)
}

var (
	_ CredentialResolver = (*CachingCredentialResolver)(nil)
	_ ConsumerResolver   = (*CachingConsumerResolver)(nil)
)
