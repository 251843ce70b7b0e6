package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const (
	defaultCacheSize = 64
	defaultCacheTTL  = 30 * time.Minute
)

type cacheEntry struct {
	client    LLMClient
	expiresAt time.Time
}

// Builder constructs a concrete LLMClient for a provider spec. Each
// transport adapter (OpenAI-compatible HTTP, mock, ...) registers one.
type Builder func(spec ProviderSpec) (LLMClient, error)

// Factory caches constructed clients per provider name with a bounded
// LRU and TTL expiry, and optionally throttles calls per provider with a
// token-bucket limiter. Grounded on the teacher's internal/infra/llm
// Factory (same github.com/hashicorp/golang-lru/v2 cache +
// golang.org/x/time/rate throttle shape); the routing core only needs
// the caching/throttling concern, not the teacher's full
// multi-transport dispatch.
type Factory struct {
	mu       sync.RWMutex
	cache    *lru.Cache[string, cacheEntry]
	cacheTTL time.Duration
	build    Builder

	limiters   map[string]*rate.Limiter
	limitersMu sync.Mutex
	rateLimit  rate.Limit
	rateBurst  int
}

// NewFactory builds a Factory that constructs clients via build.
func NewFactory(build Builder) *Factory {
	cache, _ := lru.New[string, cacheEntry](defaultCacheSize)
	return &Factory{
		cache:     cache,
		cacheTTL:  defaultCacheTTL,
		build:     build,
		limiters:  make(map[string]*rate.Limiter),
		rateLimit: rate.Inf,
		rateBurst: 1,
	}
}

// SetCacheOptions reconfigures the client cache. size<=0 disables caching.
func (f *Factory) SetCacheOptions(size int, ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if size <= 0 {
		f.cache = nil
	} else {
		f.cache, _ = lru.New[string, cacheEntry](size)
	}
	f.cacheTTL = ttl
}

// SetProviderRateLimit configures the per-provider client-side call
// throttle (separate from the web_search tool's sliding-window
// guardrail; this one smooths outbound LLM call volume using a token
// bucket, matching the teacher's userRateLimit knob).
func (f *Factory) SetProviderRateLimit(limit rate.Limit, burst int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rateLimit = limit
	f.rateBurst = burst
	f.limiters = make(map[string]*rate.Limiter)
}

// GetClient returns a cached client for spec.Name, building and caching
// one if absent or expired. The cached client is wrapped, once, with
// the provider's token-bucket limiter (see Limiter) at build time, so
// every caller goes through the throttle without needing to remember to
// apply it, and repeated calls for the same provider keep returning the
// identical wrapped instance.
func (f *Factory) GetClient(spec ProviderSpec) (LLMClient, error) {
	f.mu.RLock()
	cache := f.cache
	ttl := f.cacheTTL
	f.mu.RUnlock()

	now := time.Now()
	if cache != nil {
		if entry, ok := cache.Get(spec.Name); ok && (ttl <= 0 || now.Before(entry.expiresAt)) {
			return entry.client, nil
		}
	}

	client, err := f.build(spec)
	if err != nil {
		return nil, fmt.Errorf("build client for %s: %w", spec.Name, err)
	}
	wrapped := f.wrapRateLimited(spec.Name, client)
	if cache != nil {
		expires := now.Add(ttl)
		if ttl <= 0 {
			expires = now.Add(365 * 24 * time.Hour)
		}
		cache.Add(spec.Name, cacheEntry{client: wrapped, expiresAt: expires})
	}
	return wrapped, nil
}

// wrapRateLimited wraps client so every Complete call waits on
// provider's token-bucket limiter first, matching the teacher's
// WrapWithUserRateLimit wrapping of a built client before it is handed
// back to the caller.
func (f *Factory) wrapRateLimited(provider string, client LLMClient) LLMClient {
	return &rateLimitedClient{inner: client, limiter: f.Limiter(provider)}
}

// Limiter returns the token-bucket limiter for provider, creating one on
// first use under the factory's configured rate/burst.
func (f *Factory) Limiter(provider string) *rate.Limiter {
	f.limitersMu.Lock()
	defer f.limitersMu.Unlock()
	if l, ok := f.limiters[provider]; ok {
		return l
	}
	f.mu.RLock()
	limit, burst := f.rateLimit, f.rateBurst
	f.mu.RUnlock()
	l := rate.NewLimiter(limit, burst)
	f.limiters[provider] = l
	return l
}

// rateLimitedClient wraps an LLMClient so every Complete call blocks on
// the provider's token-bucket limiter before the underlying call is
// made. With the factory's default limit (rate.Inf) this never blocks;
// a deployment that calls SetProviderRateLimit gets real throttling
// without touching call sites.
type rateLimitedClient struct {
	inner   LLMClient
	limiter *rate.Limiter
}

func (c *rateLimitedClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait for provider: %w", err)
	}
	return c.inner.Complete(ctx, req)
}

func (c *rateLimitedClient) Model() string { return c.inner.Model() }
