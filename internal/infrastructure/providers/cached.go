package providers

import (
	"context"
	"time"

	"github.com/veriflowhq/veriflow/internal/infrastructure/database/redis"
	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
)

// CachedProvider wraps another provider with a read-through cache. Only
// successful lookups are cached: failures must always hit the upstream so a
// later retry can succeed. Cache outages degrade to direct provider calls.
type CachedProvider struct {
	inner  Provider
	cache  redis.Cache
	ttl    time.Duration
	logger logging.Logger
}

func NewCachedProvider(inner Provider, cache redis.Cache, ttl time.Duration, log logging.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedProvider{inner: inner, cache: cache, ttl: ttl, logger: log}
}

func (p *CachedProvider) Name() string { return p.inner.Name() }

func (p *CachedProvider) VerifyBankID(ctx context.Context, bankID string) (BankIDResult, error) {
	key := "provider:bvn:" + bankID

	var cached BankIDResult
	if err := p.cache.Get(ctx, key, &cached); err == nil {
		p.logger.Debug("provider cache hit", logging.String("key", key))
		return cached, nil
	} else if err != redis.ErrCacheMiss {
		p.logger.Warn("provider cache read failed", logging.Err(err))
	}

	result, err := p.inner.VerifyBankID(ctx, bankID)
	if err == nil && result.Success {
		p.store(ctx, key, result)
	}
	return result, err
}

func (p *CachedProvider) VerifyNationalID(ctx context.Context, nationalID string) (NationalIDResult, error) {
	key := "provider:nin:" + nationalID

	var cached NationalIDResult
	if err := p.cache.Get(ctx, key, &cached); err == nil {
		p.logger.Debug("provider cache hit", logging.String("key", key))
		return cached, nil
	} else if err != redis.ErrCacheMiss {
		p.logger.Warn("provider cache read failed", logging.Err(err))
	}

	result, err := p.inner.VerifyNationalID(ctx, nationalID)
	if err == nil && result.Success {
		p.store(ctx, key, result)
	}
	return result, err
}

func (p *CachedProvider) LookupRegistry(ctx context.Context, registryID string) (RegistryResult, error) {
	key := "provider:registry:" + registryID

	var cached RegistryResult
	if err := p.cache.Get(ctx, key, &cached); err == nil {
		p.logger.Debug("provider cache hit", logging.String("key", key))
		return cached, nil
	} else if err != redis.ErrCacheMiss {
		p.logger.Warn("provider cache read failed", logging.Err(err))
	}

	result, err := p.inner.LookupRegistry(ctx, registryID)
	if err == nil && result.Success {
		p.store(ctx, key, result)
	}
	return result, err
}

func (p *CachedProvider) store(ctx context.Context, key string, value any) {
	if err := p.cache.Set(ctx, key, value, p.ttl); err != nil {
		p.logger.Warn("provider cache write failed", logging.String("key", key), logging.Err(err))
	}
}
