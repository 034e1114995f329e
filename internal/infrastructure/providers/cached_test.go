package providers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriflowhq/veriflow/internal/infrastructure/database/redis"
	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

// fakeCache is an in-memory redis.Cache storing marshalled JSON, so cached
// values round-trip through the same encoding the real cache uses.
type fakeCache struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) Get(_ context.Context, key string, dest any) error {
	if f.getErr != nil {
		return f.getErr
	}
	data, ok := f.entries[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = data
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.entries, k)
	}
	return nil
}

// countingProvider tracks upstream calls around the mock fixtures.
type countingProvider struct {
	Provider
	bankCalls     int
	registryCalls int
}

func (c *countingProvider) VerifyBankID(ctx context.Context, bankID string) (BankIDResult, error) {
	c.bankCalls++
	return c.Provider.VerifyBankID(ctx, bankID)
}

func (c *countingProvider) LookupRegistry(ctx context.Context, registryID string) (RegistryResult, error) {
	c.registryCalls++
	return c.Provider.LookupRegistry(ctx, registryID)
}

func TestCachedProvider_ReadThrough(t *testing.T) {
	inner := &countingProvider{Provider: NewMockProvider(logging.NewNop())}
	cache := newFakeCache()
	cached := NewCachedProvider(inner, cache, 30*time.Minute, logging.NewNop())

	first, err := cached.VerifyBankID(context.Background(), ValidBankID)
	require.NoError(t, err)
	require.True(t, first.Success)
	assert.Equal(t, 1, inner.bankCalls)
	assert.Equal(t, 30*time.Minute, cache.ttls["provider:bvn:"+ValidBankID])

	second, err := cached.VerifyBankID(context.Background(), ValidBankID)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.bankCalls, "second lookup must come from cache")
	assert.Equal(t, first.FullName, second.FullName)
	assert.Equal(t, first.DateOfBirth, second.DateOfBirth)
}

func TestCachedProvider_DoesNotCacheFailures(t *testing.T) {
	inner := &countingProvider{Provider: NewMockProvider(logging.NewNop())}
	cache := newFakeCache()
	cached := NewCachedProvider(inner, cache, time.Hour, logging.NewNop())

	for i := 0; i < 2; i++ {
		result, err := cached.VerifyBankID(context.Background(), "00000000000")
		require.NoError(t, err)
		assert.False(t, result.Success)
	}
	assert.Equal(t, 2, inner.bankCalls, "unsuccessful lookups always hit upstream")
	assert.Empty(t, cache.entries)
}

func TestCachedProvider_DegradesWhenCacheDown(t *testing.T) {
	inner := &countingProvider{Provider: NewMockProvider(logging.NewNop())}
	cache := newFakeCache()
	cache.getErr = errors.New(errors.CodeCache, "connection refused")
	cache.setErr = cache.getErr
	cached := NewCachedProvider(inner, cache, time.Hour, logging.NewNop())

	for i := 0; i < 2; i++ {
		result, err := cached.LookupRegistry(context.Background(), ValidRegistryID)
		require.NoError(t, err)
		assert.True(t, result.Success)
	}
	assert.Equal(t, 2, inner.registryCalls)
}

func TestCachedProvider_RegistryRoundTrip(t *testing.T) {
	inner := &countingProvider{Provider: NewMockProvider(logging.NewNop())}
	cache := newFakeCache()
	cached := NewCachedProvider(inner, cache, time.Hour, logging.NewNop())

	first, err := cached.LookupRegistry(context.Background(), ValidRegistryID)
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := cached.LookupRegistry(context.Background(), ValidRegistryID)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.registryCalls)
	assert.Equal(t, first.Record.Name, second.Record.Name)
	assert.Len(t, second.Record.Parties, len(first.Record.Parties))
}

func TestCachedProvider_NamePassesThrough(t *testing.T) {
	cached := NewCachedProvider(NewMockProvider(logging.NewNop()), newFakeCache(), 0, logging.NewNop())
	assert.Equal(t, "mock", cached.Name())
}
