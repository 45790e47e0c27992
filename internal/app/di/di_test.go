package di

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workzone_backend/internal/platform/cache"
	"workzone_backend/internal/platform/config"
	"workzone_backend/internal/platform/db"
	"workzone_backend/internal/shared/ratelimiter"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:           "test",
		JWTSecret:        "test-secret",
		JWTTTL:           time.Hour,
		JWTIssuer:        "workzone",
		StoreTimeout:     time.Second,
		LoginMaxAttempts: 5,
		LoginWindow:      time.Minute,
		JobCacheTTL:      time.Minute,
	}
}

func TestNewRedis_NotConfigured(t *testing.T) {
	assert.Nil(t, NewRedis(context.Background(), testConfig()))
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisHost, cfg.RedisPort = mr.Host(), mr.Port()
	mr.Close()

	assert.Nil(t, NewRedis(context.Background(), cfg))
}

func TestNewLoginLimiter(t *testing.T) {
	assert.IsType(t, &ratelimiter.MemoryLimiter{}, NewLoginLimiter(nil, testConfig()))

	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisHost, cfg.RedisPort = mr.Host(), mr.Port()
	rdb := NewRedis(context.Background(), cfg)
	require.NotNil(t, rdb)
	defer func() { _ = rdb.Close() }()

	assert.IsType(t, &ratelimiter.RedisLimiter{}, NewLoginLimiter(rdb, cfg))
	_, isCached := NewJobRepository(nil, rdb, cfg).(*cache.CachingJobRepository)
	assert.True(t, isCached)
}

func TestNewFederatedVerifier(t *testing.T) {
	v, err := NewFederatedVerifier(testConfig())
	require.NoError(t, err)
	assert.Nil(t, v, "untyped nil when GOOGLE_CLIENT_ID is unset")

	cfg := testConfig()
	cfg.GoogleClientID = "client.apps.googleusercontent.com"
	v, err = NewFederatedVerifier(cfg)
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestNewApp(t *testing.T) {
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)

	app, err := NewApp(testConfig(), gdb, nil)
	require.NoError(t, err)
	assert.NotNil(t, app.Auth)
	assert.NotNil(t, app.AuthH)
	assert.NotNil(t, app.JobsH)
	assert.NotNil(t, app.Health)
}
