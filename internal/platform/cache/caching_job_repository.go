// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"workzone_backend/internal/feature/jobs/domain/entity"
	"workzone_backend/internal/feature/jobs/usecase"
)

// CachingJobRepository decorates a JobRepository with Redis caching.
// Reads go through the cache; every write invalidates the affected keys.
type CachingJobRepository struct {
	inner     usecase.JobRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.JobRepository = (*CachingJobRepository)(nil)

// NewCachingJobRepository decorates a JobRepository with Redis caching.
// If ttl is 0, it defaults to 1 minute. If namespace is empty, it uses "jobs".
func NewCachingJobRepository(rdb *redis.Client, ttl time.Duration, inner usecase.JobRepository, namespace string) *CachingJobRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "jobs"
	}
	return &CachingJobRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// List returns active jobs, checking the cache first.
func (c *CachingJobRepository) List(ctx context.Context) ([]entity.Job, error) {
	if c.rdb == nil {
		return c.inner.List(ctx)
	}
	var out []entity.Job
	if c.load(ctx, c.listKey(), &out) {
		return out, nil
	}

	out, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, c.listKey(), out)
	return out, nil
}

// FindByID returns a job, checking the cache first. Misses are not cached.
func (c *CachingJobRepository) FindByID(ctx context.Context, id string) (*entity.Job, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}
	key := c.jobKey(id)
	var cached entity.Job
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	job, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, job)
	return job, nil
}

// Create stores the job and drops the cached list.
func (c *CachingJobRepository) Create(ctx context.Context, job *entity.Job) error {
	if err := c.inner.Create(ctx, job); err != nil {
		return err
	}
	c.invalidate(ctx, c.listKey())
	return nil
}

// Update stores the job and drops the cached list and entry.
func (c *CachingJobRepository) Update(ctx context.Context, job *entity.Job) error {
	if err := c.inner.Update(ctx, job); err != nil {
		return err
	}
	c.invalidate(ctx, c.listKey(), c.jobKey(job.ID))
	return nil
}

// Delete removes the job and drops the cached list and entry.
func (c *CachingJobRepository) Delete(ctx context.Context, id string) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, c.listKey(), c.jobKey(id))
	return nil
}

// load reports whether key held a decodable value. Corrupted entries are deleted.
func (c *CachingJobRepository) load(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// store is best effort.
func (c *CachingJobRepository) store(ctx context.Context, key string, v any) {
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
}

func (c *CachingJobRepository) invalidate(ctx context.Context, keys ...string) {
	if c.rdb == nil {
		return
	}
	// Best effort: stale entries expire after ttl anyway
	_ = c.rdb.Del(ctx, keys...).Err()
}

func (c *CachingJobRepository) listKey() string {
	return c.namespace + ":list"
}

func (c *CachingJobRepository) jobKey(id string) string {
	return c.namespace + ":id:" + safe(id)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
