package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrWindow はINCRと有効期限の設定を1回のスクリプトで実行します。
// TTLのないキー（EXPIRE前に落ちた場合など）にも有効期限を付け直します。
var incrWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RedisLimiter はRedis上の固定ウィンドウでカウントするLimiterです。
// 全インスタンスで同じカウンタを共有します。
type RedisLimiter struct {
	rdb       *redis.Client
	limit     int
	interval  time.Duration
	namespace string
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter は新しいRedisLimiterのインスタンスを生成します。
// namespaceが空の場合は "ratelimit" を使います。
func NewRedisLimiter(rdb *redis.Client, limit int, interval time.Duration, namespace string) *RedisLimiter {
	if namespace == "" {
		namespace = "ratelimit"
	}
	return &RedisLimiter{rdb: rdb, limit: limit, interval: interval, namespace: namespace}
}

// Allow はカウンタを増やし、有効期限のないキーにはウィンドウの有効期限を設定します。
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.key(key)
	n, err := incrWindow.Run(ctx, l.rdb, []string{k}, l.interval.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", k, err)
	}
	return n <= int64(l.limit), nil
}

// Reset はキーのカウンタを削除します。
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, l.key(key)).Err()
}

func (l *RedisLimiter) key(key string) string {
	return l.namespace + ":" + key
}
