// Package ratelimiter はキー単位の固定ウィンドウ方式で試行回数を制限します。
package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// Limiter は、ログイン試行などの操作の頻度をキー単位で制限するインターフェースです。
type Limiter interface {
	// Allow は試行を1回数え、ウィンドウ内の上限以内ならtrueを返します。
	Allow(ctx context.Context, key string) (bool, error)
	// Reset はキーのカウントを消去します。
	Reset(ctx context.Context, key string) error
}

// sweepThreshold を超えるキーを保持したら期限切れのウィンドウを掃除します。
const sweepThreshold = 10000

type window struct {
	count     int
	lastReset time.Time
}

// MemoryLimiter はプロセス内のメモリでカウントするLimiterです。
// 複数インスタンス間では共有されません。
type MemoryLimiter struct {
	limit    int           // ウィンドウあたりの上限
	interval time.Duration // どの単位でリセットするか
	now      func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter は新しいMemoryLimiterのインスタンスを生成します。
func NewMemoryLimiter(limit int, interval time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:    limit,
		interval: interval,
		now:      time.Now,
		windows:  make(map[string]*window),
	}
}

// Allow はウィンドウを過ぎていればカウントをリセットしてから数えます。
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.windows) > sweepThreshold {
		l.sweep(now)
	}

	w, ok := l.windows[key]
	// interval を過ぎたらカウントリセット
	if !ok || now.Sub(w.lastReset) >= l.interval {
		w = &window{lastReset: now}
		l.windows[key] = w
	}
	w.count++
	return w.count <= l.limit, nil
}

// Reset はキーのウィンドウを削除します。
func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
	return nil
}

func (l *MemoryLimiter) sweep(now time.Time) {
	for k, w := range l.windows {
		if now.Sub(w.lastReset) >= l.interval {
			delete(l.windows, k)
		}
	}
}
