package google

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"
)

// jwksCache caches the provider's RSA signing keys by kid.
type jwksCache struct {
	url        string
	ttl        time.Duration
	minRefresh time.Duration
	httpClient *http.Client
	now        func() time.Time

	mu          sync.RWMutex
	keys        map[string]*rsa.PublicKey
	lastFetch   time.Time
	lastAttempt time.Time
}

func newJWKSCache(url string, ttl, minRefresh time.Duration, client *http.Client, now func() time.Time) *jwksCache {
	return &jwksCache{
		url:        url,
		ttl:        ttl,
		minRefresh: minRefresh,
		httpClient: client,
		now:        now,
		keys:       map[string]*rsa.PublicKey{},
	}
}

// key returns the public key for kid, refreshing once when it is unknown or the cache is stale.
// At most one fetch is made per minRefresh; within that interval an unknown kid fails without a request.
func (j *jwksCache) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	now := j.now()
	j.mu.Lock()
	k, ok := j.keys[kid]
	fresh := now.Sub(j.lastFetch) <= j.ttl
	throttled := now.Sub(j.lastAttempt) < j.minRefresh
	if ok && fresh {
		j.mu.Unlock()
		return k, nil
	}
	if throttled {
		j.mu.Unlock()
		if ok {
			// 直前の再取得が失敗していても古い鍵は使える
			return k, nil
		}
		return nil, fmt.Errorf("key not found: %s", kid)
	}
	j.lastAttempt = now
	j.mu.Unlock()

	if err := j.refresh(ctx); err != nil {
		return nil, err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	k, ok = j.keys[kid]
	if !ok {
		return nil, fmt.Errorf("key not found: %s", kid)
	}
	return k, nil
}

func (j *jwksCache) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := j.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var doc struct {
		Keys []struct {
			Kid string `json:"kid"`
			Kty string `json:"kty"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("failed to decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			continue
		}
		eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			continue
		}
		var e int
		for _, b := range eBytes {
			e = e<<8 + int(b)
		}
		keys[k.Kid] = &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}
	}
	if len(keys) == 0 {
		return fmt.Errorf("no valid keys found in JWKS")
	}

	j.mu.Lock()
	j.keys = keys
	j.lastFetch = j.now()
	j.mu.Unlock()
	return nil
}
