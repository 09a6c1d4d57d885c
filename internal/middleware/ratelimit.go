package middleware

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // API全般のレート（req/sec）。120/60 = 2 req/sec
	GeneralBurst    int           // API全般のバーストサイズ
	ListingRate     rate.Limit    // 物件掲載のレート（req/sec）。10/60
	ListingBurst    int           // 物件掲載のバーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// API全般 120 req/min/user、物件掲載 10 req/min/user。
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(120.0 / 60.0),
		GeneralBurst:    120,
		ListingRate:     rate.Limit(10.0 / 60.0),
		ListingBurst:    10,
		CleanupInterval: 5 * time.Minute,
	}
}

// userLimiter はユーザーごとのレートリミッターとアクセス時刻を保持する。
type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter はユーザーごとのレート制限を管理する。
// API全般のレート制限と物件掲載のレート制限の2種類を提供する。
type RateLimiter struct {
	config RateLimiterConfig

	mu              sync.Mutex
	generalLimiters map[string]*userLimiter
	listingLimiters map[string]*userLimiter

	stopCh chan struct{}
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:          config,
		generalLimiters: make(map[string]*userLimiter),
		listingLimiters: make(map[string]*userLimiter),
		stopCh:          make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// GeneralMiddleware はAPI全般のレート制限ミドルウェアを返す。
// リクエストコンテキストにセッションが含まれている必要がある
// （SessionMiddlewareの後に配置）。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware(rl.generalLimiters, rl.config.GeneralRate, rl.config.GeneralBurst)
}

// ListingCreationMiddleware は物件掲載専用のレート制限ミドルウェアを返す。
func (rl *RateLimiter) ListingCreationMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware(rl.listingLimiters, rl.config.ListingRate, rl.config.ListingBurst)
}

// middleware は指定されたリミッターマップに基づくミドルウェアを生成する。
func (rl *RateLimiter) middleware(limiters map[string]*userLimiter, limit rate.Limit, burst int) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			limiter := rl.getOrCreate(limiters, userID, limit, burst)

			if !limiter.Allow() {
				writeRateLimitResponse(w, limit)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getOrCreate はユーザーのリミッターを取得または生成する。
func (rl *RateLimiter) getOrCreate(limiters map[string]*userLimiter, userID string, limit rate.Limit, burst int) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	ul, ok := limiters[userID]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(limit, burst)}
		limiters[userID] = ul
	}
	ul.lastAccess = time.Now()
	return ul.limiter
}

// cleanupLoop は一定間隔で長時間アクセスのないリミッターエントリを削除する。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.config.CleanupInterval * 2)
			rl.mu.Lock()
			for _, limiters := range []map[string]*userLimiter{rl.generalLimiters, rl.listingLimiters} {
				for userID, ul := range limiters {
					if ul.lastAccess.Before(cutoff) {
						delete(limiters, userID)
					}
				}
			}
			rl.mu.Unlock()
		}
	}
}

// writeRateLimitResponse は429レスポンスをRetry-Afterヘッダー付きで書き込む。
func writeRateLimitResponse(w http.ResponseWriter, limit rate.Limit) {
	retryAfter := 1
	if limit > 0 {
		retryAfter = int(math.Ceil(1.0 / float64(limit)))
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]string{
		"code":    "RATE_LIMITED",
		"message": "リクエストが多すぎます。",
		"action":  "しばらく待ってから再度お試しください。",
	})
}
