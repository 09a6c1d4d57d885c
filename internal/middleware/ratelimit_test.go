package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/aqar/internal/model"
	"golang.org/x/time/rate"
)

func newTestRateLimiter(generalBurst, listingBurst int) *RateLimiter {
	return NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(0.001),
		GeneralBurst:    generalBurst,
		ListingRate:     rate.Limit(0.001),
		ListingBurst:    listingBurst,
		CleanupInterval: time.Minute,
	})
}

func authedRequest(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
	ctx := ContextWithSession(req.Context(), &model.Session{ID: "s", UserID: userID})
	return req.WithContext(ctx)
}

// TestRateLimiter_General はバースト超過で429が返ることを検証する。
func TestRateLimiter_General(t *testing.T) {
	rl := newTestRateLimiter(2, 1)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("user-1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("リクエスト%d: ステータス = %d, want 200", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("user-1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("超過リクエスト: ステータス = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-Afterヘッダーがない")
	}
}

// TestRateLimiter_PerUser はレート制限がユーザーごとに独立していることを検証する。
func TestRateLimiter_PerUser(t *testing.T) {
	rl := newTestRateLimiter(1, 1)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("user-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("user-1: ステータス = %d, want 200", rec.Code)
	}

	// user-1は超過するがuser-2は影響を受けない
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("user-1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("user-1超過: ステータス = %d, want 429", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("user-2"))
	if rec.Code != http.StatusOK {
		t.Errorf("user-2: ステータス = %d, want 200", rec.Code)
	}
}

// TestRateLimiter_ListingIndependent は物件掲載のレート制限が
// API全般の制限と独立していることを検証する。
func TestRateLimiter_ListingIndependent(t *testing.T) {
	rl := newTestRateLimiter(10, 1)
	defer rl.Stop()

	general := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	listing := rl.ListingCreationMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	// 掲載を使い切る
	rec := httptest.NewRecorder()
	listing.ServeHTTP(rec, authedRequest("user-1"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("掲載1回目: ステータス = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	listing.ServeHTTP(rec, authedRequest("user-1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("掲載超過: ステータス = %d, want 429", rec.Code)
	}

	// 一般APIはまだ通る
	rec = httptest.NewRecorder()
	general.ServeHTTP(rec, authedRequest("user-1"))
	if rec.Code != http.StatusOK {
		t.Errorf("一般API: ステータス = %d, want 200", rec.Code)
	}
}

// TestRateLimiter_RequiresSession はセッション不在のリクエストへの401を検証する。
func TestRateLimiter_RequiresSession(t *testing.T) {
	rl := newTestRateLimiter(10, 10)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/properties", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("ステータス = %d, want 401", rec.Code)
	}
}
