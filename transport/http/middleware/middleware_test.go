package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"hotel/config"
	"hotel/infras/otel/mocks"
	cacheMocks "hotel/shared/cache/mocks"
	"hotel/shared/constant"
	"hotel/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const limiterKey = "limiter:10.0.0.1:test-agent"

func newMiddleware(t *testing.T, cfg *config.Config) (middleware.AppMiddleware, *cacheMocks.MockRedisCache) {
	t.Helper()

	ctrl := gomock.NewController(t)
	redisCache := cacheMocks.NewMockRedisCache(ctrl)

	return middleware.NewAppMiddleware(mocks.NewOtel(), cfg, redisCache), redisCache
}

func limitedRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/rooms", nil)
	req.Header.Set(constant.RequestHeaderForwardedFor, "10.0.0.1, 10.0.0.2")
	req.Header.Set(constant.RequestHeaderUserAgent, "test-agent")

	return req
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	mw, _ := newMiddleware(t, &config.Config{})

	var seen string

	handler := mw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(constant.ContextKeyRequestID).(string)
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("generates an id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, seen)
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get(constant.RequestHeaderRequestID))
	})

	t.Run("keeps the caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constant.RequestHeaderRequestID, "req-123")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "req-123", seen)
		assert.Equal(t, "req-123", rec.Header().Get(constant.RequestHeaderRequestID))
	})
}

func TestTracingAndLogging_PassThrough(t *testing.T) {
	mw, _ := newMiddleware(t, &config.Config{})

	router := chi.NewRouter()
	router.Use(mw.RequestID, mw.Tracing, mw.Logging)
	router.Get("/rooms/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/101", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(constant.RequestHeaderRequestID))
}

func TestRateLimit(t *testing.T) {
	enabled := &config.Config{}
	enabled.App.RateLimiter.Enable = true
	enabled.App.RateLimiter.MaxRequests = 2
	enabled.App.RateLimiter.WindowSeconds = 60

	t.Run("disabled", func(t *testing.T) {
		mw, _ := newMiddleware(t, &config.Config{})

		rec := httptest.NewRecorder()
		mw.RateLimit()(okHandler()).ServeHTTP(rec, limitedRequest())

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(constant.RequestHeaderRateLimit))
	})

	t.Run("first request in window", func(t *testing.T) {
		mw, redisCache := newMiddleware(t, enabled)

		gomock.InOrder(
			redisCache.EXPECT().Incr(gomock.Any(), limiterKey).Return(int64(1), nil),
			redisCache.EXPECT().Expire(gomock.Any(), limiterKey, 60).Return(nil),
		)

		rec := httptest.NewRecorder()
		mw.RateLimit()(okHandler()).ServeHTTP(rec, limitedRequest())

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get(constant.RequestHeaderRateLimit))
		assert.Equal(t, "1", rec.Header().Get(constant.RequestHeaderRateLimitRemaining))
		assert.Equal(t, "60", rec.Header().Get(constant.RequestHeaderRateLimitWindow))
	})

	t.Run("later request keeps the window", func(t *testing.T) {
		mw, redisCache := newMiddleware(t, enabled)

		redisCache.EXPECT().Incr(gomock.Any(), limiterKey).Return(int64(2), nil)
		redisCache.EXPECT().Expire(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		rec := httptest.NewRecorder()
		mw.RateLimit()(okHandler()).ServeHTTP(rec, limitedRequest())

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "0", rec.Header().Get(constant.RequestHeaderRateLimitRemaining))
	})

	t.Run("limit exceeded", func(t *testing.T) {
		mw, redisCache := newMiddleware(t, enabled)

		redisCache.EXPECT().Incr(gomock.Any(), limiterKey).Return(int64(3), nil)

		rec := httptest.NewRecorder()
		mw.RateLimit()(okHandler()).ServeHTTP(rec, limitedRequest())

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Contains(t, rec.Body.String(), constant.ResponseErrorRequestLimitExceeded)
	})

	t.Run("counts concurrent clients exactly", func(t *testing.T) {
		memory := cacheMocks.NewMemoryCache()
		mw := middleware.NewAppMiddleware(mocks.NewOtel(), enabled, memory)
		handler := mw.RateLimit()(okHandler())

		codes := make(chan int, 5)

		var wg sync.WaitGroup
		for range 5 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, limitedRequest())
				codes <- rec.Code
			}()
		}

		wg.Wait()
		close(codes)

		passed := 0
		for code := range codes {
			if code == http.StatusOK {
				passed++
			}
		}

		assert.Equal(t, 2, passed)
	})

	t.Run("cache failure lets the request through", func(t *testing.T) {
		mw, redisCache := newMiddleware(t, enabled)

		redisCache.EXPECT().Incr(gomock.Any(), limiterKey).Return(int64(0), errors.New("connection refused"))

		rec := httptest.NewRecorder()
		mw.RateLimit()(okHandler()).ServeHTTP(rec, limitedRequest())

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(constant.RequestHeaderRateLimit))
	})

	t.Run("client identity from peer address", func(t *testing.T) {
		mw, redisCache := newMiddleware(t, enabled)

		redisCache.EXPECT().Incr(gomock.Any(), "limiter:192.0.2.7:unknown").Return(int64(5), nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/rooms", nil)
		req.RemoteAddr = "192.0.2.7:4312"
		req.Header.Del(constant.RequestHeaderUserAgent)

		rec := httptest.NewRecorder()
		mw.RateLimit()(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}
