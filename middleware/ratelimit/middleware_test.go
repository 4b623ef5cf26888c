package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newLimitedEcho(cfg *Config) *echo.Echo {
	e := echo.New()
	e.POST("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, Middleware(cfg))
	return e
}

func TestMiddleware(t *testing.T) {
	t.Run("allows under the limit and blocks over it", func(t *testing.T) {
		e := newLimitedEcho(&Config{Rate: 3, Period: time.Minute})

		for range 3 {
			rec := doRequest(e, "")
			assert.Equal(t, http.StatusOK, rec.Code)
		}

		rec := doRequest(e, "")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("sets rate limit headers", func(t *testing.T) {
		e := newLimitedEcho(&Config{Rate: 5, Period: time.Minute})

		rec := doRequest(e, "")
		assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("skipper bypasses the limit", func(t *testing.T) {
		e := newLimitedEcho(&Config{
			Rate:    1,
			Period:  time.Minute,
			Skipper: func(c echo.Context) bool { return true },
		})

		for range 5 {
			rec := doRequest(e, "")
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestPhoneKeyGenerator(t *testing.T) {
	t.Run("separate budgets per phone", func(t *testing.T) {
		e := newLimitedEcho(&Config{Rate: 1, Period: time.Minute, KeyGenerator: PhoneKeyGenerator})

		rec := doRequest(e, `{"phone":"+237699000001"}`)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(e, `{"phone":"+237699000001"}`)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)

		rec = doRequest(e, `{"phone":"+237699000002"}`)
		assert.Equal(t, http.StatusOK, rec.Code, "a different phone has its own budget")
	})

	t.Run("formatting variants share one budget", func(t *testing.T) {
		e := newLimitedEcho(&Config{Rate: 1, Period: time.Minute, KeyGenerator: PhoneKeyGenerator})

		rec := doRequest(e, `{"phone":"+237699000001"}`)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(e, `{"phone":"+237 699 00 00 01"}`)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("body stays readable for the handler", func(t *testing.T) {
		e := echo.New()
		var seen string
		e.POST("/", func(c echo.Context) error {
			var payload struct {
				Phone string `json:"phone"`
			}
			require.NoError(t, c.Bind(&payload))
			seen = payload.Phone
			return c.NoContent(http.StatusOK)
		}, Middleware(&Config{Rate: 10, Period: time.Minute, KeyGenerator: PhoneKeyGenerator}))

		doRequest(e, `{"phone":"+237699000001"}`)
		assert.Equal(t, "+237699000001", seen)
	})

	t.Run("falls back to ip without a phone", func(t *testing.T) {
		e := newLimitedEcho(&Config{Rate: 1, Period: time.Minute, KeyGenerator: PhoneKeyGenerator})

		rec := doRequest(e, `{}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		rec = doRequest(e, `not json`)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestMemoryStore(t *testing.T) {
	t.Run("increment and expiry", func(t *testing.T) {
		store := NewMemoryStore()
		reset := time.Now().Add(50 * time.Millisecond)

		assert.Equal(t, 1, store.Increment("k", reset))
		assert.Equal(t, 2, store.Increment("k", reset))

		count, _, exists := store.Get("k")
		assert.True(t, exists)
		assert.Equal(t, 2, count)

		time.Sleep(60 * time.Millisecond)
		_, _, exists = store.Get("k")
		assert.False(t, exists, "window expiry resets the count")
	})

	t.Run("increment reopens a lapsed window", func(t *testing.T) {
		store := NewMemoryStore()
		store.Increment("k", time.Now().Add(30*time.Millisecond))
		time.Sleep(40 * time.Millisecond)

		assert.Equal(t, 1, store.Increment("k", time.Now().Add(time.Minute)),
			"a lapsed window starts counting from scratch")
	})
}
