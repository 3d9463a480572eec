package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type sessionsByToken map[string]*entity.Session

func (s sessionsByToken) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	if token == "explode" {
		return nil, errors.New("db down")
	}
	return s[token], nil
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.GetCustomerIDFromContext(r.Context())
	if !ok {
		w.Write([]byte("guest"))
		return
	}
	w.Write([]byte(id.String()))
}

func TestOptionalAuth(t *testing.T) {
	customerID := uuid.New()
	token := uuid.NewString()
	sessions := sessionsByToken{token: {CustomerID: customerID}}
	h := OptionalAuth(sessions, zap.NewNop())(http.HandlerFunc(whoAmI))

	cases := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"guest", "", http.StatusOK, "guest"},
		{"valid", "Bearer " + token, http.StatusOK, customerID.String()},
		{"lowercase scheme", "bearer " + token, http.StatusOK, customerID.String()},
		{"bad scheme", "Basic " + token, http.StatusUnauthorized, ""},
		{"unknown token", "Bearer " + uuid.NewString(), http.StatusUnauthorized, ""},
		{"store error", "Bearer explode", http.StatusServiceUnavailable, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.code, rec.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, rec.Body.String())
			}
		})
	}
}

func TestRequireCustomer(t *testing.T) {
	h := RequireCustomer(http.HandlerFunc(whoAmI))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(utils.SetCustomerContext(req.Context(), uuid.New()))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, int64, time.Duration, error) {
	l.keys = append(l.keys, key)
	return l.allowed, 11, 1500 * time.Millisecond, l.err
}

func TestRateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusCreated) })

	denied := &stubLimiter{allowed: false}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
	req.RemoteAddr = "203.0.113.9:4242"
	RateLimit(denied, zap.NewNop())(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, []string{"ip:203.0.113.9"}, denied.keys)

	broken := &stubLimiter{err: errors.New("redis down")}
	rec = httptest.NewRecorder()
	RateLimit(broken, zap.NewNop())(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bookings", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRecover(t *testing.T) {
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	rec := httptest.NewRecorder()

	Recover(zap.NewNop())(boom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":false,"message":"Internal server error"}`, rec.Body.String())
}

func TestLogger_RequestID(t *testing.T) {
	teapot := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	h := Logger(zap.NewNop())(teapot)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestLogger_RecordsCustomerFromAuth(t *testing.T) {
	customerID := uuid.New()
	token := uuid.NewString()
	sessions := sessionsByToken{token: {CustomerID: customerID}}

	core, logs := observer.New(zap.InfoLevel)
	h := Logger(zap.New(core))(OptionalAuth(sessions, zap.NewNop())(http.HandlerFunc(whoAmI)))

	req := httptest.NewRequest(http.MethodGet, "/api/user/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/movies", nil))

	entries := logs.FilterMessage("HTTP request").AllUntimed()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, customerID.String(), entries[0].ContextMap()["customer_id"])
		assert.NotContains(t, entries[1].ContextMap(), "customer_id")
	}
}

func TestCORS(t *testing.T) {
	const origin = "https://tickets.example.com"
	reached := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("reached")) })
	h := CORS([]string{origin})(reached)

	req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)
	req.Header.Set("Origin", origin)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Idempotent-Replayed")
	assert.Contains(t, rec.Header().Values("Vary"), "Origin")
	assert.Equal(t, "reached", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/movies", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/bookings", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "300", rec.Header().Get("Access-Control-Max-Age"))
	assert.NotEqual(t, "reached", rec.Body.String())
}
