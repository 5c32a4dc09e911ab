package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"parent-care-assistant/internal/model"
	"parent-care-assistant/pkg/log"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw Middleware, handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{mw.RequestID(), mw.Auth()}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		sc := GetScope(c)
		ctxScope := GetScopeFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"user":       sc.UserID,
			"same":       sc == ctxScope,
			"request_id": log.RequestID(c.Request.Context()),
		})
	})
	r.GET("/x", chain...)
	return r
}

func TestAuth_ReadsUserHeader(t *testing.T) {
	r := newRouter(New(log.NewNop(), Config{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderUserID, " user-1 ")
	req.Header.Set(HeaderRequestID, "req-42")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"user-1","same":true,"request_id":"req-42"}`, w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
}

func TestAuth_AnonymousAllowedByDefault(t *testing.T) {
	r := newRouter(New(log.NewNop(), Config{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestAuth_RequireUser(t *testing.T) {
	r := newRouter(New(log.NewNop(), Config{RequireUser: true}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimit(t *testing.T) {
	mw := New(log.NewNop(), Config{RateLimitPerMin: 6}) // burst 1
	r := newRouter(mw, mw.RateLimit())

	do := func(user string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if user != "" {
			req.Header.Set(HeaderUserID, user)
		}
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("a"))
	assert.Equal(t, http.StatusTooManyRequests, do("a"))
	assert.Equal(t, http.StatusOK, do("b"))
	assert.Equal(t, http.StatusOK, do(""))
	assert.Equal(t, http.StatusTooManyRequests, do(""))
}

func TestRateLimit_Disabled(t *testing.T) {
	mw := New(log.NewNop(), Config{})
	r := newRouter(mw, mw.RateLimit())

	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestGetScope_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, model.Scope{}, GetScope(c))
}
