package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"parent-care-assistant/internal/model"
	"parent-care-assistant/pkg/log"
	"parent-care-assistant/pkg/response"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderRequestID = "X-Request-ID"

	scopeKey = "scope"
)

type scopeCtxKey struct{}

// RequestID propagates X-Request-ID, generating one when absent, so every log
// line of the request carries it.
func (mw Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(log.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// Auth resolves the caller from X-User-ID into a model.Scope. When the
// middleware requires a user, anonymous requests get 401.
func (mw Middleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sc := model.Scope{UserID: strings.TrimSpace(c.GetHeader(HeaderUserID))}
		if sc.IsAnonymous() && mw.requireUser {
			response.Unauthorized(c)
			return
		}
		c.Set(scopeKey, sc)
		c.Request = c.Request.WithContext(SetScopeToContext(c.Request.Context(), sc))
		c.Next()
	}
}

// GetScope returns the scope stored by Auth, or the anonymous scope.
func GetScope(c *gin.Context) model.Scope {
	if v, ok := c.Get(scopeKey); ok {
		if sc, ok := v.(model.Scope); ok {
			return sc
		}
	}
	return model.Scope{}
}

func SetScopeToContext(ctx context.Context, sc model.Scope) context.Context {
	return context.WithValue(ctx, scopeCtxKey{}, sc)
}

func GetScopeFromContext(ctx context.Context) model.Scope {
	if sc, ok := ctx.Value(scopeCtxKey{}).(model.Scope); ok {
		return sc
	}
	return model.Scope{}
}
