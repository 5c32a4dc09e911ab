package http

import (
	"parent-care-assistant/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes maps HTTP verbs and paths to handler methods. Every route
// resolves the caller scope; extraction is also rate limited.
func RegisterRoutes(rg *gin.RouterGroup, h *handler, mw middleware.Middleware) {
	rg.POST("/extractions", mw.Auth(), mw.RateLimit(), h.Extract)

	rg.POST("/conversations/:id/actions", mw.Auth(), h.Confirm)

	parents := rg.Group("/parents/:id")
	{
		parents.GET("/actions", mw.Auth(), h.ListActions)
		parents.GET("/actions.ics", mw.Auth(), h.ExportICS)
		parents.POST("/actions/calendar", mw.Auth(), h.SyncCalendar)
	}

	rg.POST("/actions/:id/complete", mw.Auth(), h.CompleteAction)
}
