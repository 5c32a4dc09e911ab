package httpserver

import (
	"context"

	"github.com/gin-gonic/gin"

	extractionHTTP "parent-care-assistant/internal/extraction/delivery/http"
	"parent-care-assistant/internal/middleware"
)

// setupExtractionDomain registers /api/v1/extractions and the action routes.
// The use case arrives fully built; storage and calendar are optional inside it.
func (srv HTTPServer) setupExtractionDomain(ctx context.Context, api *gin.RouterGroup, mw middleware.Middleware) error {
	h := extractionHTTP.New(srv.l, srv.extractionUC)
	extractionHTTP.RegisterRoutes(api, h, mw)

	srv.l.Infof(ctx, "Extraction domain registered")
	return nil
}
