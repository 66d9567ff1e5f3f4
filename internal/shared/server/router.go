package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datalab-backend/internal/apiconfig"
	"datalab-backend/internal/chat"
	"datalab-backend/internal/dimensions"
	"datalab-backend/internal/processing"
	"datalab-backend/internal/shared/config"
	"datalab-backend/internal/shared/server/middleware"
	"datalab-backend/internal/shared/server/respond"
	"datalab-backend/internal/uploads"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config            config.Config
	ProcessingHandler *processing.Handler
	ChatHandler       *chat.Handler
	ConfigHandler     *apiconfig.Handler
	DimensionsHandler *dimensions.Handler
	UploadsHandler    *uploads.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	deps.ProcessingHandler.RegisterRoutes(api)
	deps.ChatHandler.RegisterRoutes(api)
	deps.ConfigHandler.RegisterRoutes(api)
	deps.DimensionsHandler.RegisterRoutes(api)
	deps.UploadsHandler.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
