package handler

import (
	"net/http"
	"time"

	"success-mcp/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Routes are the HTTP transport's endpoints.
type Routes struct {
	Tools    *ToolHandler
	Auth     *AuthHandler
	MCP      http.Handler
	Metrics  http.Handler
	Secret   []byte
	TokenTTL time.Duration
}

// NewRouter serves /mcp, the REST tool API, login, health and metrics.
// /mcp and /api/tools require a bearer token when a secret is configured.
func NewRouter(rt Routes) *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Mcp-Session-Id", middleware.APIKeyHeader},
		ExposeHeaders:    []string{"Mcp-Session-Id", "X-New-Token"},
		AllowCredentials: true,
	}))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if rt.Metrics != nil {
		r.GET("/metrics", gin.WrapH(rt.Metrics))
	}
	if rt.Auth != nil {
		r.POST("/api/login", rt.Auth.Login)
	}

	guard := []gin.HandlerFunc{middleware.APIKey()}
	if len(rt.Secret) > 0 {
		guard = append([]gin.HandlerFunc{middleware.JWTAuth(rt.Secret, rt.TokenTTL)}, guard...)
	}

	api := r.Group("/api/tools", guard...)
	api.GET("", rt.Tools.List)
	api.POST("/:name", rt.Tools.Invoke)

	if rt.MCP != nil {
		mcp := r.Group("/mcp", guard...)
		mcp.Any("", gin.WrapH(rt.MCP))
	}
	return r
}
