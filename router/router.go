// Package router wires the order-management API routes.
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kendall-kelly/formalwear-orders-api/config"
	"github.com/kendall-kelly/formalwear-orders-api/controllers"
	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/middleware"
	"go.uber.org/zap"
)

// RequestIDHeader carries the id that ties a request to its log line
const RequestIDHeader = "X-Request-ID"

// DefaultAllowedOrigins is used when the config lists no CORS origin
var DefaultAllowedOrigins = []string{"http://localhost:3000"}

// New builds the engine. auth authenticates every route except health,
// database status and the photo files; pass middleware.EnsureValidToken(cfg)
// in production.
func New(cfg *config.Config, auth gin.HandlerFunc) *gin.Engine {
	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(config.GetLogger()))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", RequestIDHeader},
		ExposeHeaders:    []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	staff := middleware.RequireRole(dto.RoleAdministrator, dto.RoleAttendant)
	anyEmployee := middleware.RequireRole(dto.RoleAdministrator, dto.RoleAttendant, dto.RoleSeamstress)
	adminOnly := middleware.RequireRole(dto.RoleAdministrator)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", controllers.HealthCheck)
		v1.GET("/database/status", controllers.DatabaseStatus)
		v1.GET("/uploads/:filename", controllers.GetUploadedImage)
	}

	api := v1.Group("", auth)
	{
		api.POST("/employees", controllers.CreateEmployee)
		api.GET("/employees/me", controllers.GetMyProfile)
		api.GET("/employees", anyEmployee, controllers.ListEmployees)
		api.PUT("/employees/:id", adminOnly, controllers.UpdateEmployee)

		api.GET("/refusal-reasons", anyEmployee, controllers.ListRefusalReasons)
		api.GET("/addresses/:postal_code", staff, controllers.LookupAddress)
	}

	orders := api.Group("/orders")
	{
		orders.GET("", anyEmployee, controllers.ListOrders)
		orders.GET("/counts", anyEmployee, controllers.CountOrders)
		orders.GET("/:id", anyEmployee, controllers.GetOrder)
		orders.GET("/:id/history", anyEmployee, controllers.GetOrderHistory)

		orders.POST("", staff, controllers.CreateOrder)
		orders.PUT("/:id", staff, controllers.UpdateOrder)
		orders.POST("/:id/photo", staff, controllers.UploadOrderPhoto)

		orders.POST("/:id/assign", staff, controllers.AssignAttendant)
		orders.POST("/:id/start-production", anyEmployee, controllers.StartProduction)
		orders.POST("/:id/ready", anyEmployee, controllers.MarkReady)
		orders.POST("/:id/pickup", staff, controllers.Pickup)
		orders.POST("/:id/returned", staff, controllers.MarkReturned)
		orders.POST("/:id/refuse", staff, controllers.RefuseOrder)
		orders.POST("/:id/reopen", staff, controllers.ReopenOrder)
	}

	return router
}

// requestLogger logs one line per request, tagged with the caller's request
// id or a fresh one
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request failed", fields...)
		case c.Writer.Status() >= 400:
			logger.Info("request rejected", fields...)
		default:
			logger.Debug("request served", fields...)
		}
	}
}
