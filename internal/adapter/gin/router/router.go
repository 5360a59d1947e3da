package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"mongo-user-api/internal/adapter/gin/handler"
	"mongo-user-api/internal/adapter/gin/middleware"
)

// openAPIPath is the on-disk OpenAPI document served to the docs UI.
const openAPIPath = "./api/openapi/user.swagger.json"

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	redisClient *redis.Client,
	rateLimitCfg middleware.RateLimiterConfig,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.RateLimiter(redisClient, rateLimitCfg, log))

	router.GET("/", userHandler.Root)
	router.GET("/health", userHandler.Health)

	users := router.Group("/users")
	{
		users.POST("", userHandler.CreateUser)
		users.GET("", userHandler.ListUsers)
		users.GET("/count", userHandler.CountUsers)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	// Interactive API docs backed by the static OpenAPI document.
	swaggerHandler := httpSwagger.Handler(httpSwagger.URL("/docs/openapi.json"))
	router.GET("/docs/*any", func(c *gin.Context) {
		if c.Param("any") == "/openapi.json" {
			c.File(openAPIPath)
			return
		}
		swaggerHandler(c.Writer, c.Request)
	})

	return router
}
