package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/nemopss/expense-tracker/backend/logger"
)

// NewRouter registers every route on a fresh engine.
func NewRouter(h *Handler, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(log), SecurityHeaders())

	r.GET("/healthz", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	protected := r.Group("/", h.AuthMiddleware())
	protected.GET("/user", h.GetUser)

	protected.GET("/transaction", h.GetTransactions)
	protected.POST("/transaction", h.CreateTransaction)
	protected.GET("/transaction/list", h.ListTransactions)
	protected.GET("/transaction/stats", h.GetStats)
	protected.GET("/transaction/:id", h.GetTransaction)
	protected.PATCH("/transaction/:id", h.PatchTransaction)
	protected.PUT("/transaction/:id", h.UpdateTransaction)
	protected.DELETE("/transaction/:id", h.DeleteTransaction)

	protected.GET("/category", h.GetCategories)
	protected.POST("/category", h.CreateCategory)
	protected.GET("/category/:id", h.GetCategory)
	protected.PATCH("/category/:id", h.PatchCategory)
	protected.PUT("/category/:id", h.UpdateCategory)
	protected.DELETE("/category/:id", h.DeleteCategory)

	return r
}
