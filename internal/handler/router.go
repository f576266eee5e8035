package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shareit/service-booking/pkg/middleware"
)

// RouteRegistrar is implemented by every handler in this package.
type RouteRegistrar interface {
	RegisterRoutes(r *gin.RouterGroup)
}

// NewRouter builds the gin engine with the global middleware chain and the given handlers.
func NewRouter(log *zap.Logger, handlers ...RouteRegistrar) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	for _, h := range handlers {
		h.RegisterRoutes(&router.RouterGroup)
	}
	return router
}
