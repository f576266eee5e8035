package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shareit/service-booking/internal/application"
	"github.com/shareit/service-booking/pkg/middleware"
	"github.com/shareit/service-booking/pkg/response"
)

// RequestHandler handles item request endpoints.
type RequestHandler struct {
	service *application.RequestService
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(service *application.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// RegisterRoutes registers item request routes.
func (h *RequestHandler) RegisterRoutes(r *gin.RouterGroup) {
	requests := r.Group("/api/v1/requests")
	requests.Use(middleware.ActorMiddleware())
	{
		requests.POST("", h.CreateRequest)
		requests.GET("", h.GetOwnRequests)
		requests.GET("/all", h.GetOtherRequests)
		requests.GET("/:id", h.GetRequest)
	}
}

// CreateRequest handles POST /api/v1/requests.
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req application.CreateItemRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.service.CreateRequest(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetOwnRequests handles GET /api/v1/requests.
func (h *RequestHandler) GetOwnRequests(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	result, err := h.service.GetOwnRequests(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetOtherRequests handles GET /api/v1/requests/all.
func (h *RequestHandler) GetOtherRequests(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	from, size, ok := parsePagination(c)
	if !ok {
		return
	}
	result, err := h.service.GetOtherRequests(c.Request.Context(), userID, from, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetRequest handles GET /api/v1/requests/:id.
func (h *RequestHandler) GetRequest(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request ID")
		return
	}
	result, err := h.service.GetRequest(c.Request.Context(), requestID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
