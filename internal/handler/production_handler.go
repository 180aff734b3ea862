package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/internal/workflow"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProductionHandler struct {
	productionService service.ProductionService
	confirm           gin.HandlerFunc
}

func NewProductionHandler(productionService service.ProductionService, confirm gin.HandlerFunc) *ProductionHandler {
	return &ProductionHandler{productionService: productionService, confirm: confirm}
}

func (h *ProductionHandler) RegisterRoutes(router *gin.RouterGroup) {
	production := router.Group("/production-requests")
	{
		production.GET("", middleware.RequireAuth(), h.ListRequests)
		production.GET("/:id", middleware.RequireAuth(), h.GetRequest)
		production.POST("", middleware.RequireRole(workflow.RoleFactoryPlanner, workflow.RoleManagement), h.CreateRequest)
		production.PUT("/:id", middleware.RequireAuth(), h.UpdateRequest)
		production.POST("/:id/approve/:step", middleware.RequireAuth(), h.confirm, h.ApproveRequest)
		production.POST("/:id/cancel", middleware.RequireAuth(), h.confirm, h.CancelRequest)
	}
}

// CreateRequest creates a production request in draft status
// @Summary      Create production request
// @Tags         production
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ProductionInput  true  "Request payload"
// @Success      201      {object}  response.Response{data=service.ProductionResponse}
// @Router       /production-requests [post]
func (h *ProductionHandler) CreateRequest(c *gin.Context) {
	var req service.ProductionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.productionService.Create(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// UpdateRequest replaces the request header and item set
// @Summary      Update production request
// @Tags         production
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Request ID"
// @Param        payload  body      service.ProductionInput  true  "Request payload"
// @Success      200      {object}  response.Response{data=service.ProductionResponse}
// @Router       /production-requests/{id} [put]
func (h *ProductionHandler) UpdateRequest(c *gin.Context) {
	var req service.ProductionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.productionService.Update(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ApproveRequest fires one signature step. Requires the X-Confirm-Password header.
// @Summary      Sign production request step
// @Tags         production
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string  true  "Request ID"
// @Param        step  path  string  true  "Step name"  Enums(planning, factory)
// @Param        X-Confirm-Password  header  string  true  "Current password"
// @Success      200   {object}  response.Response{data=service.ProductionResponse}
// @Router       /production-requests/{id}/approve/{step} [post]
func (h *ProductionHandler) ApproveRequest(c *gin.Context) {
	result, err := h.productionService.Approve(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), c.Param("step"))
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CancelRequest cancels the request. Requires the X-Confirm-Password header.
// @Summary      Cancel production request
// @Tags         production
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Request ID"
// @Param        X-Confirm-Password  header  string  true  "Current password"
// @Success      200  {object}  response.Response{data=service.ProductionResponse}
// @Router       /production-requests/{id}/cancel [post]
func (h *ProductionHandler) CancelRequest(c *gin.Context) {
	var req cancelPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Reason = ""
	}

	result, err := h.productionService.Cancel(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Reason)
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetRequest returns one production request
// @Summary      Get production request
// @Tags         production
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.ProductionResponse}
// @Router       /production-requests/{id} [get]
func (h *ProductionHandler) GetRequest(c *gin.Context) {
	result, err := h.productionService.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListRequests returns production requests visible to the caller
// @Summary      List production requests
// @Tags         production
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page"
// @Param        limit  query  int  false  "Page size"
// @Success      200    {object}  response.Response
// @Router       /production-requests [get]
func (h *ProductionHandler) ListRequests(c *gin.Context) {
	params := pagination.Parse(c)
	results, total, err := h.productionService.List(c.Request.Context(), middleware.ActorFrom(c), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   results,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}
