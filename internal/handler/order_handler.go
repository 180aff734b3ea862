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

type OrderHandler struct {
	orderService service.OrderService
	confirm      gin.HandlerFunc
}

// NewOrderHandler wires the sales order endpoints. confirm is the password
// re-verification middleware mounted on approve and cancel.
func NewOrderHandler(orderService service.OrderService, confirm gin.HandlerFunc) *OrderHandler {
	return &OrderHandler{orderService: orderService, confirm: confirm}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	{
		orders.GET("", middleware.RequireAuth(), h.ListOrders)
		orders.GET("/:id", middleware.RequireAuth(), h.GetOrder)
		orders.POST("", middleware.RequireRole(workflow.RoleManagement, workflow.RoleSalesManager), h.CreateOrder)
		orders.PUT("/:id", middleware.RequireAuth(), h.UpdateOrder)
		orders.POST("/:id/approve/:step", middleware.RequireAuth(), h.confirm, h.ApproveOrder)
		orders.POST("/:id/cancel", middleware.RequireAuth(), h.confirm, h.CancelOrder)
	}
}

type cancelPayload struct {
	Reason string `json:"reason"`
}

// CreateOrder creates a sales order in draft status
// @Summary      Create sales order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.OrderInput  true  "Order payload"
// @Success      201      {object}  response.Response{data=service.OrderResponse}
// @Failure      400      {object}  response.Response
// @Router       /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.OrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// UpdateOrder replaces the order header and item set
// @Summary      Update sales order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string              true  "Order ID"
// @Param        payload  body      service.OrderInput  true  "Order payload"
// @Success      200      {object}  response.Response{data=service.OrderResponse}
// @Failure      403      {object}  response.Response
// @Router       /orders/{id} [put]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req service.OrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// ApproveOrder fires one approval step. Requires the X-Confirm-Password header.
// @Summary      Approve sales order step
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string  true  "Order ID"
// @Param        step  path  string  true  "Step name"  Enums(sales, finance, management)
// @Param        X-Confirm-Password  header  string  true  "Current password"
// @Success      200   {object}  response.Response{data=service.OrderResponse}
// @Failure      403   {object}  response.Response
// @Router       /orders/{id}/approve/{step} [post]
func (h *OrderHandler) ApproveOrder(c *gin.Context) {
	order, err := h.orderService.Approve(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), c.Param("step"))
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// CancelOrder cancels the order. Requires the X-Confirm-Password header.
// @Summary      Cancel sales order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Order ID"
// @Param        X-Confirm-Password  header  string  true  "Current password"
// @Success      200  {object}  response.Response{data=service.OrderResponse}
// @Failure      403  {object}  response.Response
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	var req cancelPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		// Allow empty body — reason is optional
		req.Reason = ""
	}

	order, err := h.orderService.Cancel(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Reason)
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// GetOrder returns one order with items and lookups resolved
// @Summary      Get sales order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Order ID"
// @Success      200  {object}  response.Response{data=service.OrderResponse}
// @Failure      404  {object}  response.Response
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// ListOrders returns orders visible to the caller, newest first
// @Summary      List sales orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page"
// @Param        limit  query  int  false  "Page size"
// @Success      200    {object}  response.Response
// @Router       /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	params := pagination.Parse(c)
	orders, total, err := h.orderService.List(c.Request.Context(), middleware.ActorFrom(c), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   orders,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}
