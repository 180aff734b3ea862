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

type OvertimeHandler struct {
	overtimeService service.OvertimeService
	confirm         gin.HandlerFunc
}

func NewOvertimeHandler(overtimeService service.OvertimeService, confirm gin.HandlerFunc) *OvertimeHandler {
	return &OvertimeHandler{overtimeService: overtimeService, confirm: confirm}
}

func (h *OvertimeHandler) RegisterRoutes(router *gin.RouterGroup) {
	overtime := router.Group("/overtime-requests")
	{
		overtime.GET("", middleware.RequireAuth(), h.ListRequests)
		overtime.GET("/:id", middleware.RequireAuth(), h.GetRequest)
		overtime.POST("", middleware.RequireRole(
			workflow.RoleAdministrativeOfficer, workflow.RoleFactoryManager, workflow.RoleManagement), h.CreateRequest)
		overtime.PUT("/:id", middleware.RequireAuth(), h.UpdateRequest)
		overtime.POST("/:id/approve/:step", middleware.RequireAuth(), h.confirm, h.ApproveRequest)
		overtime.POST("/:id/reject", middleware.RequireAuth(), h.confirm, h.RejectRequest)
		overtime.POST("/:id/cancel", middleware.RequireAuth(), h.confirm, h.CancelRequest)
	}
}

// CreateRequest creates an overtime request; it enters the approval chain
// immediately, there is no draft stage.
// @Summary      Create overtime request
// @Tags         overtime
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.OvertimeInput  true  "Request payload"
// @Success      201      {object}  response.Response{data=service.OvertimeResponse}
// @Router       /overtime-requests [post]
func (h *OvertimeHandler) CreateRequest(c *gin.Context) {
	var req service.OvertimeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.overtimeService.Create(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// UpdateRequest replaces the item set
// @Summary      Update overtime request
// @Tags         overtime
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Request ID"
// @Param        payload  body      service.OvertimeInput  true  "Request payload"
// @Success      200      {object}  response.Response{data=service.OvertimeResponse}
// @Router       /overtime-requests/{id} [put]
func (h *OvertimeHandler) UpdateRequest(c *gin.Context) {
	var req service.OvertimeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.overtimeService.Update(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ApproveRequest fires one approval gate. Requires the X-Confirm-Password header.
// @Summary      Approve overtime request step
// @Tags         overtime
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string  true  "Request ID"
// @Param        step  path  string  true  "Step name"  Enums(admin, factory, management)
// @Param        X-Confirm-Password  header  string  true  "Current password"
// @Success      200   {object}  response.Response{data=service.OvertimeResponse}
// @Router       /overtime-requests/{id}/approve/{step} [post]
func (h *OvertimeHandler) ApproveRequest(c *gin.Context) {
	result, err := h.overtimeService.Approve(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), c.Param("step"))
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// RejectRequest moves a pending request to the rejected terminal. Requires the
// X-Confirm-Password header.
// @Summary      Reject overtime request
// @Tags         overtime
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Request ID"
// @Param        X-Confirm-Password  header  string  true  "Current password"
// @Success      200  {object}  response.Response{data=service.OvertimeResponse}
// @Router       /overtime-requests/{id}/reject [post]
func (h *OvertimeHandler) RejectRequest(c *gin.Context) {
	var req cancelPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Reason = ""
	}

	result, err := h.overtimeService.Reject(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Reason)
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CancelRequest withdraws the request. Requires the X-Confirm-Password header.
// @Summary      Cancel overtime request
// @Tags         overtime
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Request ID"
// @Param        X-Confirm-Password  header  string  true  "Current password"
// @Success      200  {object}  response.Response{data=service.OvertimeResponse}
// @Router       /overtime-requests/{id}/cancel [post]
func (h *OvertimeHandler) CancelRequest(c *gin.Context) {
	var req cancelPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Reason = ""
	}

	result, err := h.overtimeService.Cancel(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Reason)
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetRequest returns one overtime request
// @Summary      Get overtime request
// @Tags         overtime
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.OvertimeResponse}
// @Router       /overtime-requests/{id} [get]
func (h *OvertimeHandler) GetRequest(c *gin.Context) {
	result, err := h.overtimeService.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListRequests returns all overtime requests, newest first
// @Summary      List overtime requests
// @Tags         overtime
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page"
// @Param        limit  query  int  false  "Page size"
// @Success      200    {object}  response.Response
// @Router       /overtime-requests [get]
func (h *OvertimeHandler) ListRequests(c *gin.Context) {
	params := pagination.Parse(c)
	results, total, err := h.overtimeService.List(c.Request.Context(), middleware.ActorFrom(c), params.Page, params.Limit)
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
