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

type RequestHandler struct {
	requestService service.RequestService
	confirm        gin.HandlerFunc
}

func NewRequestHandler(requestService service.RequestService, confirm gin.HandlerFunc) *RequestHandler {
	return &RequestHandler{requestService: requestService, confirm: confirm}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/requests")
	{
		// Any authenticated employee may raise a general request.
		requests.GET("", middleware.RequireAuth(), h.ListRequests)
		requests.GET("/:id", middleware.RequireAuth(), h.GetRequest)
		requests.POST("", middleware.RequireAuth(), h.CreateRequest)
		requests.PUT("/:id", middleware.RequireAuth(), h.UpdateRequest)
		requests.POST("/:id/approve/:step", middleware.RequireAuth(), h.confirm, h.ApproveRequest)
		requests.POST("/:id/cancel", middleware.RequireAuth(), h.confirm, h.CancelRequest)
		requests.POST("/:id/complete", middleware.RequireRole(workflow.RoleManagement), h.CompleteRequest)
	}
}

// CreateRequest creates a general request in draft status
// @Summary      Create general request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.RequestInput  true  "Request payload"
// @Success      201      {object}  response.Response{data=service.RequestResponse}
// @Router       /requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req service.RequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.requestService.Create(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// UpdateRequest replaces the item set
// @Summary      Update general request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                true  "Request ID"
// @Param        payload  body      service.RequestInput  true  "Request payload"
// @Success      200      {object}  response.Response{data=service.RequestResponse}
// @Router       /requests/{id} [put]
func (h *RequestHandler) UpdateRequest(c *gin.Context) {
	var req service.RequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.requestService.Update(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ApproveRequest fires one approval step; the creator step submits the draft.
// Requires the X-Confirm-Password header.
// @Summary      Approve general request step
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string  true  "Request ID"
// @Param        step  path  string  true  "Step name"  Enums(creator, factory, management)
// @Param        X-Confirm-Password  header  string  true  "Current password"
// @Success      200   {object}  response.Response{data=service.RequestResponse}
// @Router       /requests/{id}/approve/{step} [post]
func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	result, err := h.requestService.Approve(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), c.Param("step"))
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CancelRequest cancels the request. Requires the X-Confirm-Password header.
// @Summary      Cancel general request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Request ID"
// @Param        X-Confirm-Password  header  string  true  "Current password"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Router       /requests/{id}/cancel [post]
func (h *RequestHandler) CancelRequest(c *gin.Context) {
	var req cancelPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Reason = ""
	}

	result, err := h.requestService.Cancel(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Reason)
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CompleteRequest marks a fully approved request as executed
// @Summary      Complete general request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Router       /requests/{id}/complete [post]
func (h *RequestHandler) CompleteRequest(c *gin.Context) {
	result, err := h.requestService.Complete(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetRequest returns one general request
// @Summary      Get general request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Router       /requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	result, err := h.requestService.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListRequests returns requests visible to the caller; other people's drafts
// are never listed
// @Summary      List general requests
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page"
// @Param        limit  query  int  false  "Page size"
// @Success      200    {object}  response.Response
// @Router       /requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	params := pagination.Parse(c)
	results, total, err := h.requestService.List(c.Request.Context(), middleware.ActorFrom(c), params.Page, params.Limit)
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
