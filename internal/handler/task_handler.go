package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService service.TaskService
}

func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup) {
	tasks := router.Group("/tasks", middleware.RequireAuth())
	{
		tasks.GET("", h.ListTasks)
		tasks.GET("/counts", h.GetCounts)
	}
	router.GET("/documents/mine", middleware.RequireAuth(), h.ListMyDocuments)
}

// ListTasks returns the documents waiting on the caller across all four types
// @Summary      List pending tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        type  query  string  false  "filter to one document type"
// @Success      200  {object}  response.Response{data=[]service.TaskItem}
// @Router       /tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.taskService.PendingTasks(c.Request.Context(), middleware.ActorFrom(c), c.Query("type"))
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tasks))
}

// ListMyDocuments returns every document the caller created, newest first
// @Summary      List my documents
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.MyDocument}
// @Router       /documents/mine [get]
func (h *TaskHandler) ListMyDocuments(c *gin.Context) {
	docs, err := h.taskService.MyDocuments(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, docs))
}

// GetCounts returns per-type pending counters for dashboard badges
// @Summary      Pending task counts
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.QueueCounts}
// @Router       /tasks/counts [get]
func (h *TaskHandler) GetCounts(c *gin.Context) {
	counts, err := h.taskService.Counts(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		c.JSON(response.StatusOf(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, counts))
}
