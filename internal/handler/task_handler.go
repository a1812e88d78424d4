package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskmanager/internal/model"
	"taskmanager/internal/service"
)

type TaskService interface {
	CreateTask(ctx context.Context, userID uuid.UUID, req service.TaskRequest) (*service.TaskResponse, error)
	GetTasks(ctx context.Context, userID uuid.UUID, params service.ListParams) (*service.PageResponse, error)
	GetTaskByID(ctx context.Context, userID, id uuid.UUID) (*service.TaskResponse, error)
	UpdateTask(ctx context.Context, userID, id uuid.UUID, req service.TaskRequest) (*service.TaskResponse, error)
	DeleteTask(ctx context.Context, userID, id uuid.UUID) error
	GetStatistics(ctx context.Context, userID uuid.UUID) (*service.TaskStatistics, error)
}

type TaskHandler struct {
	tasks TaskService
}

func NewTaskHandler(tasks TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// ListQuery представляет параметры списка задач
type ListQuery struct {
	Page     int    `form:"page,default=0" binding:"min=0"`
	Size     int    `form:"size,default=10" binding:"min=1,max=100"`
	SortBy   string `form:"sortBy,default=createdAt"`
	SortDir  string `form:"sortDir,default=desc"`
	Search   string `form:"search"`
	// status и priority проверяет сервис: при поиске они игнорируются
	Status   string `form:"status"`
	Priority string `form:"priority"`
}

func (q ListQuery) params() service.ListParams {
	params := service.ListParams{
		Page:    q.Page,
		Size:    q.Size,
		SortBy:  q.SortBy,
		SortDir: q.SortDir,
		Search:  q.Search,
	}
	if q.Status != "" {
		status := model.TaskStatus(q.Status)
		params.Status = &status
	}
	if q.Priority != "" {
		priority := model.Priority(q.Priority)
		params.Priority = &priority
	}
	return params
}

// Create создает новую задачу
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body service.TaskRequest true "Task"
// @Success      201 {object} APIResponse{data=service.TaskResponse}
// @Failure      400 {object} APIResponse
// @Failure      401 {object} APIResponse
// @Failure      404 {object} APIResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), userID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Task created successfully", task)
}

// List возвращает страницу задач текущего пользователя.
// search имеет приоритет над status, status над priority.
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        page     query int    false "Zero-based page" default(0)
// @Param        size     query int    false "Page size" default(10)
// @Param        sortBy   query string false "Sort field" default(createdAt)
// @Param        sortDir  query string false "asc or desc" default(desc)
// @Param        search   query string false "Substring of title or description"
// @Param        status   query string false "TODO, IN_PROGRESS or DONE"
// @Param        priority query string false "LOW, MEDIUM or HIGH"
// @Success      200 {object} APIResponse{data=service.PageResponse}
// @Failure      400 {object} APIResponse
// @Failure      401 {object} APIResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeBindingError(c, err)
		return
	}

	page, err := h.tasks.GetTasks(c.Request.Context(), userID, query.params())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Tasks retrieved successfully", page)
}

// GetByID получает задачу по ID
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} APIResponse{data=service.TaskResponse}
// @Failure      403 {object} APIResponse
// @Failure      404 {object} APIResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTaskByID(c.Request.Context(), userID, taskID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task retrieved successfully", task)
}

// Update обновляет задачу
// @Summary      Update a task
// @Description  Title, description and dueDate are replaced; status and priority only when present.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string            true "Task ID"
// @Param        request body service.TaskRequest true "Task"
// @Success      200 {object} APIResponse{data=service.TaskResponse}
// @Failure      400 {object} APIResponse
// @Failure      403 {object} APIResponse
// @Failure      404 {object} APIResponse
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	var req service.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), userID, taskID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task updated successfully", task)
}

// Delete удаляет задачу
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} APIResponse
// @Failure      403 {object} APIResponse
// @Failure      404 {object} APIResponse
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(c.Request.Context(), userID, taskID); err != nil {
		writeServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task deleted successfully", nil)
}

// Statistics возвращает счетчики задач по статусу и приоритету
// @Summary      Task statistics
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse{data=service.TaskStatistics}
// @Failure      401 {object} APIResponse
// @Router       /api/tasks/statistics [get]
func (h *TaskHandler) Statistics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.tasks.GetStatistics(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Statistics retrieved successfully", stats)
}
