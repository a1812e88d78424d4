package service

import (
	"time"

	"github.com/google/uuid"

	"taskmanager/internal/model"
)

// TaskRequest is the body of create and update calls.
type TaskRequest struct {
	Title       string            `json:"title" binding:"required,notblank,max=200" example:"Buy milk"`
	Description string            `json:"description" binding:"max=1000" example:"2 litres, semi-skimmed"`
	Status      *model.TaskStatus `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE" example:"TODO"`
	Priority    *model.Priority   `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH" example:"MEDIUM"`
	DueDate     *time.Time        `json:"dueDate" example:"2026-12-31T18:00:00Z"`
}

type TaskResponse struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Status      model.TaskStatus `json:"status"`
	Priority    model.Priority   `json:"priority"`
	DueDate     *time.Time       `json:"dueDate"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	Username    string           `json:"username"`
}

// ListParams selects the query shape, page and order of GetTasks.
type ListParams struct {
	Page     int
	Size     int
	SortBy   string
	SortDir  string
	Search   string
	Status   *model.TaskStatus
	Priority *model.Priority
}

// PageResponse is one zero-based page of tasks.
type PageResponse struct {
	Content       []TaskResponse `json:"content"`
	PageNumber    int            `json:"pageNumber"`
	PageSize      int            `json:"pageSize"`
	TotalElements int64          `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	Last          bool           `json:"last"`
}

type TaskStatistics struct {
	TotalTasks          int64 `json:"totalTasks"`
	TodoTasks           int64 `json:"todoTasks"`
	InProgressTasks     int64 `json:"inProgressTasks"`
	DoneTasks           int64 `json:"doneTasks"`
	HighPriorityTasks   int64 `json:"highPriorityTasks"`
	MediumPriorityTasks int64 `json:"mediumPriorityTasks"`
	LowPriorityTasks    int64 `json:"lowPriorityTasks"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" example:"alice"`
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required,min=6,max=72" example:"s3cret!"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"s3cret!"`
}

type AuthResponse struct {
	Token    string `json:"token"`
	Type     string `json:"type"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toTaskResponse(t *model.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Username:    t.User.Username,
	}
}
