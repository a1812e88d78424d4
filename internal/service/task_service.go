package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"taskmanager/internal/model"
	"taskmanager/internal/repository"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultSortBy   = "createdAt"
)

// TaskStore persists tasks. Every query is scoped to a single owner.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error

	FindByUser(ctx context.Context, userID uuid.UUID, page repository.PageRequest) (*repository.Page, error)
	Search(ctx context.Context, userID uuid.UUID, term string, page repository.PageRequest) (*repository.Page, error)
	FindByStatus(ctx context.Context, userID uuid.UUID, status model.TaskStatus, page repository.PageRequest) (*repository.Page, error)
	FindByPriority(ctx context.Context, userID uuid.UUID, priority model.Priority, page repository.PageRequest) (*repository.Page, error)

	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CountByUserAndStatus(ctx context.Context, userID uuid.UUID, status model.TaskStatus) (int64, error)
	CountByUserAndPriority(ctx context.Context, userID uuid.UUID, priority model.Priority) (int64, error)
}

// UserDirectory resolves the authenticated principal to a user record.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type TaskService struct {
	tasks TaskStore
	users UserDirectory
}

func NewTaskService(tasks TaskStore, users UserDirectory) *TaskService {
	return &TaskService{tasks: tasks, users: users}
}

// CreateTask stores a new task owned by userID. Status defaults to TODO and
// priority to MEDIUM when the request leaves them out.
func (s *TaskService) CreateTask(ctx context.Context, userID uuid.UUID, req TaskRequest) (*TaskResponse, error) {
	user, err := s.currentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := validateTaskRequest(req); err != nil {
		return nil, err
	}

	task := &model.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      model.StatusTodo,
		Priority:    model.PriorityMedium,
		DueDate:     req.DueDate,
		UserID:      user.ID,
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	task.User = *user

	resp := toTaskResponse(task)
	return &resp, nil
}

// GetTasks lists the caller's tasks. Exactly one query shape runs: a
// non-empty search wins over status, and status wins over priority.
func (s *TaskService) GetTasks(ctx context.Context, userID uuid.UUID, params ListParams) (*PageResponse, error) {
	user, err := s.currentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	pageReq, err := toPageRequest(params)
	if err != nil {
		return nil, err
	}

	var page *repository.Page
	switch {
	case params.Search != "":
		page, err = s.tasks.Search(ctx, user.ID, params.Search, pageReq)
	case params.Status != nil:
		if !params.Status.IsValid() {
			return nil, validationError(fmt.Sprintf("invalid status %q", *params.Status))
		}
		page, err = s.tasks.FindByStatus(ctx, user.ID, *params.Status, pageReq)
	case params.Priority != nil:
		if !params.Priority.IsValid() {
			return nil, validationError(fmt.Sprintf("invalid priority %q", *params.Priority))
		}
		page, err = s.tasks.FindByPriority(ctx, user.ID, *params.Priority, pageReq)
	default:
		page, err = s.tasks.FindByUser(ctx, user.ID, pageReq)
	}
	if err != nil {
		if errors.Is(err, repository.ErrInvalidSortField) {
			return nil, validationError(fmt.Sprintf("cannot sort by %q", params.SortBy))
		}
		return nil, err
	}

	return newPageResponse(page, pageReq), nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, userID, id uuid.UUID) (*TaskResponse, error) {
	task, err := s.ownedTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := toTaskResponse(task)
	return &resp, nil
}

// UpdateTask overwrites title, description and due date. Status and
// priority change only when the request carries them.
func (s *TaskService) UpdateTask(ctx context.Context, userID, id uuid.UUID, req TaskRequest) (*TaskResponse, error) {
	task, err := s.ownedTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := validateTaskRequest(req); err != nil {
		return nil, err
	}

	task.Title = req.Title
	task.Description = req.Description
	task.DueDate = req.DueDate
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	resp := toTaskResponse(task)
	return &resp, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, userID, id uuid.UUID) error {
	task, err := s.ownedTask(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

// GetStatistics runs seven independent counts; they are not a snapshot.
func (s *TaskService) GetStatistics(ctx context.Context, userID uuid.UUID) (*TaskStatistics, error) {
	user, err := s.currentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var stats TaskStatistics
	if stats.TotalTasks, err = s.tasks.CountByUser(ctx, user.ID); err != nil {
		return nil, err
	}

	byStatus := map[model.TaskStatus]*int64{
		model.StatusTodo:       &stats.TodoTasks,
		model.StatusInProgress: &stats.InProgressTasks,
		model.StatusDone:       &stats.DoneTasks,
	}
	for _, status := range model.TaskStatuses {
		if *byStatus[status], err = s.tasks.CountByUserAndStatus(ctx, user.ID, status); err != nil {
			return nil, err
		}
	}

	byPriority := map[model.Priority]*int64{
		model.PriorityHigh:   &stats.HighPriorityTasks,
		model.PriorityMedium: &stats.MediumPriorityTasks,
		model.PriorityLow:    &stats.LowPriorityTasks,
	}
	for _, priority := range model.Priorities {
		if *byPriority[priority], err = s.tasks.CountByUserAndPriority(ctx, user.ID, priority); err != nil {
			return nil, err
		}
	}

	return &stats, nil
}

func (s *TaskService) currentUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ownedTask loads a task and checks it belongs to userID. A missing task is
// reported before a foreign one.
func (s *TaskService) ownedTask(ctx context.Context, userID, id uuid.UUID) (*model.Task, error) {
	user, err := s.currentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if task.UserID != user.ID {
		return nil, ErrUnauthorizedAccess
	}
	return task, nil
}

func validateTaskRequest(req TaskRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return validationError("title is required")
	}
	if utf8.RuneCountInString(req.Title) > model.MaxTitleLength {
		return validationError(fmt.Sprintf("title must be at most %d characters", model.MaxTitleLength))
	}
	if utf8.RuneCountInString(req.Description) > model.MaxDescriptionLength {
		return validationError(fmt.Sprintf("description must be at most %d characters", model.MaxDescriptionLength))
	}
	if req.Status != nil && !req.Status.IsValid() {
		return validationError(fmt.Sprintf("invalid status %q", *req.Status))
	}
	if req.Priority != nil && !req.Priority.IsValid() {
		return validationError(fmt.Sprintf("invalid priority %q", *req.Priority))
	}
	return nil
}

func toPageRequest(params ListParams) (repository.PageRequest, error) {
	if params.Page < 0 {
		return repository.PageRequest{}, validationError("page must not be negative")
	}
	size := params.Size
	if size == 0 {
		size = DefaultPageSize
	}
	if size < 1 || size > MaxPageSize {
		return repository.PageRequest{}, validationError(fmt.Sprintf("size must be between 1 and %d", MaxPageSize))
	}
	sortBy := params.SortBy
	if sortBy == "" {
		sortBy = DefaultSortBy
	}
	return repository.PageRequest{
		Page:   params.Page,
		Size:   size,
		SortBy: sortBy,
		Desc:   strings.EqualFold(params.SortDir, "desc"),
	}, nil
}

func newPageResponse(page *repository.Page, req repository.PageRequest) *PageResponse {
	content := make([]TaskResponse, 0, len(page.Tasks))
	for i := range page.Tasks {
		content = append(content, toTaskResponse(&page.Tasks[i]))
	}

	totalPages := int((page.Total + int64(req.Size) - 1) / int64(req.Size))
	return &PageResponse{
		Content:       content,
		PageNumber:    req.Page,
		PageSize:      req.Size,
		TotalElements: page.Total,
		TotalPages:    totalPages,
		Last:          req.Page+1 >= totalPages,
	}
}
