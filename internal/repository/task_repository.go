package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskmanager/internal/model"
)

// sortColumns maps accepted sort keys (API camelCase and column names) to columns.
var sortColumns = map[string]string{
	"id":          "id",
	"title":       "title",
	"description": "description",
	"status":      "status",
	"priority":    "priority",
	"dueDate":     "due_date",
	"due_date":    "due_date",
	"createdAt":   "created_at",
	"created_at":  "created_at",
	"updatedAt":   "updated_at",
	"updated_at":  "updated_at",
}

// PageRequest selects one zero-based page of results in a given order.
type PageRequest struct {
	Page   int
	Size   int
	SortBy string
	Desc   bool
}

// Page is one slice of a query result together with the total match count.
type Page struct {
	Tasks []model.Task
	Total int64
}

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// GetByID retrieves a task with its owner
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).Preload("User").First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", result.Error)
	}
	return &task, nil
}

// Update writes the mutable columns of an existing task and refreshes updated_at.
// Owner and creation time are never touched.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"status":      task.Status,
			"priority":    task.Priority,
			"due_date":    task.DueDate,
			"updated_at":  now,
		})
	if result.Error != nil {
		return fmt.Errorf("update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	task.UpdatedAt = now
	return nil
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// FindByUser returns a page of all tasks owned by the user
func (r *TaskRepository) FindByUser(ctx context.Context, userID uuid.UUID, page PageRequest) (*Page, error) {
	return r.findPage(ctx, page, ownedBy(userID))
}

// Search matches the term case-insensitively against title or description
func (r *TaskRepository) Search(ctx context.Context, userID uuid.UUID, term string, page PageRequest) (*Page, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	return r.findPage(ctx, page, ownedBy(userID), func(db *gorm.DB) *gorm.DB {
		return db.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	})
}

// FindByStatus returns a page of the user's tasks in the given status
func (r *TaskRepository) FindByStatus(ctx context.Context, userID uuid.UUID, status model.TaskStatus, page PageRequest) (*Page, error) {
	return r.findPage(ctx, page, ownedBy(userID), withStatus(status))
}

// FindByPriority returns a page of the user's tasks with the given priority
func (r *TaskRepository) FindByPriority(ctx context.Context, userID uuid.UUID, priority model.Priority, page PageRequest) (*Page, error) {
	return r.findPage(ctx, page, ownedBy(userID), withPriority(priority))
}

func (r *TaskRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.count(ctx, ownedBy(userID))
}

func (r *TaskRepository) CountByUserAndStatus(ctx context.Context, userID uuid.UUID, status model.TaskStatus) (int64, error) {
	return r.count(ctx, ownedBy(userID), withStatus(status))
}

func (r *TaskRepository) CountByUserAndPriority(ctx context.Context, userID uuid.UUID, priority model.Priority) (int64, error) {
	return r.count(ctx, ownedBy(userID), withPriority(priority))
}

func (r *TaskRepository) findPage(ctx context.Context, page PageRequest, scopes ...func(*gorm.DB) *gorm.DB) (*Page, error) {
	column, ok := sortColumns[page.SortBy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortField, page.SortBy)
	}

	total, err := r.count(ctx, scopes...)
	if err != nil {
		return nil, err
	}

	var tasks []model.Task
	err = r.db.WithContext(ctx).
		Model(&model.Task{}).
		Scopes(scopes...).
		Preload("User").
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: page.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: page.Desc}).
		Limit(page.Size).
		Offset(page.Page * page.Size).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return &Page{Tasks: tasks, Total: total}, nil
}

func (r *TaskRepository) count(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).Scopes(scopes...).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

func ownedBy(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

func withStatus(status model.TaskStatus) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", status)
	}
}

func withPriority(priority model.Priority) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("priority = ?", priority)
	}
}
