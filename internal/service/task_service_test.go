package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"taskmanager/internal/database"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db      *gorm.DB
	tasks   *repository.TaskRepository
	users   *repository.UserRepository
	service *service.TaskService
}

func setupFixture(t *testing.T) *fixture {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	tasks := repository.NewTaskRepository(db)
	users := repository.NewUserRepository(db)
	return &fixture{db: db, tasks: tasks, users: users, service: service.NewTaskService(tasks, users)}
}

func (f *fixture) user(t *testing.T, username string) *model.User {
	u := &model.User{Username: username, Email: username + "@example.com", PasswordHash: "hash"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func statusPtr(s model.TaskStatus) *model.TaskStatus { return &s }
func priorityPtr(p model.Priority) *model.Priority   { return &p }

func TestCreateTask_Defaults(t *testing.T) {
	// Arrange
	f := setupFixture(t)
	alice := f.user(t, "alice")

	// Act
	resp, err := f.service.CreateTask(context.Background(), alice.ID, service.TaskRequest{Title: "Buy milk"})

	// Assert
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, "Buy milk", resp.Title)
	assert.Equal(t, model.StatusTodo, resp.Status)
	assert.Equal(t, model.PriorityMedium, resp.Priority)
	assert.Equal(t, "alice", resp.Username)
	assert.False(t, resp.CreatedAt.IsZero())
	assert.False(t, resp.UpdatedAt.IsZero())
}

func TestCreateTask_ExplicitValues(t *testing.T) {
	f := setupFixture(t)
	alice := f.user(t, "alice")
	due := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)

	resp, err := f.service.CreateTask(context.Background(), alice.ID, service.TaskRequest{
		Title:       "Report",
		Description: "quarterly",
		Status:      statusPtr(model.StatusInProgress),
		Priority:    priorityPtr(model.PriorityHigh),
		DueDate:     &due,
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, resp.Status)
	assert.Equal(t, model.PriorityHigh, resp.Priority)
	assert.Equal(t, "quarterly", resp.Description)
	require.NotNil(t, resp.DueDate)
	assert.True(t, due.Equal(*resp.DueDate))

	stored, err := f.service.GetTaskByID(context.Background(), alice.ID, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, stored.Status)
	assert.Equal(t, model.PriorityHigh, stored.Priority)
}

func TestCreateTask_Validation(t *testing.T) {
	f := setupFixture(t)
	alice := f.user(t, "alice")
	ctx := context.Background()

	cases := map[string]service.TaskRequest{
		"blank title":          {Title: "   "},
		"title too long":       {Title: strings.Repeat("x", 201)},
		"description too long": {Title: "ok", Description: strings.Repeat("x", 1001)},
		"bad status":           {Title: "ok", Status: statusPtr("ARCHIVED")},
		"bad priority":         {Title: "ok", Priority: priorityPtr("URGENT")},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.service.CreateTask(ctx, alice.ID, req)
			assert.Equal(t, service.KindValidation, service.KindOf(err))
		})
	}

	total, err := f.tasks.CountByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCreateTask_TitleAtLimit(t *testing.T) {
	f := setupFixture(t)
	alice := f.user(t, "alice")

	resp, err := f.service.CreateTask(context.Background(), alice.ID, service.TaskRequest{Title: strings.Repeat("я", 200)})

	require.NoError(t, err)
	assert.Equal(t, 200, len([]rune(resp.Title)))
}

func TestCreateTask_UnknownUser(t *testing.T) {
	f := setupFixture(t)

	_, err := f.service.CreateTask(context.Background(), uuid.New(), service.TaskRequest{Title: "Buy milk"})

	assert.ErrorIs(t, err, service.ErrUserNotFound)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}

func TestGetTaskByID_NotFound(t *testing.T) {
	f := setupFixture(t)
	alice := f.user(t, "alice")

	_, err := f.service.GetTaskByID(context.Background(), alice.ID, uuid.New())

	assert.ErrorIs(t, err, service.ErrTaskNotFound)
}

func TestCrossUserAccess_IsRejectedWithoutMutation(t *testing.T) {
	// Arrange
	f := setupFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	ctx := context.Background()
	task, err := f.service.CreateTask(ctx, alice.ID, service.TaskRequest{Title: "Secret", Priority: priorityPtr(model.PriorityLow)})
	require.NoError(t, err)

	// Act
	_, getErr := f.service.GetTaskByID(ctx, bob.ID, task.ID)
	_, updateErr := f.service.UpdateTask(ctx, bob.ID, task.ID, service.TaskRequest{Title: "Hacked", Status: statusPtr(model.StatusDone)})
	deleteErr := f.service.DeleteTask(ctx, bob.ID, task.ID)

	// Assert
	assert.ErrorIs(t, getErr, service.ErrUnauthorizedAccess)
	assert.ErrorIs(t, updateErr, service.ErrUnauthorizedAccess)
	assert.ErrorIs(t, deleteErr, service.ErrUnauthorizedAccess)
	assert.Equal(t, service.KindUnauthorized, service.KindOf(updateErr))

	stored, err := f.service.GetTaskByID(ctx, alice.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Secret", stored.Title)
	assert.Equal(t, model.StatusTodo, stored.Status)
	assert.Equal(t, model.PriorityLow, stored.Priority)
}

func TestUpdateTask_PartialStatusAndPriority(t *testing.T) {
	// Arrange
	f := setupFixture(t)
	alice := f.user(t, "alice")
	ctx := context.Background()
	due := time.Now().Add(48 * time.Hour).UTC()
	task, err := f.service.CreateTask(ctx, alice.ID, service.TaskRequest{
		Title:       "Draft",
		Description: "first pass",
		Status:      statusPtr(model.StatusInProgress),
		Priority:    priorityPtr(model.PriorityHigh),
		DueDate:     &due,
	})
	require.NoError(t, err)

	// Act: status and priority omitted, description and dueDate cleared
	updated, err := f.service.UpdateTask(ctx, alice.ID, task.ID, service.TaskRequest{Title: "Final"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Empty(t, updated.Description)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, model.StatusInProgress, updated.Status)
	assert.Equal(t, model.PriorityHigh, updated.Priority)
	assert.Equal(t, "alice", updated.Username)

	// Act: status supplied
	done, err := f.service.UpdateTask(ctx, alice.ID, task.ID, service.TaskRequest{Title: "Final", Status: statusPtr(model.StatusDone)})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, done.Status)
	assert.Equal(t, model.PriorityHigh, done.Priority)

	stored, err := f.service.GetTaskByID(ctx, alice.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, stored.Status)
	assert.Nil(t, stored.DueDate)
	assert.Equal(t, task.ID, stored.ID)
}

func TestUpdateTask_NotFoundAndValidation(t *testing.T) {
	f := setupFixture(t)
	alice := f.user(t, "alice")
	ctx := context.Background()

	_, err := f.service.UpdateTask(ctx, alice.ID, uuid.New(), service.TaskRequest{Title: "x"})
	assert.ErrorIs(t, err, service.ErrTaskNotFound)

	task, err := f.service.CreateTask(ctx, alice.ID, service.TaskRequest{Title: "keep"})
	require.NoError(t, err)
	_, err = f.service.UpdateTask(ctx, alice.ID, task.ID, service.TaskRequest{Title: ""})
	assert.Equal(t, service.KindValidation, service.KindOf(err))
}

func TestDeleteTask(t *testing.T) {
	f := setupFixture(t)
	alice := f.user(t, "alice")
	ctx := context.Background()
	task, err := f.service.CreateTask(ctx, alice.ID, service.TaskRequest{Title: "Temp"})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteTask(ctx, alice.ID, task.ID))

	_, err = f.service.GetTaskByID(ctx, alice.ID, task.ID)
	assert.ErrorIs(t, err, service.ErrTaskNotFound)
	assert.ErrorIs(t, f.service.DeleteTask(ctx, alice.ID, task.ID), service.ErrTaskNotFound)
}

func TestGetStatistics(t *testing.T) {
	// Arrange
	f := setupFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	ctx := context.Background()
	for _, req := range []service.TaskRequest{
		{Title: "one"},
		{Title: "two", Priority: priorityPtr(model.PriorityHigh)},
		{Title: "three", Status: statusPtr(model.StatusDone), Priority: priorityPtr(model.PriorityLow)},
	} {
		_, err := f.service.CreateTask(ctx, alice.ID, req)
		require.NoError(t, err)
	}
	_, err := f.service.CreateTask(ctx, bob.ID, service.TaskRequest{Title: "bob's"})
	require.NoError(t, err)

	// Act
	stats, err := f.service.GetStatistics(ctx, alice.ID)

	// Assert
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalTasks)
	assert.EqualValues(t, 2, stats.TodoTasks)
	assert.EqualValues(t, 0, stats.InProgressTasks)
	assert.EqualValues(t, 1, stats.DoneTasks)
	assert.EqualValues(t, 1, stats.HighPriorityTasks)
	assert.EqualValues(t, 1, stats.MediumPriorityTasks)
	assert.EqualValues(t, 1, stats.LowPriorityTasks)
	assert.Equal(t, stats.TotalTasks, stats.TodoTasks+stats.InProgressTasks+stats.DoneTasks)
	assert.Equal(t, stats.TotalTasks, stats.HighPriorityTasks+stats.MediumPriorityTasks+stats.LowPriorityTasks)
}

func TestGetTasks_OldestFirst(t *testing.T) {
	// Arrange
	f := setupFixture(t)
	alice := f.user(t, "alice")
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	for i, title := range []string{"oldest", "middle", "newest"} {
		task := &model.Task{
			Title:     title,
			Status:    model.StatusTodo,
			Priority:  model.PriorityMedium,
			UserID:    alice.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, f.tasks.Create(ctx, task))
	}

	// Act
	page, err := f.service.GetTasks(ctx, alice.ID, service.ListParams{Page: 0, Size: 10, SortBy: "createdAt", SortDir: "asc"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, page.PageNumber)
	assert.Equal(t, 10, page.PageSize)
	assert.EqualValues(t, 3, page.TotalElements)
	assert.Equal(t, 1, page.TotalPages)
	assert.True(t, page.Last)
	require.Len(t, page.Content, 3)
	assert.Equal(t, "oldest", page.Content[0].Title)
	assert.Equal(t, "newest", page.Content[2].Title)

	desc, err := f.service.GetTasks(ctx, alice.ID, service.ListParams{Size: 10, SortBy: "createdAt", SortDir: "DESC"})
	require.NoError(t, err)
	assert.Equal(t, "newest", desc.Content[0].Title)
}

func TestGetTasks_PageMetadata(t *testing.T) {
	f := setupFixture(t)
	alice := f.user(t, "alice")
	ctx := context.Background()

	empty, err := f.service.GetTasks(ctx, alice.ID, service.ListParams{Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalPages)
	assert.True(t, empty.Last)
	assert.NotNil(t, empty.Content)

	for i := 0; i < 25; i++ {
		_, err := f.service.CreateTask(ctx, alice.ID, service.TaskRequest{Title: "task"})
		require.NoError(t, err)
	}

	first, err := f.service.GetTasks(ctx, alice.ID, service.ListParams{Page: 0, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, first.TotalPages)
	assert.False(t, first.Last)
	assert.Len(t, first.Content, 10)

	last, err := f.service.GetTasks(ctx, alice.ID, service.ListParams{Page: 2, Size: 10})
	require.NoError(t, err)
	assert.True(t, last.Last)
	assert.Len(t, last.Content, 5)
}

func TestGetTasks_FiltersAndSearch(t *testing.T) {
	f := setupFixture(t)
	alice := f.user(t, "alice")
	ctx := context.Background()
	for _, req := range []service.TaskRequest{
		{Title: "Buy milk", Status: statusPtr(model.StatusTodo), Priority: priorityPtr(model.PriorityHigh)},
		{Title: "Pay rent", Description: "before the 5th", Status: statusPtr(model.StatusDone)},
		{Title: "Call mom", Priority: priorityPtr(model.PriorityLow)},
	} {
		_, err := f.service.CreateTask(ctx, alice.ID, req)
		require.NoError(t, err)
	}

	byStatus, err := f.service.GetTasks(ctx, alice.ID, service.ListParams{Size: 10, Status: statusPtr(model.StatusDone)})
	require.NoError(t, err)
	require.Len(t, byStatus.Content, 1)
	assert.Equal(t, "Pay rent", byStatus.Content[0].Title)

	byPriority, err := f.service.GetTasks(ctx, alice.ID, service.ListParams{Size: 10, Priority: priorityPtr(model.PriorityLow)})
	require.NoError(t, err)
	require.Len(t, byPriority.Content, 1)
	assert.Equal(t, "Call mom", byPriority.Content[0].Title)

	// search wins even though the status would exclude the match
	searched, err := f.service.GetTasks(ctx, alice.ID, service.ListParams{Size: 10, Search: "MILK", Status: statusPtr(model.StatusDone)})
	require.NoError(t, err)
	require.Len(t, searched.Content, 1)
	assert.Equal(t, "Buy milk", searched.Content[0].Title)
}

func TestGetTasks_InvalidParams(t *testing.T) {
	f := setupFixture(t)
	alice := f.user(t, "alice")
	ctx := context.Background()

	for name, params := range map[string]service.ListParams{
		"negative page": {Page: -1, Size: 10},
		"size too big":  {Size: 101},
		"bad sort":      {Size: 10, SortBy: "password_hash"},
		"bad status":    {Size: 10, Status: statusPtr("LATER")},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.service.GetTasks(ctx, alice.ID, params)
			assert.Equal(t, service.KindValidation, service.KindOf(err))
		})
	}
}

// MockTaskStore records which query shape the service chose.
type MockTaskStore struct {
	mock.Mock
	service.TaskStore
}

func (m *MockTaskStore) Search(ctx context.Context, userID uuid.UUID, term string, page repository.PageRequest) (*repository.Page, error) {
	args := m.Called(ctx, userID, term, page)
	return args.Get(0).(*repository.Page), args.Error(1)
}

func (m *MockTaskStore) FindByStatus(ctx context.Context, userID uuid.UUID, status model.TaskStatus, page repository.PageRequest) (*repository.Page, error) {
	args := m.Called(ctx, userID, status, page)
	return args.Get(0).(*repository.Page), args.Error(1)
}

func (m *MockTaskStore) FindByPriority(ctx context.Context, userID uuid.UUID, priority model.Priority, page repository.PageRequest) (*repository.Page, error) {
	args := m.Called(ctx, userID, priority, page)
	return args.Get(0).(*repository.Page), args.Error(1)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func TestGetTasks_SearchTakesPrecedence(t *testing.T) {
	// Arrange
	store := new(MockTaskStore)
	users := new(MockUserDirectory)
	alice := &model.User{ID: uuid.New(), Username: "alice"}
	users.On("GetByID", mock.Anything, alice.ID).Return(alice, nil)

	expected := repository.PageRequest{Page: 0, Size: 10, SortBy: "createdAt", Desc: true}
	store.On("Search", mock.Anything, alice.ID, "milk", expected).Return(&repository.Page{}, nil)

	svc := service.NewTaskService(store, users)

	// Act
	_, err := svc.GetTasks(context.Background(), alice.ID, service.ListParams{
		Size:     10,
		SortDir:  "desc",
		Search:   "milk",
		Status:   statusPtr(model.StatusDone),
		Priority: priorityPtr(model.PriorityHigh),
	})

	// Assert
	require.NoError(t, err)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "FindByStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "FindByPriority", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetTasks_StatusBeatsPriority(t *testing.T) {
	store := new(MockTaskStore)
	users := new(MockUserDirectory)
	alice := &model.User{ID: uuid.New(), Username: "alice"}
	users.On("GetByID", mock.Anything, alice.ID).Return(alice, nil)
	store.On("FindByStatus", mock.Anything, alice.ID, model.StatusTodo, mock.Anything).
		Return(&repository.Page{Tasks: []model.Task{{Title: "t", User: *alice}}, Total: 1}, nil)

	svc := service.NewTaskService(store, users)
	page, err := svc.GetTasks(context.Background(), alice.ID, service.ListParams{
		Size:     10,
		Status:   statusPtr(model.StatusTodo),
		Priority: priorityPtr(model.PriorityHigh),
	})

	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "alice", page.Content[0].Username)
	store.AssertNotCalled(t, "FindByPriority", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
