package executor

import (
	"context"
	"errors"
	"testing"

	"bme-workers/internal/common/logger"
	"bme-workers/internal/domain"
	"bme-workers/internal/intent/actions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, userID string) ([]domain.Record, error) {
	args := m.Called(ctx, userID)
	recs, _ := args.Get(0).([]domain.Record)
	return recs, args.Error(1)
}

func (m *MockService) Create(ctx context.Context, userID string, payload map[string]interface{}) (domain.Record, error) {
	args := m.Called(ctx, userID, payload)
	return args.Get(0).(domain.Record), args.Error(1)
}

func (m *MockService) Update(ctx context.Context, userID, id string, patch map[string]interface{}) (domain.Record, error) {
	args := m.Called(ctx, userID, id, patch)
	return args.Get(0).(domain.Record), args.Error(1)
}

func (m *MockService) Remove(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

type mocks struct {
	schedule, transaction, workout, food, checkIn, goal *MockService
}

func setupExecutor(t *testing.T) (*Executor, mocks) {
	m := mocks{
		schedule:    new(MockService),
		transaction: new(MockService),
		workout:     new(MockService),
		food:        new(MockService),
		checkIn:     new(MockService),
		goal:        new(MockService),
	}
	services := domain.Services{
		Schedule:    m.schedule,
		Transaction: m.transaction,
		Workout:     m.workout,
		FoodEntry:   m.food,
		CheckIn:     m.checkIn,
		Goal:        m.goal,
	}
	return New(services, logger.NewTestLogger(t)), m
}

var transactions = []domain.Record{
	{ID: "tx-1", Fields: map[string]interface{}{"description": "Coffee", "amount": 4.5}},
	{ID: "tx-2", Fields: map[string]interface{}{"description": "Groceries", "amount": 60.0}},
}

func TestExecute_EmptyBatch(t *testing.T) {
	exec, _ := setupExecutor(t)

	results := exec.Execute(context.Background(), nil, "user-1")

	require.NotNil(t, results)
	assert.Empty(t, results)
}

func TestExecute_OneResultPerActionInOrder(t *testing.T) {
	exec, m := setupExecutor(t)

	m.transaction.On("Create", mock.Anything, "user-1", map[string]interface{}{
		"type":        "expense",
		"amount":      5.0,
		"category":    "Food",
		"description": "Coke",
		"date":        "2026-10-15",
	}).Return(domain.Record{ID: "tx-9"}, nil)
	m.transaction.On("List", mock.Anything, "user-1").Return(transactions, nil)
	m.food.On("Create", mock.Anything, "user-1", mock.Anything).
		Return(domain.Record{}, errors.New("duplicate food entry"))

	batch := []actions.Action{
		&actions.AddTransaction{Type: "expense", Amount: 5, Category: "Food", Description: "Coke", Date: "2026-10-15"},
		&actions.Unknown{Message: "Sorry, I couldn't understand that request"},
		&actions.Unsupported{Name: "book_flight"},
		&actions.DeleteTransaction{TransactionID: "tx-404"},
		&actions.AddSchedule{},
		&actions.AddFood{Food: "Coke", Quantity: 330, Unit: "ml", Date: "2026-10-15"},
		nil,
	}

	results := exec.Execute(context.Background(), batch, "user-1")

	require.Len(t, results, len(batch))
	assert.Equal(t, Result{Intent: "add_transaction", Success: true}, results[0])
	assert.Equal(t, Result{Intent: "unknown", Message: "Sorry, I couldn't understand that request"}, results[1])
	assert.Equal(t, Result{Intent: "book_flight", Message: "Unsupported action"}, results[2])
	assert.Equal(t, Result{Intent: "delete_transaction", Message: "Transaction not found"}, results[3])
	assert.Equal(t, Result{Intent: "add_schedule", Message: "No schedule items"}, results[4])
	assert.Equal(t, Result{Intent: "add_food", Message: "duplicate food entry"}, results[5])
	assert.Equal(t, Result{Message: "Unsupported action"}, results[6])

	m.transaction.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
	m.schedule.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_InvalidActionFailsAlone(t *testing.T) {
	exec, m := setupExecutor(t)

	m.goal.On("Create", mock.Anything, "user-1", mock.Anything).Return(domain.Record{ID: "g-1"}, nil)

	batch := []actions.Action{
		&actions.Invalid{Name: "add_transaction", Reason: "decode add_transaction: bad amount"},
		&actions.AddGoal{Title: "Run 5k"},
		&actions.Invalid{Reason: "decode action: missing intent"},
	}

	results := exec.Execute(context.Background(), batch, "user-1")

	require.Len(t, results, 3)
	assert.Equal(t, Result{Intent: "add_transaction", Message: "Invalid action payload"}, results[0])
	assert.Equal(t, Result{Intent: "add_goal", Success: true}, results[1])
	assert.Equal(t, Result{Message: "Invalid action payload"}, results[2])
	m.transaction.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestIntentLabel(t *testing.T) {
	assert.Equal(t, "add_goal", intentLabel("add_goal"))
	assert.Equal(t, "unknown", intentLabel("unknown"))
	assert.Equal(t, "unsupported", intentLabel("book_flight"))
	assert.Equal(t, "unsupported", intentLabel("x-generated-9f1c"))
	assert.Equal(t, "unsupported", intentLabel(""))
}

func TestExecute_EditTransactionByDescription(t *testing.T) {
	exec, m := setupExecutor(t)
	amount := 12.5

	m.transaction.On("List", mock.Anything, "user-1").Return(transactions, nil)
	m.transaction.On("Update", mock.Anything, "user-1", "tx-2", map[string]interface{}{"amount": 12.5}).
		Return(domain.Record{ID: "tx-2"}, nil)

	results := exec.Execute(context.Background(), []actions.Action{
		&actions.EditTransaction{Description: "groceries", Changes: actions.TransactionChanges{Amount: &amount}},
	}, "user-1")

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	m.transaction.AssertExpectations(t)
}

func TestExecute_TransactionNotFound(t *testing.T) {
	amount := 3.0

	tests := []struct {
		name   string
		action actions.Action
		setup  func(m *MockService)
	}{
		{
			name:   "edit with unknown id",
			action: &actions.EditTransaction{TransactionID: "nope", Changes: actions.TransactionChanges{Amount: &amount}},
			setup: func(m *MockService) {
				m.On("List", mock.Anything, "user-1").Return(transactions, nil)
			},
		},
		{
			name:   "delete with no hint",
			action: &actions.DeleteTransaction{},
			setup:  func(m *MockService) {},
		},
		{
			name:   "record vanished before remove",
			action: &actions.DeleteTransaction{TransactionID: "tx-1"},
			setup: func(m *MockService) {
				m.On("List", mock.Anything, "user-1").Return(transactions, nil)
				m.On("Remove", mock.Anything, "user-1", "tx-1").Return(domain.ErrNotFound)
			},
		},
		{
			name:   "record vanished before update",
			action: &actions.EditTransaction{TransactionID: "tx-1", Changes: actions.TransactionChanges{Amount: &amount}},
			setup: func(m *MockService) {
				m.On("List", mock.Anything, "user-1").Return(transactions, nil)
				m.On("Update", mock.Anything, "user-1", "tx-1", mock.Anything).Return(domain.Record{}, domain.ErrNotFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, m := setupExecutor(t)
			tt.setup(m.transaction)

			results := exec.Execute(context.Background(), []actions.Action{tt.action}, "user-1")

			require.Len(t, results, 1)
			assert.False(t, results[0].Success)
			assert.Equal(t, "Transaction not found", results[0].Message)
		})
	}
}

func TestExecute_DomainNotFoundMessages(t *testing.T) {
	tests := []struct {
		action  actions.Action
		service func(m mocks) *MockService
		want    string
	}{
		{&actions.DeleteSchedule{Title: "dentist"}, func(m mocks) *MockService { return m.schedule }, "Schedule item not found"},
		{&actions.DeleteWorkout{Title: "run"}, func(m mocks) *MockService { return m.workout }, "Workout not found"},
		{&actions.DeleteFood{Food: "rice"}, func(m mocks) *MockService { return m.food }, "Food entry not found"},
		{&actions.DeleteCheckIn{Date: "2026-10-14"}, func(m mocks) *MockService { return m.checkIn }, "Check-in not found"},
		{&actions.DeleteGoal{Title: "reading"}, func(m mocks) *MockService { return m.goal }, "Goal not found"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action.Intent()), func(t *testing.T) {
			exec, m := setupExecutor(t)
			tt.service(m).On("List", mock.Anything, "user-1").Return([]domain.Record{}, nil)

			results := exec.Execute(context.Background(), []actions.Action{tt.action}, "user-1")

			require.Len(t, results, 1)
			assert.Equal(t, tt.want, results[0].Message)
		})
	}
}

func TestExecute_DeleteCheckInByDate(t *testing.T) {
	exec, m := setupExecutor(t)

	m.checkIn.On("List", mock.Anything, "user-1").Return([]domain.Record{
		{ID: "c-1", Fields: map[string]interface{}{"date": "2026-10-13"}},
		{ID: "c-2", Fields: map[string]interface{}{"date": "2026-10-14"}},
	}, nil)
	m.checkIn.On("Remove", mock.Anything, "user-1", "c-2").Return(nil)

	results := exec.Execute(context.Background(), []actions.Action{&actions.DeleteCheckIn{Date: "2026-10-14"}}, "user-1")

	assert.Equal(t, []Result{{Intent: "delete_check_in", Success: true}}, results)
	m.checkIn.AssertExpectations(t)
}

func TestExecute_AddScheduleItems(t *testing.T) {
	exec, m := setupExecutor(t)

	m.schedule.On("Create", mock.Anything, "user-1", mock.Anything).Return(domain.Record{ID: "s-1"}, nil).Twice()

	results := exec.Execute(context.Background(), []actions.Action{
		&actions.AddSchedule{Items: []actions.ScheduleItem{
			{Title: "Standup", Date: "2026-10-15", StartTime: "09:00", EndTime: "09:15", Category: "Work"},
			{Title: "Gym", Date: "2026-10-15", StartTime: "18:00", EndTime: "19:00", Category: "Health"},
		}},
	}, "user-1")

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, "Created 2 schedule items", results[0].Message)
	m.schedule.AssertNumberOfCalls(t, "Create", 2)
}

func TestExecute_ListErrorPassedThrough(t *testing.T) {
	exec, m := setupExecutor(t)
	m.goal.On("List", mock.Anything, "user-1").Return(nil, errors.New("connection refused"))

	results := exec.Execute(context.Background(), []actions.Action{&actions.DeleteGoal{GoalID: "g-1"}}, "user-1")

	assert.Equal(t, []Result{{Intent: "delete_goal", Message: "connection refused"}}, results)
}

func TestExecute_CancelledCallerStillCommits(t *testing.T) {
	exec, m := setupExecutor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	live := mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })
	m.workout.On("Create", live, "user-1", mock.Anything).Return(domain.Record{ID: "w-1"}, nil)
	m.goal.On("Create", live, "user-1", mock.Anything).Return(domain.Record{ID: "g-1"}, nil)

	results := exec.Execute(ctx, []actions.Action{
		&actions.AddWorkout{Title: "Workout", Type: "cardio", Duration: 30, Date: "2026-10-15"},
		&actions.AddGoal{Title: "Weekly workouts goal", Type: "workouts", Target: 3, Period: "weekly"},
	}, "user-1")

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.True(t, results[1].Success)
	m.workout.AssertExpectations(t)
	m.goal.AssertExpectations(t)
}

func TestExecute_MissingServiceIsUnsupported(t *testing.T) {
	exec := New(domain.Services{}, logger.NewNoOpLogger())

	results := exec.Execute(context.Background(), []actions.Action{
		&actions.LogSleep{Date: "2026-10-15", SleepHours: 7.5},
	}, "user-1")

	assert.Equal(t, []Result{{Intent: "log_sleep", Message: "Unsupported action"}}, results)
}
