package executeactions

import (
	"context"
	"encoding/json"
	"testing"

	"bme-workers/internal/common/errors"
	"bme-workers/internal/common/logger"
	"bme-workers/internal/domain"
	"bme-workers/internal/intent/actions"
	"bme-workers/internal/intent/executor"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Execute(ctx context.Context, batch []actions.Action, userID string) []executor.Result {
	args := m.Called(ctx, batch, userID)
	return args.Get(0).([]executor.Result)
}

type stubGoals struct {
	created []map[string]interface{}
}

func (s *stubGoals) List(ctx context.Context, userID string) ([]domain.Record, error) {
	return nil, nil
}

func (s *stubGoals) Create(ctx context.Context, userID string, payload map[string]interface{}) (domain.Record, error) {
	s.created = append(s.created, payload)
	return domain.Record{ID: "goal-1", Fields: payload}, nil
}

func (s *stubGoals) Update(ctx context.Context, userID, id string, patch map[string]interface{}) (domain.Record, error) {
	return domain.Record{}, domain.ErrNotFound
}

func (s *stubGoals) Remove(ctx context.Context, userID, id string) error {
	return domain.ErrNotFound
}

// ==========================
// Test Helpers
// ==========================

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	activatedJob := &pb.ActivatedJob{
		Key:                      key,
		Type:                     TaskType,
		ProcessInstanceKey:       key * 10,
		BpmnProcessId:            "test-process",
		ProcessDefinitionVersion: 1,
		ProcessDefinitionKey:     1,
		ElementId:                "Activity_ExecuteActions",
		ElementInstanceKey:       1,
		CustomHeaders:            "{}",
		Worker:                   "test-worker",
		Retries:                  3,
		Deadline:                 0,
		Variables:                string(variablesJSON),
	}

	return entities.Job{ActivatedJob: activatedJob}
}

func newTestHandler(t *testing.T, exec BatchExecutor) *Handler {
	return NewHandler(DefaultConfig(), exec, nil, logger.NewTestLogger(t))
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_CountsResults(t *testing.T) {
	exec := new(MockExecutor)
	h := newTestHandler(t, exec)

	batch := actions.List{
		&actions.AddGoal{Title: "Run"},
		&actions.DeleteGoal{Title: "Swim"},
		&actions.Unknown{Message: "Sorry"},
	}
	results := []executor.Result{
		{Intent: "add_goal", Success: true},
		{Intent: "delete_goal", Success: false, Message: "Goal not found"},
		{Intent: "unknown", Success: false, Message: "Sorry"},
	}
	exec.On("Execute", mock.Anything, []actions.Action(batch), "user-1").Return(results)

	out := h.Execute(context.Background(), &Input{Actions: batch, UserID: "user-1"})

	assert.Equal(t, results, out.Results)
	assert.Equal(t, 1, out.Succeeded)
	assert.Equal(t, 2, out.Failed)
	exec.AssertExpectations(t)
}

func TestExecute_EmptyBatch(t *testing.T) {
	exec := new(MockExecutor)
	h := newTestHandler(t, exec)

	exec.On("Execute", mock.Anything, mock.Anything, "user-1").Return([]executor.Result{})

	out := h.Execute(context.Background(), &Input{Actions: actions.List{}, UserID: "user-1"})

	assert.Empty(t, out.Results)
	assert.Zero(t, out.Succeeded)
	assert.Zero(t, out.Failed)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[],"succeeded":0,"failed":0}`, string(raw))
}

func TestExecute_MixedBatchYieldsOneResultPerAction(t *testing.T) {
	goals := &stubGoals{}
	h := newTestHandler(t, executor.New(domain.Services{Goal: goals}, logger.NewTestLogger(t)))

	job := createMockJob(12345, map[string]interface{}{
		"userId": "user-1",
		"actions": []interface{}{
			map[string]interface{}{"intent": "add_goal", "title": "Run 5k"},
			map[string]interface{}{"intent": "add_transaction", "amount": "five"},
			map[string]interface{}{"title": "no intent"},
		},
	})

	input, err := h.parseInput(job)
	require.NoError(t, err)

	out := h.Execute(context.Background(), input)

	require.Len(t, out.Results, 3)
	assert.Equal(t, "add_goal", out.Results[0].Intent)
	assert.True(t, out.Results[0].Success)
	assert.Equal(t, executor.Result{Intent: "add_transaction", Message: "Invalid action payload"}, out.Results[1])
	assert.Equal(t, executor.Result{Message: "Invalid action payload"}, out.Results[2])
	assert.Equal(t, 1, out.Succeeded)
	assert.Equal(t, 2, out.Failed)
	assert.Len(t, goals.created, 1)
}

// ==========================
// Input Parsing Tests
// ==========================

func TestParseInput(t *testing.T) {
	h := newTestHandler(t, new(MockExecutor))

	tests := []struct {
		name      string
		variables map[string]interface{}
		wantErr   bool
		errCode   errors.ErrorCode
		validate  func(t *testing.T, input *Input)
	}{
		{
			name: "decodes actions in order",
			variables: map[string]interface{}{
				"userId": "user-1",
				"actions": []interface{}{
					map[string]interface{}{"intent": "add_goal", "title": "Run 5k"},
					map[string]interface{}{"intent": "delete_food_entry", "food": "rice"},
					map[string]interface{}{"intent": "teleport"},
				},
			},
			validate: func(t *testing.T, input *Input) {
				require.Len(t, input.Actions, 3)
				goal, ok := input.Actions[0].(*actions.AddGoal)
				require.True(t, ok)
				assert.Equal(t, "Run 5k", goal.Title)
				assert.Equal(t, actions.IntentDeleteFood, input.Actions[1].Intent())
				_, ok = input.Actions[2].(*actions.Unsupported)
				assert.True(t, ok)
			},
		},
		{
			name:      "empty actions",
			variables: map[string]interface{}{"userId": "user-1", "actions": []interface{}{}},
			validate: func(t *testing.T, input *Input) {
				assert.Empty(t, input.Actions)
			},
		},
		{
			name:      "missing actions",
			variables: map[string]interface{}{"userId": "user-1"},
			wantErr:   true,
			errCode:   errors.ErrCodeInputValidationFailed,
		},
		{
			name:      "actions not an array",
			variables: map[string]interface{}{"userId": "user-1", "actions": "add_goal"},
			wantErr:   true,
			errCode:   errors.ErrCodeInputValidationFailed,
		},
		{
			name:      "blank userId",
			variables: map[string]interface{}{"userId": "", "actions": []interface{}{}},
			wantErr:   true,
			errCode:   errors.ErrCodeMissingUserID,
		},
		{
			name: "undecodable actions keep their slot",
			variables: map[string]interface{}{
				"userId": "user-1",
				"actions": []interface{}{
					map[string]interface{}{"intent": "add_goal", "title": "Run"},
					map[string]interface{}{"title": "Run"},
					map[string]interface{}{"intent": "add_transaction", "amount": "five"},
				},
			},
			validate: func(t *testing.T, input *Input) {
				require.Len(t, input.Actions, 3)
				assert.IsType(t, &actions.AddGoal{}, input.Actions[0])
				missing, ok := input.Actions[1].(*actions.Invalid)
				require.True(t, ok)
				assert.Empty(t, missing.Name)
				mistyped, ok := input.Actions[2].(*actions.Invalid)
				require.True(t, ok)
				assert.Equal(t, "add_transaction", mistyped.Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := createMockJob(12345, tt.variables)

			input, err := h.parseInput(job)

			if tt.wantErr {
				require.Error(t, err)
				stdErr, ok := err.(*errors.StandardError)
				require.True(t, ok, "error should be StandardError")
				assert.Equal(t, tt.errCode, stdErr.Code)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, input)
			tt.validate(t, input)
		})
	}
}
