// Package executor commits a batch of built actions to the domain services,
// one independent call per action.
package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bme-workers/internal/common/logger"
	"bme-workers/internal/common/metrics"
	"bme-workers/internal/domain"
	"bme-workers/internal/intent/actions"
	"bme-workers/internal/intent/resolver"
)

const (
	msgUnsupported     = "Unsupported action"
	msgInvalid         = "Invalid action payload"
	msgNoScheduleItems = "No schedule items"
)

// Result reports the outcome of one action.
type Result struct {
	Intent  string `json:"intent"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// target describes how edit/delete actions of one domain find their record.
type target struct {
	service  func(domain.Services) domain.Service
	field    string
	notFound string
}

var (
	scheduleTarget = target{
		service:  func(s domain.Services) domain.Service { return s.Schedule },
		field:    "title",
		notFound: "Schedule item not found",
	}
	transactionTarget = target{
		service:  func(s domain.Services) domain.Service { return s.Transaction },
		field:    "description",
		notFound: "Transaction not found",
	}
	workoutTarget = target{
		service:  func(s domain.Services) domain.Service { return s.Workout },
		field:    "title",
		notFound: "Workout not found",
	}
	foodTarget = target{
		service:  func(s domain.Services) domain.Service { return s.FoodEntry },
		field:    "food",
		notFound: "Food entry not found",
	}
	checkInTarget = target{
		service:  func(s domain.Services) domain.Service { return s.CheckIn },
		field:    "date",
		notFound: "Check-in not found",
	}
	goalTarget = target{
		service:  func(s domain.Services) domain.Service { return s.Goal },
		field:    "title",
		notFound: "Goal not found",
	}
)

type Executor struct {
	services domain.Services
	logger   logger.Logger
}

func New(services domain.Services, log logger.Logger) *Executor {
	return &Executor{services: services, logger: log}
}

// Execute runs every action in order and returns exactly one result per
// action. A failing action never stops the ones after it and nothing is
// rolled back. Service calls run on a context detached from ctx's
// cancellation so an abandoned caller does not tear down a half-dispatched
// batch.
func (e *Executor) Execute(ctx context.Context, batch []actions.Action, userID string) []Result {
	ctx = context.WithoutCancel(ctx)
	results := make([]Result, 0, len(batch))

	for i, a := range batch {
		res := e.run(ctx, a, userID)
		status := "success"
		if !res.Success {
			status = "failure"
			e.logger.Warn("Action failed", map[string]interface{}{
				"index":   i,
				"intent":  res.Intent,
				"message": res.Message,
				"userId":  userID,
			})
		}
		metrics.ActionResults.WithLabelValues(intentLabel(res.Intent), status).Inc()
		results = append(results, res)
	}

	return results
}

func (e *Executor) run(ctx context.Context, a actions.Action, userID string) Result {
	if a == nil {
		return failure("", msgUnsupported)
	}

	switch act := a.(type) {
	case *actions.Unknown:
		return failure(act.Intent(), act.Message)
	case *actions.Invalid:
		e.logger.Warn("Undecodable action in batch", map[string]interface{}{
			"intent": act.Name,
			"reason": act.Reason,
		})
		return failure(act.Intent(), msgInvalid)

	case *actions.AddSchedule:
		return e.addSchedule(ctx, act, userID)
	case *actions.EditSchedule:
		return e.edit(ctx, act, userID, scheduleTarget, resolver.Hint{ID: act.ScheduleID, Text: act.Title}, act.Changes)
	case *actions.DeleteSchedule:
		return e.remove(ctx, act, userID, scheduleTarget, resolver.Hint{ID: act.ScheduleID, Text: act.Title})

	case *actions.AddTransaction:
		return e.create(ctx, act, userID, e.services.Transaction)
	case *actions.EditTransaction:
		return e.edit(ctx, act, userID, transactionTarget, resolver.Hint{ID: act.TransactionID, Text: act.Description}, act.Changes)
	case *actions.DeleteTransaction:
		return e.remove(ctx, act, userID, transactionTarget, resolver.Hint{ID: act.TransactionID, Text: act.Description})

	case *actions.AddWorkout:
		return e.create(ctx, act, userID, e.services.Workout)
	case *actions.EditWorkout:
		return e.edit(ctx, act, userID, workoutTarget, resolver.Hint{ID: act.WorkoutID, Text: act.Title}, act.Changes)
	case *actions.DeleteWorkout:
		return e.remove(ctx, act, userID, workoutTarget, resolver.Hint{ID: act.WorkoutID, Text: act.Title})

	case *actions.AddFood:
		return e.create(ctx, act, userID, e.services.FoodEntry)
	case *actions.EditFood:
		return e.edit(ctx, act, userID, foodTarget, resolver.Hint{ID: act.FoodEntryID, Text: act.Food}, act.Changes)
	case *actions.DeleteFood:
		return e.remove(ctx, act, userID, foodTarget, resolver.Hint{ID: act.FoodEntryID, Text: act.Food})

	case *actions.LogSleep:
		return e.create(ctx, act, userID, e.services.CheckIn)
	case *actions.EditCheckIn:
		return e.edit(ctx, act, userID, checkInTarget, resolver.Hint{ID: act.CheckInID, Text: act.Date}, act.Changes)
	case *actions.DeleteCheckIn:
		return e.remove(ctx, act, userID, checkInTarget, resolver.Hint{ID: act.CheckInID, Text: act.Date})

	case *actions.AddGoal:
		return e.create(ctx, act, userID, e.services.Goal)
	case *actions.EditGoal:
		return e.edit(ctx, act, userID, goalTarget, resolver.Hint{ID: act.GoalID, Text: act.Title}, act.Changes)
	case *actions.DeleteGoal:
		return e.remove(ctx, act, userID, goalTarget, resolver.Hint{ID: act.GoalID, Text: act.Title})

	default:
		return failure(a.Intent(), msgUnsupported)
	}
}

func (e *Executor) addSchedule(ctx context.Context, act *actions.AddSchedule, userID string) Result {
	if len(act.Items) == 0 {
		return failure(act.Intent(), msgNoScheduleItems)
	}
	if e.services.Schedule == nil {
		return failure(act.Intent(), msgUnsupported)
	}

	// Items are created one by one; the first failure is reported but
	// earlier items stay committed.
	for _, item := range act.Items {
		payload, err := toPayload(item)
		if err == nil {
			_, err = e.services.Schedule.Create(ctx, userID, payload)
		}
		if err != nil {
			return failure(act.Intent(), err.Error())
		}
	}

	if len(act.Items) == 1 {
		return success(act.Intent(), "")
	}
	return success(act.Intent(), fmt.Sprintf("Created %d schedule items", len(act.Items)))
}

func (e *Executor) create(ctx context.Context, act actions.Action, userID string, svc domain.Service) Result {
	if svc == nil {
		return failure(act.Intent(), msgUnsupported)
	}
	payload, err := toPayload(act)
	if err != nil {
		return failure(act.Intent(), err.Error())
	}
	if _, err := svc.Create(ctx, userID, payload); err != nil {
		return failure(act.Intent(), err.Error())
	}
	return success(act.Intent(), "")
}

func (e *Executor) edit(ctx context.Context, act actions.Action, userID string, t target, hint resolver.Hint, changes interface{}) Result {
	svc := t.service(e.services)
	if svc == nil {
		return failure(act.Intent(), msgUnsupported)
	}

	hint.Field = t.field
	rec, res, ok := e.resolve(ctx, act, userID, svc, t, hint)
	if !ok {
		return res
	}

	patch, err := toPayload(changes)
	if err != nil {
		return failure(act.Intent(), err.Error())
	}
	if _, err := svc.Update(ctx, userID, rec.ID, patch); err != nil {
		return serviceFailure(act, t, err)
	}
	return success(act.Intent(), "")
}

func (e *Executor) remove(ctx context.Context, act actions.Action, userID string, t target, hint resolver.Hint) Result {
	svc := t.service(e.services)
	if svc == nil {
		return failure(act.Intent(), msgUnsupported)
	}

	hint.Field = t.field
	rec, res, ok := e.resolve(ctx, act, userID, svc, t, hint)
	if !ok {
		return res
	}

	if err := svc.Remove(ctx, userID, rec.ID); err != nil {
		return serviceFailure(act, t, err)
	}
	return success(act.Intent(), "")
}

func (e *Executor) resolve(ctx context.Context, act actions.Action, userID string, svc domain.Service, t target, hint resolver.Hint) (domain.Record, Result, bool) {
	rec, found, err := resolver.Resolve(ctx, svc, userID, hint)
	if err != nil {
		return domain.Record{}, failure(act.Intent(), err.Error()), false
	}
	if !found {
		return domain.Record{}, failure(act.Intent(), t.notFound), false
	}
	return rec, Result{}, true
}

// serviceFailure maps a not-found from update/remove to the domain message
// and passes any other error's message through.
func serviceFailure(act actions.Action, t target, err error) Result {
	if errors.Is(err, domain.ErrNotFound) {
		return failure(act.Intent(), t.notFound)
	}
	return failure(act.Intent(), err.Error())
}

// toPayload renders a typed payload as the loose map the services store.
func toPayload(v interface{}) (map[string]interface{}, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	payload := map[string]interface{}{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return payload, nil
}

// intentLabel keeps the metric's label set closed; client-sent intents are
// arbitrary strings.
func intentLabel(intent string) string {
	if !actions.Intent(intent).Known() {
		return "unsupported"
	}
	return intent
}

func success(intent actions.Intent, msg string) Result {
	return Result{Intent: string(intent), Success: true, Message: msg}
}

func failure(intent actions.Intent, msg string) Result {
	return Result{Intent: string(intent), Success: false, Message: msg}
}
