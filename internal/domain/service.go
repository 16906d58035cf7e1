// Package domain exposes the per-domain CRUD services the intent executor
// commits actions to.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Update and Remove when the id doesn't belong
// to one of the user's records.
var ErrNotFound = errors.New("record not found")

// Kind names one user-owned record collection.
type Kind string

const (
	Schedule    Kind = "schedule"
	Transaction Kind = "transaction"
	Workout     Kind = "workout"
	FoodEntry   Kind = "food_entry"
	CheckIn     Kind = "check_in"
	Goal        Kind = "goal"
)

// Record is one stored item. Fields holds the domain payload.
type Record struct {
	ID     string                 `json:"id"`
	Fields map[string]interface{} `json:"fields"`
}

// Text returns a payload field rendered as a string, or "" when absent.
func (r Record) Text(field string) string {
	switch v := r.Fields[field].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Service is the CRUD surface of one domain. Every call is scoped to userID.
type Service interface {
	List(ctx context.Context, userID string) ([]Record, error)
	Create(ctx context.Context, userID string, payload map[string]interface{}) (Record, error)
	Update(ctx context.Context, userID, id string, patch map[string]interface{}) (Record, error)
	Remove(ctx context.Context, userID, id string) error
}

// Services groups the six domain services the executor needs.
type Services struct {
	Schedule    Service
	Transaction Service
	Workout     Service
	FoodEntry   Service
	CheckIn     Service
	Goal        Service
}
