package nutrition

import (
	"context"
	"errors"
	"testing"

	"bme-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mocks
// ==========================

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) FindByNameFuzzy(ctx context.Context, name string, preferUncooked bool) (*Record, error) {
	args := m.Called(ctx, name, preferUncooked)
	rec, _ := args.Get(0).(*Record)
	return rec, args.Error(1)
}

func (m *MockCatalog) FindByNormalizedName(ctx context.Context, normalized string) (*Record, error) {
	args := m.Called(ctx, normalized)
	rec, _ := args.Get(0).(*Record)
	return rec, args.Error(1)
}

func (m *MockCatalog) InsertIfAbsent(ctx context.Context, normalized string, rec Record) (*Record, error) {
	args := m.Called(ctx, normalized, rec)
	stored, _ := args.Get(0).(*Record)
	return stored, args.Error(1)
}

type MockLookup struct {
	mock.Mock
}

func (m *MockLookup) Lookup(ctx context.Context, name string) (*Record, error) {
	args := m.Called(ctx, name)
	rec, _ := args.Get(0).(*Record)
	return rec, args.Error(1)
}

var coke = Record{ID: "f-1", Name: "Coca-Cola", Calories: 42, Carbs: 10.6, IsLiquid: true, ReferenceQuantity: 100}

// ==========================
// Tests
// ==========================

func TestCascade_CatalogHit(t *testing.T) {
	catalog := new(MockCatalog)
	ai := new(MockLookup)
	catalog.On("FindByNameFuzzy", mock.Anything, "coke", false).Return(&coke, nil)

	c := NewCascade(catalog, ai, logger.NewTestLogger(t))
	res := c.Enrich(context.Background(), Query{Name: "Coke", Quantity: 330, Unit: "ml"})

	assert.Equal(t, SourceCatalog, res.Source)
	assert.Equal(t, "Coke", res.Name)
	assert.Equal(t, 139.0, res.Calories)
	assert.Equal(t, 35.0, res.Carbs)
	ai.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestCascade_PassesPreparationPreference(t *testing.T) {
	catalog := new(MockCatalog)
	salmon := &Record{Name: "Salmon, uncooked", Calories: 208, Protein: 20, Fat: 13, ReferenceQuantity: 100}
	catalog.On("FindByNameFuzzy", mock.Anything, "salmon", true).Return(salmon, nil)

	c := NewCascade(catalog, nil, logger.NewNoOpLogger())
	res := c.Enrich(context.Background(), Query{Name: "raw salmon", Quantity: 100, Unit: "g", PreferUncooked: true})

	assert.Equal(t, "Uncooked Salmon", res.Name)
	assert.Equal(t, 208.0, res.Calories)
	catalog.AssertExpectations(t)
}

func TestCascade_ReusesNormalizedEntry(t *testing.T) {
	catalog := new(MockCatalog)
	ai := new(MockLookup)
	catalog.On("FindByNameFuzzy", mock.Anything, "pan de yuca", false).Return(nil, nil)
	catalog.On("FindByNormalizedName", mock.Anything, "pan de yuca").
		Return(&Record{Name: "Pan De Yuca", Calories: 300, ReferenceQuantity: 100}, nil)

	c := NewCascade(catalog, ai, logger.NewNoOpLogger())
	res := c.Enrich(context.Background(), Query{Name: "Pan  de Yuca", Quantity: 50, Unit: "g"})

	assert.Equal(t, SourceReused, res.Source)
	assert.Equal(t, 150.0, res.Calories)
	ai.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
	catalog.AssertNotCalled(t, "InsertIfAbsent", mock.Anything, mock.Anything, mock.Anything)
}

func TestCascade_AILookupIsStored(t *testing.T) {
	catalog := new(MockCatalog)
	ai := new(MockLookup)
	estimate := &Record{Name: "Kombucha", Calories: 20, Carbs: 4, IsLiquid: true, ReferenceQuantity: 100}
	stored := &Record{ID: "f-9", Name: "Kombucha", Calories: 20, Carbs: 4, IsLiquid: true, ReferenceQuantity: 100}

	catalog.On("FindByNameFuzzy", mock.Anything, "kombucha", false).Return(nil, nil)
	catalog.On("FindByNormalizedName", mock.Anything, "kombucha").Return(nil, nil)
	ai.On("Lookup", mock.Anything, "kombucha").Return(estimate, nil)
	catalog.On("InsertIfAbsent", mock.Anything, "kombucha", *estimate).Return(stored, nil)

	c := NewCascade(catalog, ai, logger.NewNoOpLogger())
	res := c.Enrich(context.Background(), Query{Name: "kombucha", Quantity: 1, Unit: "cup"})

	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, 48.0, res.Calories)
	assert.Equal(t, 9.6, res.Carbs)
	catalog.AssertExpectations(t)
}

func TestCascade_InsertFailureStillUsesEstimate(t *testing.T) {
	catalog := new(MockCatalog)
	ai := new(MockLookup)
	estimate := &Record{Name: "Tempeh", Calories: 192, Protein: 20, ReferenceQuantity: 100}

	catalog.On("FindByNameFuzzy", mock.Anything, "tempeh", false).Return(nil, nil)
	catalog.On("FindByNormalizedName", mock.Anything, "tempeh").Return(nil, nil)
	ai.On("Lookup", mock.Anything, "tempeh").Return(estimate, nil)
	catalog.On("InsertIfAbsent", mock.Anything, "tempeh", *estimate).Return(nil, errors.New("connection reset"))

	c := NewCascade(catalog, ai, logger.NewNoOpLogger())
	res := c.Enrich(context.Background(), Query{Name: "tempeh", Quantity: 100, Unit: "g"})

	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, 192.0, res.Calories)
}

func TestCascade_Placeholder(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*MockCatalog, *MockLookup)
		ai    bool
	}{
		{
			name: "no ai configured",
			setup: func(c *MockCatalog, _ *MockLookup) {
				c.On("FindByNameFuzzy", mock.Anything, "diet coke", false).Return(nil, nil)
			},
		},
		{
			name: "ai does not know the food",
			ai:   true,
			setup: func(c *MockCatalog, l *MockLookup) {
				c.On("FindByNameFuzzy", mock.Anything, "diet coke", false).Return(nil, nil)
				c.On("FindByNormalizedName", mock.Anything, "diet coke").Return(nil, nil)
				l.On("Lookup", mock.Anything, "Diet Coke").Return(nil, nil)
			},
		},
		{
			name: "every step errors",
			ai:   true,
			setup: func(c *MockCatalog, l *MockLookup) {
				c.On("FindByNameFuzzy", mock.Anything, "diet coke", false).Return(nil, errors.New("db down"))
				c.On("FindByNormalizedName", mock.Anything, "diet coke").Return(nil, errors.New("db down"))
				l.On("Lookup", mock.Anything, "Diet Coke").Return(nil, errors.New("quota exceeded"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := new(MockCatalog)
			lookup := new(MockLookup)
			tt.setup(catalog, lookup)

			var ai AILookup
			if tt.ai {
				ai = lookup
			}
			c := NewCascade(catalog, ai, logger.NewNoOpLogger())
			res := c.Enrich(context.Background(), Query{Name: "Diet Coke", Quantity: 100, Unit: "g"})

			require.Equal(t, SourcePlaceholder, res.Source)
			assert.Equal(t, "Diet Coke", res.Name)
			assert.Zero(t, res.Calories)
			assert.Zero(t, res.Protein)
		})
	}
}
