package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natours/natours-api/types"
)

func TestExecuteAppliesStepsInOrder(t *testing.T) {
	query := NewQueryMock().Default([]types.Record{{"_id": "a"}})
	scope := []types.ConditionItem{types.Eq("tour", "t1")}
	spec := types.QuerySpec{
		Filter:     []types.ConditionItem{{Column: "rating", Operator: types.OpGte, Value: int64(4)}},
		Sort:       []types.SortKey{{Column: "rating", Direction: types.Descending}},
		Projection: types.Projection{Exclude: []string{"__v"}},
		Page:       3,
		Limit:      10,
	}

	results, err := Execute(context.Background(), query, scope, spec)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	methods := make([]string, 0, len(query.Calls))
	for _, call := range query.Calls {
		methods = append(methods, call.Method)
	}
	assert.Equal(t, []string{"Where", "Where", "Sort", "Select", "Skip", "Limit", "All"}, methods)
	assert.Equal(t, scope, query.Calls[0].Arguments.Get(0))
	assert.Equal(t, spec.Filter, query.Calls[1].Arguments.Get(0))
	assert.Equal(t, int64(20), query.Calls[4].Arguments.Get(0))
	assert.Equal(t, int64(10), query.Calls[5].Arguments.Get(0))
}

func TestExecuteWithoutScope(t *testing.T) {
	query := NewQueryMock().Default(nil)
	spec := types.QuerySpec{Page: 1, Limit: 100}

	_, err := Execute(context.Background(), query, nil, spec)
	require.NoError(t, err)
	for _, call := range query.Calls {
		assert.NotContains(t, []string{"Where", "Sort"}, call.Method)
	}
	query.AssertCalled(t, "Skip", int64(0))
	query.AssertCalled(t, "Limit", int64(100))
}

func TestExecuteFailsAsOne(t *testing.T) {
	query := NewQueryMock()
	query.On("Select", types.Projection{}).Return(query)
	query.On("Skip", int64(0)).Return(query)
	query.On("Limit", int64(5)).Return(query)
	query.On("All").Return(nil, errors.New("connection reset"))

	results, err := Execute(context.Background(), query, nil, types.QuerySpec{Page: 1, Limit: 5})
	assert.EqualError(t, err, "connection reset")
	assert.Nil(t, results)
}
