package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natours/natours-api/types"
)

func seedTours(t *testing.T, c Collection) {
	tours := []types.Record{
		{"name": "The Forest Hiker", "difficulty": "easy", "price": 397.0, "ratingsAverage": 4.7, "duration": 5.0},
		{"name": "The Sea Explorer", "difficulty": "medium", "price": 497.0, "ratingsAverage": 4.8, "duration": 7.0},
		{"name": "The Snow Adventurer", "difficulty": "difficult", "price": 997.0, "ratingsAverage": 4.5, "duration": 4.0},
		{"name": "The City Wanderer", "difficulty": "easy", "price": 1197.0, "ratingsAverage": 4.8, "duration": 9.0},
		{"name": "The Park Camper", "difficulty": "medium", "price": 1497.0, "ratingsAverage": 4.9, "duration": 10.0},
	}
	for _, tour := range tours {
		_, err := c.Create(context.Background(), tour)
		require.NoError(t, err)
	}
}

func names(records []types.Record) []string {
	result := make([]string, 0, len(records))
	for _, r := range records {
		result = append(result, r["name"].(string))
	}
	return result
}

func TestMemoryCreateAssignsIdentity(t *testing.T) {
	c := NewMemoryStore().Collection("tours")
	created, err := c.Create(context.Background(), types.Record{"name": "The Forest Hiker"})
	require.NoError(t, err)

	id, ok := created[types.IDField].(string)
	require.True(t, ok)
	assert.NotEmpty(t, id)
	assert.Contains(t, created, types.CreatedAtField)
	assert.Equal(t, 0, created[types.VersionField])

	found, err := c.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "The Forest Hiker", found["name"])
}

func TestMemoryFilterSortAndPaginate(t *testing.T) {
	c := NewMemoryStore().Collection("tours")
	seedTours(t, c)

	results, err := c.Find().
		Where(types.ConditionItem{Column: "price", Operator: types.OpLt, Value: int64(1200)}).
		Sort(types.SortKey{Column: "ratingsAverage", Direction: types.Descending},
			types.SortKey{Column: "name", Direction: types.Ascending}).
		Select(types.Projection{Include: []string{"name"}}).
		Skip(1).
		Limit(2).
		All(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"The Sea Explorer", "The Forest Hiker"}, names(results))
	for _, r := range results {
		assert.Len(t, r, 2)
		assert.Contains(t, r, types.IDField)
	}
}

func TestMemoryOperators(t *testing.T) {
	c := NewMemoryStore().Collection("tours")
	seedTours(t, c)
	ctx := context.Background()

	tests := []struct {
		name      string
		condition types.ConditionItem
		want      int
	}{
		{"eq", types.Eq("difficulty", "easy"), 2},
		{"ne", types.ConditionItem{Column: "difficulty", Operator: types.OpNe, Value: "easy"}, 3},
		{"gt", types.ConditionItem{Column: "duration", Operator: types.OpGt, Value: int64(7)}, 2},
		{"gte", types.ConditionItem{Column: "duration", Operator: types.OpGte, Value: int64(7)}, 3},
		{"lt", types.ConditionItem{Column: "duration", Operator: types.OpLt, Value: int64(5)}, 1},
		{"lte", types.ConditionItem{Column: "duration", Operator: types.OpLte, Value: 5.0}, 2},
		{"in", types.ConditionItem{Column: "difficulty", Operator: types.OpIn, Value: []interface{}{"easy", "difficult"}}, 3},
		{"missing field never matches a range", types.ConditionItem{Column: "maxGroupSize", Operator: types.OpGt, Value: int64(0)}, 0},
		{"missing field is not equal", types.ConditionItem{Column: "secretTour", Operator: types.OpNe, Value: true}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := c.Find(tt.condition).All(ctx)
			require.NoError(t, err)
			assert.Len(t, results, tt.want)
		})
	}
}

func TestMemoryArrayFieldsMatchAnyElement(t *testing.T) {
	c := NewMemoryStore().Collection("tours")
	_, err := c.Create(context.Background(), types.Record{"name": "a", "guides": []interface{}{"g1", "g2"}})
	require.NoError(t, err)
	_, err = c.Create(context.Background(), types.Record{"name": "b", "guides": []interface{}{"g3"}})
	require.NoError(t, err)

	results, err := c.Find(types.Eq("guides", "g2")).All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names(results))
}

func TestMemoryUpdateAndDelete(t *testing.T) {
	c := NewMemoryStore().Collection("tours")
	ctx := context.Background()
	created, err := c.Create(ctx, types.Record{"name": "The Forest Hiker", "price": 397.0})
	require.NoError(t, err)
	id := created[types.IDField].(string)

	updated, err := c.FindByIDAndUpdate(ctx, id, types.Record{"price": 450.0, types.IDField: "other"})
	require.NoError(t, err)
	assert.Equal(t, 450.0, updated["price"])
	assert.Equal(t, id, updated[types.IDField])

	_, err = c.FindByIDAndDelete(ctx, id)
	require.NoError(t, err)

	_, err = c.FindByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.FindByIDAndDelete(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.FindByIDAndUpdate(ctx, id, types.Record{"price": 1.0})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUniqueFields(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.EnsureUnique(ctx, "users", "email"))
	c := store.Collection("users")

	_, err := c.Create(ctx, types.Record{"email": "jonas@example.io"})
	require.NoError(t, err)
	_, err = c.Create(ctx, types.Record{"email": "jonas@example.io"})
	assert.ErrorIs(t, err, ErrDuplicate)

	other, err := c.Create(ctx, types.Record{"email": "laura@example.io"})
	require.NoError(t, err)
	_, err = c.FindByIDAndUpdate(ctx, other[types.IDField].(string), types.Record{"email": "jonas@example.io"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryDeleteAll(t *testing.T) {
	c := NewMemoryStore().Collection("tours")
	seedTours(t, c)
	require.NoError(t, c.DeleteAll(context.Background()))

	results, err := c.Find().All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}
