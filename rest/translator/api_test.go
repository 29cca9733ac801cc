package translator

import (
	"fmt"
	"math"
	"net/url"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"

	"github.com/natours/natours-api/types"
)

func query(t *testing.T, raw string) url.Values {
	values, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("invalid test query %q: %v", raw, err)
	}
	return values
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want types.QuerySpec
	}{
		{
			name: "Defaults",
			raw:  "",
			want: types.QuerySpec{
				Filter:     []types.ConditionItem{},
				Sort:       DefaultSort,
				Projection: DefaultProjection,
				Page:       1,
				Limit:      100,
			},
		}, {
			name: "Equality And Range",
			raw:  "difficulty=easy&price[lte]=1000&sort=-ratingsAverage&limit=5",
			want: types.QuerySpec{
				Filter: []types.ConditionItem{
					types.Eq("difficulty", "easy"),
					{Column: "price", Operator: types.OpLte, Value: int64(1000)},
				},
				Sort:       []types.SortKey{{Column: "ratingsAverage", Direction: types.Descending}},
				Projection: DefaultProjection,
				Page:       1,
				Limit:      5,
			},
		}, {
			name: "All Range Operators",
			raw:  "duration[gte]=5&duration[lt]=10&price[gt]=99.5&ratingsQuantity[lte]=3",
			want: types.QuerySpec{
				Filter: []types.ConditionItem{
					{Column: "duration", Operator: types.OpGte, Value: int64(5)},
					{Column: "duration", Operator: types.OpLt, Value: int64(10)},
					{Column: "price", Operator: types.OpGt, Value: 99.5},
					{Column: "ratingsQuantity", Operator: types.OpLte, Value: int64(3)},
				},
				Sort:       DefaultSort,
				Projection: DefaultProjection,
				Page:       1,
				Limit:      100,
			},
		}, {
			name: "Unknown Operators Dropped",
			raw:  "price[where]=1&price[ne]=2&$where=x&name]=y&[gte]=3&secretTour=false",
			want: types.QuerySpec{
				Filter:     []types.ConditionItem{types.Eq("secretTour", false)},
				Sort:       DefaultSort,
				Projection: DefaultProjection,
				Page:       1,
				Limit:      100,
			},
		}, {
			name: "Repeated Keys",
			raw:  "difficulty=easy&difficulty=medium",
			want: types.QuerySpec{
				Filter: []types.ConditionItem{
					{Column: "difficulty", Operator: types.OpIn, Value: []interface{}{"easy", "medium"}},
				},
				Sort:       DefaultSort,
				Projection: DefaultProjection,
				Page:       1,
				Limit:      100,
			},
		}, {
			name: "Sort Tie Break",
			raw:  "sort=-price, name,,",
			want: types.QuerySpec{
				Filter: []types.ConditionItem{},
				Sort: []types.SortKey{
					{Column: "price", Direction: types.Descending},
					{Column: "name", Direction: types.Ascending},
				},
				Projection: DefaultProjection,
				Page:       1,
				Limit:      100,
			},
		}, {
			name: "Field Inclusion",
			raw:  "fields=name, price",
			want: types.QuerySpec{
				Filter:     []types.ConditionItem{},
				Sort:       DefaultSort,
				Projection: types.Projection{Include: []string{"name", "price"}},
				Page:       1,
				Limit:      100,
			},
		}, {
			name: "Field Exclusion",
			raw:  "fields=-secretTour,-__v,name",
			want: types.QuerySpec{
				Filter:     []types.ConditionItem{},
				Sort:       DefaultSort,
				Projection: types.Projection{Exclude: []string{"secretTour", "__v"}},
				Page:       1,
				Limit:      100,
			},
		}, {
			name: "Pagination",
			raw:  "page=3&limit=10",
			want: types.QuerySpec{
				Filter:     []types.ConditionItem{},
				Sort:       DefaultSort,
				Projection: DefaultProjection,
				Page:       3,
				Limit:      10,
			},
		}, {
			name: "Invalid Pagination Defaults",
			raw:  "page=abc&limit=-4",
			want: types.QuerySpec{
				Filter:     []types.ConditionItem{},
				Sort:       DefaultSort,
				Projection: DefaultProjection,
				Page:       1,
				Limit:      100,
			},
		},
	}

	dmp := diffmatchpatch.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuery(query(t, tt.raw))
			if !assert.Equal(t, tt.want, got) {
				diffs := dmp.DiffMain(fmt.Sprintf("%+v", tt.want), fmt.Sprintf("%+v", got), false)
				t.Log(dmp.DiffPrettyText(diffs))
			}
		})
	}
}

func TestParseQuerySkip(t *testing.T) {
	assert.Equal(t, int64(0), ParseQuery(url.Values{}).Skip())
	assert.Equal(t, int64(20), ParseQuery(query(t, "page=3&limit=10")).Skip())
	assert.Equal(t, int64(200), ParseQuery(query(t, "page=3")).Skip())
	assert.Equal(t, int64(0), ParseQuery(query(t, "page=0&limit=0")).Skip())
}

func TestParseQuerySkipSaturates(t *testing.T) {
	tests := []string{
		"page=4611686018427387904&limit=3",
		"page=4611686018427387905&limit=4",
		"page=9223372036854775807&limit=9223372036854775807",
	}
	for _, raw := range tests {
		skip := ParseQuery(query(t, raw)).Skip()
		assert.Equal(t, int64(math.MaxInt64), skip, raw)
	}
	assert.Equal(t, int64(math.MaxInt64-1), ParseQuery(query(t, "page=4611686018427387904&limit=2")).Skip())
}

func TestParseQueryIsPure(t *testing.T) {
	raw := query(t, "difficulty=easy&duration[gte]=5&sort=price&fields=name&page=2")
	first := ParseQuery(raw)
	second := ParseQuery(raw)
	assert.Equal(t, first, second)
	assert.Equal(t, query(t, "difficulty=easy&duration[gte]=5&sort=price&fields=name&page=2"), raw)
}

func TestParseQueryReservedKeysNeverFilter(t *testing.T) {
	spec := ParseQuery(query(t, "page=2&sort=name&limit=3&fields=name"))
	assert.Empty(t, spec.Filter)
}
