package translator

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/natours/natours-api/types"
)

const (
	PageKey   = "page"
	SortKey   = "sort"
	LimitKey  = "limit"
	FieldsKey = "fields"

	DefaultPage  int64 = 1
	DefaultLimit int64 = 100
)

// reservedKeys are control keys, never filter conditions
var reservedKeys = map[string]bool{
	PageKey:   true,
	SortKey:   true,
	LimitKey:  true,
	FieldsKey: true,
}

// DefaultSort is used when the request does not name a sort order: newest first
var DefaultSort = []types.SortKey{{Column: types.CreatedAtField, Direction: types.Descending}}

// DefaultProjection hides the version marker when the request does not select fields
var DefaultProjection = types.Projection{Exclude: []string{types.VersionField}}

// ParseQuery translates the raw query of a list request into a query specification.
// It never fails: anything it cannot interpret is either dropped or replaced by its default.
func ParseQuery(raw url.Values) types.QuerySpec {
	return types.QuerySpec{
		Filter:     parseFilter(raw),
		Sort:       parseSort(joinValues(raw[SortKey])),
		Projection: parseProjection(joinValues(raw[FieldsKey])),
		Page:       positiveOrDefault(raw.Get(PageKey), DefaultPage),
		Limit:      positiveOrDefault(raw.Get(LimitKey), DefaultLimit),
	}
}

func parseFilter(raw url.Values) []types.ConditionItem {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		if !reservedKeys[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	conditions := make([]types.ConditionItem, 0, len(keys))
	for _, key := range keys {
		values := raw[key]
		if len(values) == 0 {
			continue
		}

		column, op, ok := splitOperator(key)
		if !ok {
			continue
		}

		if op == types.OpEq {
			if len(values) > 1 {
				in := make([]interface{}, 0, len(values))
				for _, v := range values {
					in = append(in, types.CoerceQueryValue(v))
				}
				conditions = append(conditions, types.ConditionItem{Column: column, Operator: types.OpIn, Value: in})
				continue
			}
			conditions = append(conditions, types.Eq(column, types.CoerceQueryValue(values[0])))
			continue
		}

		// price[gte]=100&price[gte]=200 requires both bounds to hold
		for _, v := range values {
			conditions = append(conditions, types.ConditionItem{
				Column:   column,
				Operator: op,
				Value:    types.CoerceQueryValue(v),
			})
		}
	}
	return conditions
}

// splitOperator splits "price[gte]" into its column and operator. Bare keys are equality conditions.
// Keys with an operator outside the allow-list, or that could be read as a store operator, are rejected.
func splitOperator(key string) (string, types.Operator, bool) {
	if key == "" || strings.HasPrefix(key, "$") {
		return "", "", false
	}

	open := strings.IndexByte(key, '[')
	if open < 0 {
		if strings.ContainsRune(key, ']') {
			return "", "", false
		}
		return key, types.OpEq, true
	}

	column := key[:open]
	if column == "" || !strings.HasSuffix(key, "]") {
		return "", "", false
	}
	op, ok := types.RangeOperators[key[open+1:len(key)-1]]
	if !ok {
		return "", "", false
	}
	return column, op, true
}

func parseSort(value string) []types.SortKey {
	keys := make([]types.SortKey, 0)
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		direction := types.Ascending
		if strings.HasPrefix(item, "-") {
			direction = types.Descending
			item = strings.TrimSpace(item[1:])
		}
		if item == "" {
			continue
		}
		keys = append(keys, types.SortKey{Column: item, Direction: direction})
	}

	if len(keys) == 0 {
		return DefaultSort
	}
	return keys
}

// parseProjection reads "name,price" as an inclusion and "-secretTour" as an exclusion.
// The first field decides the mode; fields written in the other mode are ignored.
func parseProjection(value string) types.Projection {
	var fields []string
	exclude := false
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" || item == "-" {
			continue
		}
		negated := strings.HasPrefix(item, "-")
		if len(fields) == 0 {
			exclude = negated
		}
		if negated != exclude {
			continue
		}
		fields = append(fields, strings.TrimPrefix(item, "-"))
	}

	switch {
	case len(fields) == 0:
		return DefaultProjection
	case exclude:
		return types.Projection{Exclude: fields}
	}
	return types.Projection{Include: fields}
}

// positiveOrDefault treats missing, non-numeric, zero and negative values as absent
func positiveOrDefault(value string, defaultValue int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func joinValues(values []string) string {
	return strings.Join(values, ",")
}
