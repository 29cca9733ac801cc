package types

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

// CoerceQueryValue casts a raw query string the way the document mapper casts query values:
// numeric strings become numbers, true/false become booleans, anything else stays a string.
func CoerceQueryValue(raw string) interface{} {
	value := strings.TrimSpace(raw)
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	// ParseFloat also accepts words like "inf" and "nan"; those stay strings
	if strings.ContainsAny(value, "0123456789") {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

// CompareValues orders two scalar values. The second return value is false when the values
// are of incomparable kinds. Nil sorts before every other value.
func CompareValues(a, b interface{}) (int, bool) {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0, true
		case a == nil:
			return -1, true
		default:
			return 1, true
		}
	}

	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		return compareFloat(fa, fb), true
	}

	switch va := a.(type) {
	case string:
		vb, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(va, vb), true
	case bool:
		vb, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case va == vb:
			return 0, true
		case !va:
			return -1, true
		default:
			return 1, true
		}
	case time.Time:
		vb, ok := toTime(b)
		if !ok {
			return 0, false
		}
		switch {
		case va.Before(vb):
			return -1, true
		case va.After(vb):
			return 1, true
		default:
			return 0, true
		}
	}

	if reflect.DeepEqual(a, b) {
		return 0, true
	}
	return 0, false
}

// ToFloat converts any numeric value to a float64
func ToFloat(value interface{}) (float64, bool) {
	return toFloat(value)
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func toTime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// ApplyProjection returns a copy of the record restricted by the projection
func ApplyProjection(record Record, projection Projection) Record {
	if len(projection.Include) > 0 {
		result := make(Record, len(projection.Include)+1)
		if id, ok := record[IDField]; ok {
			result[IDField] = id
		}
		for _, field := range projection.Include {
			if value, ok := record[field]; ok {
				result[field] = value
			}
		}
		return result
	}

	result := make(Record, len(record))
	for k, v := range record {
		result[k] = v
	}
	for _, field := range projection.Exclude {
		delete(result, field)
	}
	return result
}
