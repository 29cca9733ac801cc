// types package contains the public API types
// shared between the request translator, the store and the REST endpoints
package types

import (
	"math"
	"net/http"
)

// Record is a persisted document as seen by the API layer. The core never inspects
// its shape beyond the field names used for filtering, sorting and projection.
type Record = map[string]interface{}

const (
	// IDField is the identifier every record carries and every projection keeps.
	IDField = "_id"
	// VersionField is the internal version marker hidden by default.
	VersionField = "__v"
	// CreatedAtField is the creation timestamp used for the default sort order.
	CreatedAtField = "createdAt"
)

// Operator is the closed set of comparison operators a condition may use.
type Operator string

const (
	OpEq  Operator = "eq"
	OpNe  Operator = "ne"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

// RangeOperators are the operators a caller may address with a bracket suffix, e.g. price[gte]=500
var RangeOperators = map[string]Operator{
	"gte": OpGte,
	"gt":  OpGt,
	"lte": OpLte,
	"lt":  OpLt,
}

// MongoOperators contains the document store operator for a given Operator
var MongoOperators = map[Operator]string{
	OpEq:  "$eq",
	OpNe:  "$ne",
	OpGt:  "$gt",
	OpGte: "$gte",
	OpLt:  "$lt",
	OpLte: "$lte",
	OpIn:  "$in",
}

type ConditionItem struct {
	Column   string      `json:"column"`
	Operator Operator    `json:"operator"`
	Value    interface{} `json:"value"`
}

// Eq is a shorthand for an equality condition
func Eq(column string, value interface{}) ConditionItem {
	return ConditionItem{Column: column, Operator: OpEq, Value: value}
}

type SortDirection int

const (
	Ascending  SortDirection = 1
	Descending SortDirection = -1
)

type SortKey struct {
	Column    string        `json:"column"`
	Direction SortDirection `json:"direction"`
}

// Projection selects the fields of each returned record. Include takes precedence over Exclude;
// the identifier is always part of an inclusion projection.
type Projection struct {
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// QuerySpec is the normalized filter/sort/projection/pagination intent derived from a request query
type QuerySpec struct {
	Filter     []ConditionItem `json:"filter"`
	Sort       []SortKey       `json:"sort"`
	Projection Projection      `json:"projection"`
	Page       int64           `json:"page"`
	Limit      int64           `json:"limit"`
}

// Skip is the number of records preceding the requested page. It saturates at math.MaxInt64 for pages
// too far out to count.
func (q QuerySpec) Skip() int64 {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt64/q.Limit {
		return math.MaxInt64
	}
	return q.Limit * (q.Page - 1)
}

// Route represents a request route to be served
type Route struct {
	Method  string
	Pattern string
	Handler http.Handler
}
