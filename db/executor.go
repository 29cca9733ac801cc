package db

import (
	"context"

	"github.com/natours/natours-api/types"
)

// Execute runs a query specification against base. The scope conditions are applied before the
// specification's own filter, followed by sort, projection and pagination, always in that order.
func Execute(
	ctx context.Context, base Query, scope []types.ConditionItem, spec types.QuerySpec,
) ([]types.Record, error) {
	query := base
	if len(scope) > 0 {
		query = query.Where(scope...)
	}
	if len(spec.Filter) > 0 {
		query = query.Where(spec.Filter...)
	}
	if len(spec.Sort) > 0 {
		query = query.Sort(spec.Sort...)
	}
	query = query.Select(spec.Projection)

	if spec.Page > 0 && spec.Limit > 0 {
		query = query.Skip(spec.Skip())
	}
	if spec.Limit > 0 {
		query = query.Limit(spec.Limit)
	}

	return query.All(ctx)
}
