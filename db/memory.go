package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/natours/natours-api/types"
)

// MemoryStore keeps every collection in process memory. It is used by the tests and by the
// "memory" store setting for running the API without a database.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

func (s *MemoryStore) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{
			name:    name,
			records: make(map[string]types.Record),
			unique:  make(map[string]bool),
		}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) EnsureUnique(_ context.Context, collection string, field string) error {
	c := s.Collection(collection).(*memoryCollection)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unique[field] = true
	return nil
}

func (s *MemoryStore) Close(context.Context) error {
	return nil
}

type memoryCollection struct {
	mu      sync.RWMutex
	name    string
	order   []string
	records map[string]types.Record
	unique  map[string]bool
}

func (c *memoryCollection) Name() string {
	return c.name
}

func (c *memoryCollection) Find(conditions ...types.ConditionItem) Query {
	return &memoryQuery{collection: c, conditions: append([]types.ConditionItem(nil), conditions...)}
}

func (c *memoryCollection) FindByID(_ context.Context, id string) (types.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(record), nil
}

func (c *memoryCollection) Create(_ context.Context, record types.Record) (types.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := copyRecord(record)
	id, ok := stored[types.IDField].(string)
	if !ok || id == "" {
		id = uuid.NewString()
	}
	if _, exists := c.records[id]; exists {
		return nil, ErrDuplicate
	}
	if err := c.checkUnique(id, stored); err != nil {
		return nil, err
	}

	stored[types.IDField] = id
	stored[types.VersionField] = 0
	if _, ok := stored[types.CreatedAtField]; !ok {
		stored[types.CreatedAtField] = time.Now().UTC()
	}
	c.records[id] = stored
	c.order = append(c.order, id)
	return copyRecord(stored), nil
}

func (c *memoryCollection) FindByIDAndUpdate(
	_ context.Context, id string, changes types.Record,
) (types.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	updated := copyRecord(existing)
	for field, value := range changes {
		if field == types.IDField {
			continue
		}
		updated[field] = value
	}
	if err := c.checkUnique(id, updated); err != nil {
		return nil, err
	}
	c.records[id] = updated
	return copyRecord(updated), nil
}

func (c *memoryCollection) FindByIDAndDelete(_ context.Context, id string) (types.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(c.records, id)
	for i, key := range c.order {
		if key == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return existing, nil
}

func (c *memoryCollection) DeleteAll(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make(map[string]types.Record)
	c.order = nil
	return nil
}

// checkUnique must be called with the write lock held
func (c *memoryCollection) checkUnique(id string, record types.Record) error {
	for field := range c.unique {
		value, ok := record[field]
		if !ok || value == nil {
			continue
		}
		for key, other := range c.records {
			if key == id {
				continue
			}
			if cmp, ok := types.CompareValues(value, other[field]); ok && cmp == 0 {
				return ErrDuplicate
			}
		}
	}
	return nil
}

type memoryQuery struct {
	collection *memoryCollection
	conditions []types.ConditionItem
	sortKeys   []types.SortKey
	projection types.Projection
	skip       int64
	limit      int64
}

func (q *memoryQuery) Where(conditions ...types.ConditionItem) Query {
	q.conditions = append(q.conditions, conditions...)
	return q
}

func (q *memoryQuery) Sort(keys ...types.SortKey) Query {
	q.sortKeys = append(q.sortKeys, keys...)
	return q
}

func (q *memoryQuery) Select(projection types.Projection) Query {
	q.projection = projection
	return q
}

func (q *memoryQuery) Skip(n int64) Query {
	q.skip = n
	return q
}

func (q *memoryQuery) Limit(n int64) Query {
	q.limit = n
	return q
}

func (q *memoryQuery) All(ctx context.Context) ([]types.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q.collection.mu.RLock()
	matched := make([]types.Record, 0)
	for _, id := range q.collection.order {
		record := q.collection.records[id]
		if Matches(record, q.conditions) {
			matched = append(matched, record)
		}
	}
	q.collection.mu.RUnlock()

	if len(q.sortKeys) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			return lessBy(matched[i], matched[j], q.sortKeys)
		})
	}

	if q.skip > 0 {
		if q.skip >= int64(len(matched)) {
			matched = matched[:0]
		} else {
			matched = matched[q.skip:]
		}
	}
	if q.limit > 0 && q.limit < int64(len(matched)) {
		matched = matched[:q.limit]
	}

	results := make([]types.Record, 0, len(matched))
	for _, record := range matched {
		results = append(results, types.ApplyProjection(record, q.projection))
	}
	return results, nil
}

// Matches evaluates conditions against a single record in process, with the same semantics the
// in-memory store uses for queries
func Matches(record types.Record, conditions []types.ConditionItem) bool {
	for _, condition := range conditions {
		if !matches(record, condition) {
			return false
		}
	}
	return true
}

func matches(record types.Record, condition types.ConditionItem) bool {
	value, found := lookup(record, condition.Column)

	switch condition.Operator {
	case types.OpEq:
		return equalsAny(value, condition.Value)
	case types.OpNe:
		return !equalsAny(value, condition.Value)
	case types.OpIn:
		candidates, ok := condition.Value.([]interface{})
		if !ok {
			return equalsAny(value, condition.Value)
		}
		for _, candidate := range candidates {
			if equalsAny(value, candidate) {
				return true
			}
		}
		return false
	}

	if !found || value == nil {
		return false
	}
	for _, item := range elements(value) {
		cmp, ok := types.CompareValues(item, condition.Value)
		if !ok {
			continue
		}
		switch condition.Operator {
		case types.OpGt:
			if cmp > 0 {
				return true
			}
		case types.OpGte:
			if cmp >= 0 {
				return true
			}
		case types.OpLt:
			if cmp < 0 {
				return true
			}
		case types.OpLte:
			if cmp <= 0 {
				return true
			}
		}
	}
	return false
}

// equalsAny matches a scalar value, or any element of an array value, the way the document store does
func equalsAny(value interface{}, expected interface{}) bool {
	for _, item := range elements(value) {
		if cmp, ok := types.CompareValues(item, expected); ok && cmp == 0 {
			return true
		}
	}
	return false
}

func elements(value interface{}) []interface{} {
	if items, ok := value.([]interface{}); ok {
		return items
	}
	return []interface{}{value}
}

// lookup resolves dotted paths into embedded documents, e.g. "startLocation.address"
func lookup(record types.Record, path string) (interface{}, bool) {
	var current interface{} = record
	for _, part := range strings.Split(path, ".") {
		doc, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = doc[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func lessBy(a, b types.Record, keys []types.SortKey) bool {
	for _, key := range keys {
		va, _ := lookup(a, key.Column)
		vb, _ := lookup(b, key.Column)
		cmp, ok := types.CompareValues(va, vb)
		if !ok || cmp == 0 {
			continue
		}
		if key.Direction == types.Descending {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}

func copyRecord(record types.Record) types.Record {
	result := make(types.Record, len(record))
	for k, v := range record {
		result[k] = v
	}
	return result
}
