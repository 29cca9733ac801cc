package db

import (
	"context"
	"errors"

	"github.com/natours/natours-api/types"
)

var (
	// ErrNotFound is returned when a lookup by id matches no document
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned when an identifier is malformed for the underlying store
	ErrInvalidID = errors.New("invalid document id")
	// ErrDuplicate is returned when a write violates a unique index
	ErrDuplicate = errors.New("duplicate key")
)

// Query is a lazy find-many builder. Nothing is sent to the store until All is called.
type Query interface {
	Where(conditions ...types.ConditionItem) Query
	Sort(keys ...types.SortKey) Query
	Select(projection types.Projection) Query
	Skip(n int64) Query
	Limit(n int64) Query

	// All materializes the query, the result is either complete or an error
	All(ctx context.Context) ([]types.Record, error)
}

// Collection is a set of records of a single kind
type Collection interface {
	Name() string

	// Find starts a lazy query restricted by the given conditions
	Find(conditions ...types.ConditionItem) Query

	FindByID(ctx context.Context, id string) (types.Record, error)

	// Create persists the record and returns it with its generated identifier and creation timestamp
	Create(ctx context.Context, record types.Record) (types.Record, error)

	// FindByIDAndUpdate sets the given fields on the record and returns the updated record
	FindByIDAndUpdate(ctx context.Context, id string, changes types.Record) (types.Record, error)

	FindByIDAndDelete(ctx context.Context, id string) (types.Record, error)

	// DeleteAll removes every record of the collection
	DeleteAll(ctx context.Context) error
}

// Store hands out the collections of a database
type Store interface {
	Collection(name string) Collection

	// EnsureUnique makes writes fail with ErrDuplicate when field repeats a value within the collection
	EnsureUnique(ctx context.Context, collection string, field string) error

	Close(ctx context.Context) error
}

// Db represents a connection to the document store
type Db struct {
	store Store
}

func NewDbWithStore(store Store) *Db {
	return &Db{store: store}
}

// NewMemoryDb gets a db backed by an in-process store
func NewMemoryDb() *Db {
	return NewDbWithStore(NewMemoryStore())
}

// NewMongoDb connects to the document database at uri
func NewMongoDb(ctx context.Context, uri string, database string) (*Db, error) {
	store, err := NewMongoStore(ctx, uri, database)
	if err != nil {
		return nil, err
	}
	return NewDbWithStore(store), nil
}

func (db *Db) Collection(name string) Collection {
	return db.store.Collection(name)
}

func (db *Db) EnsureUnique(ctx context.Context, collection string, field string) error {
	return db.store.EnsureUnique(ctx, collection, field)
}

func (db *Db) Close(ctx context.Context) error {
	return db.store.Close(ctx)
}
