package db

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/natours/natours-api/types"
)

type StoreMock struct {
	mock.Mock
}

func NewStoreMock() *StoreMock {
	return &StoreMock{}
}

func (o *StoreMock) Collection(name string) Collection {
	return o.Called(name).Get(0).(Collection)
}

func (o *StoreMock) EnsureUnique(ctx context.Context, collection string, field string) error {
	return o.Called(collection, field).Error(0)
}

func (o *StoreMock) Close(ctx context.Context) error {
	return o.Called().Error(0)
}

type CollectionMock struct {
	mock.Mock
}

func NewCollectionMock() *CollectionMock {
	return &CollectionMock{}
}

func (o *CollectionMock) Name() string {
	return o.Called().String(0)
}

func (o *CollectionMock) Find(conditions ...types.ConditionItem) Query {
	args := o.Called(conditions)
	return args.Get(0).(Query)
}

func (o *CollectionMock) FindByID(ctx context.Context, id string) (types.Record, error) {
	args := o.Called(id)
	return recordOrNil(args.Get(0)), args.Error(1)
}

func (o *CollectionMock) Create(ctx context.Context, record types.Record) (types.Record, error) {
	args := o.Called(record)
	return recordOrNil(args.Get(0)), args.Error(1)
}

func (o *CollectionMock) FindByIDAndUpdate(ctx context.Context, id string, changes types.Record) (types.Record, error) {
	args := o.Called(id, changes)
	return recordOrNil(args.Get(0)), args.Error(1)
}

func (o *CollectionMock) FindByIDAndDelete(ctx context.Context, id string) (types.Record, error) {
	args := o.Called(id)
	return recordOrNil(args.Get(0)), args.Error(1)
}

func (o *CollectionMock) DeleteAll(ctx context.Context) error {
	return o.Called().Error(0)
}

// QueryMock records the builder calls so tests can assert the order they were issued in
type QueryMock struct {
	mock.Mock
}

func NewQueryMock() *QueryMock {
	return &QueryMock{}
}

// Default accepts every builder call and returns results from All
func (o *QueryMock) Default(results []types.Record) *QueryMock {
	o.On("Where", mock.Anything).Return(o)
	o.On("Sort", mock.Anything).Return(o)
	o.On("Select", mock.Anything).Return(o)
	o.On("Skip", mock.Anything).Return(o)
	o.On("Limit", mock.Anything).Return(o)
	o.On("All").Return(results, nil)
	return o
}

func (o *QueryMock) Where(conditions ...types.ConditionItem) Query {
	return o.Called(conditions).Get(0).(Query)
}

func (o *QueryMock) Sort(keys ...types.SortKey) Query {
	return o.Called(keys).Get(0).(Query)
}

func (o *QueryMock) Select(projection types.Projection) Query {
	return o.Called(projection).Get(0).(Query)
}

func (o *QueryMock) Skip(n int64) Query {
	return o.Called(n).Get(0).(Query)
}

func (o *QueryMock) Limit(n int64) Query {
	return o.Called(n).Get(0).(Query)
}

func (o *QueryMock) All(ctx context.Context) ([]types.Record, error) {
	args := o.Called()
	results, _ := args.Get(0).([]types.Record)
	return results, args.Error(1)
}

func recordOrNil(value interface{}) types.Record {
	record, _ := value.(types.Record)
	return record
}
