package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/natours/natours-api/types"
)

const connectTimeout = 10 * time.Second

// MongoStore keeps collections in a MongoDB database
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(ctx context.Context, uri string, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to %s: %w", database, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("unable to reach %s: %w", database, err)
	}

	return &MongoStore{client: client, db: client.Database(database)}, nil
}

func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{coll: s.db.Collection(name)}
}

func (s *MongoStore) EnsureUnique(ctx context.Context, collection string, field string) error {
	_, err := s.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) Name() string {
	return c.coll.Name()
}

func (c *mongoCollection) Find(conditions ...types.ConditionItem) Query {
	return &mongoQuery{coll: c.coll, conditions: append([]types.ConditionItem(nil), conditions...)}
}

func (c *mongoCollection) FindByID(ctx context.Context, id string) (types.Record, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc bson.M
	if err := c.coll.FindOne(ctx, bson.M{types.IDField: oid}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return fromBSON(doc), nil
}

func (c *mongoCollection) Create(ctx context.Context, record types.Record) (types.Record, error) {
	doc := toBSON(record)
	if _, ok := doc[types.IDField].(primitive.ObjectID); !ok {
		doc[types.IDField] = primitive.NewObjectID()
	}
	doc[types.VersionField] = 0
	if _, ok := doc[types.CreatedAtField]; !ok {
		doc[types.CreatedAtField] = time.Now().UTC()
	}

	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return nil, translateError(err)
	}
	return fromBSON(doc), nil
}

func (c *mongoCollection) FindByIDAndUpdate(
	ctx context.Context, id string, changes types.Record,
) (types.Record, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	set := toBSON(changes)
	delete(set, types.IDField)
	if len(set) == 0 {
		return c.FindByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bson.M
	err = c.coll.FindOneAndUpdate(ctx, bson.M{types.IDField: oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		return nil, translateError(err)
	}
	return fromBSON(doc), nil
}

func (c *mongoCollection) FindByIDAndDelete(ctx context.Context, id string) (types.Record, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc bson.M
	if err := c.coll.FindOneAndDelete(ctx, bson.M{types.IDField: oid}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return fromBSON(doc), nil
}

func (c *mongoCollection) DeleteAll(ctx context.Context) error {
	_, err := c.coll.DeleteMany(ctx, bson.M{})
	return err
}

type mongoQuery struct {
	coll       *mongo.Collection
	conditions []types.ConditionItem
	sortKeys   []types.SortKey
	projection types.Projection
	skip       int64
	limit      int64
}

func (q *mongoQuery) Where(conditions ...types.ConditionItem) Query {
	q.conditions = append(q.conditions, conditions...)
	return q
}

func (q *mongoQuery) Sort(keys ...types.SortKey) Query {
	q.sortKeys = append(q.sortKeys, keys...)
	return q
}

func (q *mongoQuery) Select(projection types.Projection) Query {
	q.projection = projection
	return q
}

func (q *mongoQuery) Skip(n int64) Query {
	q.skip = n
	return q
}

func (q *mongoQuery) Limit(n int64) Query {
	q.limit = n
	return q
}

func (q *mongoQuery) All(ctx context.Context) ([]types.Record, error) {
	filter, err := buildFilter(q.conditions)
	if err != nil {
		return nil, err
	}

	opts := options.Find()
	if len(q.sortKeys) > 0 {
		opts.SetSort(buildSort(q.sortKeys))
	}
	if projection := buildProjection(q.projection); len(projection) > 0 {
		opts.SetProjection(projection)
	}
	if q.skip > 0 {
		opts.SetSkip(q.skip)
	}
	if q.limit > 0 {
		opts.SetLimit(q.limit)
	}

	cursor, err := q.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translateError(err)
	}

	results := make([]types.Record, 0, len(docs))
	for _, doc := range docs {
		results = append(results, fromBSON(doc))
	}
	return results, nil
}

// buildFilter maps the typed conditions to a document filter. Only operators of the closed
// set in types.MongoOperators can reach the database.
func buildFilter(conditions []types.ConditionItem) (bson.M, error) {
	if len(conditions) == 0 {
		return bson.M{}, nil
	}

	clauses := make(bson.A, 0, len(conditions))
	for _, condition := range conditions {
		op, ok := types.MongoOperators[condition.Operator]
		if !ok {
			return nil, fmt.Errorf("unsupported operator %q on %s", condition.Operator, condition.Column)
		}
		value := condition.Value
		if condition.Column == types.IDField {
			value = idValue(value)
		}
		clauses = append(clauses, bson.M{condition.Column: bson.M{op: value}})
	}
	return bson.M{"$and": clauses}, nil
}

func buildSort(keys []types.SortKey) bson.D {
	sort := make(bson.D, 0, len(keys))
	for _, key := range keys {
		sort = append(sort, bson.E{Key: key.Column, Value: int(key.Direction)})
	}
	return sort
}

func buildProjection(projection types.Projection) bson.D {
	if len(projection.Include) > 0 {
		result := make(bson.D, 0, len(projection.Include))
		for _, field := range projection.Include {
			result = append(result, bson.E{Key: field, Value: 1})
		}
		return result
	}
	result := make(bson.D, 0, len(projection.Exclude))
	for _, field := range projection.Exclude {
		result = append(result, bson.E{Key: field, Value: 0})
	}
	return result
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	return oid, nil
}

func idValue(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		if oid, err := primitive.ObjectIDFromHex(v); err == nil {
			return oid
		}
	case []interface{}:
		ids := make(bson.A, 0, len(v))
		for _, item := range v {
			ids = append(ids, idValue(item))
		}
		return ids
	}
	return value
}

func translateError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %s", ErrDuplicate, err.Error())
	}
	return err
}

func toBSON(record types.Record) bson.M {
	doc := make(bson.M, len(record))
	for k, v := range record {
		if k == types.IDField {
			v = idValue(v)
		}
		doc[k] = v
	}
	return doc
}

// fromBSON converts driver specific values so records look the same whichever store produced them
func fromBSON(doc bson.M) types.Record {
	record := make(types.Record, len(doc))
	for k, v := range doc {
		record[k] = fromBSONValue(v)
	}
	return record
}

func fromBSONValue(value interface{}) interface{} {
	switch v := value.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case primitive.DateTime:
		return v.Time().UTC()
	case bson.M:
		return fromBSON(v)
	case bson.D:
		return fromBSON(v.Map())
	case bson.A:
		items := make([]interface{}, 0, len(v))
		for _, item := range v {
			items = append(items, fromBSONValue(item))
		}
		return items
	case int32:
		return int64(v)
	}
	return value
}
