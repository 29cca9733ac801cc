package endpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"

	"github.com/natours/natours-api/config"
	"github.com/natours/natours-api/db"
	"github.com/natours/natours-api/log"
	e "github.com/natours/natours-api/rest/errors"
	t "github.com/natours/natours-api/rest/translator"
	"github.com/natours/natours-api/types"
)

// maxBodyBytes limits the size of request bodies
const maxBodyBytes = 10 << 10

var (
	inputValidator *validator.Validate
	trans          ut.Translator
)

func init() {
	inputValidator = validator.New()

	// Report fields by the name clients send them with
	inputValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	uni := ut.New(en.New(), en.New())
	trans, _ = uni.GetTranslator("en")

	_ = enTranslations.RegisterDefaultTranslations(inputValidator, trans)

	_ = inputValidator.RegisterTranslation("required", trans, func(ut ut.Translator) error {
		return ut.Add("required", "{0} is a required field", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		translator, _ := ut.T("required", fe.Field())
		return translator
	})

	_ = inputValidator.RegisterTranslation("oneof", trans, func(ut ut.Translator) error {
		return ut.Add("oneof", "{0} must be one of: {1}", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		translator, _ := ut.T("oneof", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
		return translator
	})

	_ = inputValidator.RegisterTranslation("eqfield", trans, func(ut ut.Translator) error {
		return ut.Add("eqfield", "{0} must match {1}", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		translator, _ := ut.T("eqfield", fe.Field(), strcase.ToLowerCamel(fe.Param()))
		return translator
	})

	_ = inputValidator.RegisterTranslation("ltfield", trans, func(ut ut.Translator) error {
		return ut.Add("ltfield", "{0} must be below {1}", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		translator, _ := ut.T("ltfield", fe.Field(), strcase.ToLowerCamel(fe.Param()))
		return translator
	})
}

// ParentScope restricts a nested route to the records of one parent, e.g. the reviews of a tour
type ParentScope struct {
	// Param is the route parameter holding the parent id
	Param string
	// Field is the reference to the parent stored on each record
	Field string
}

// Include populates a field of the returned records from another collection with a second query.
// Records whose LocalField value matches ForeignField are placed in Field.
type Include struct {
	Field        string
	Collection   string
	LocalField   string
	ForeignField string
	// Many places every match in a list instead of the first match
	Many bool
	// List also populates the records of list responses, otherwise only single record responses
	List       bool
	Projection types.Projection
	// Includes populate the related records in turn
	Includes []Include
}

// Kind describes a record kind served by the generic handlers
type Kind struct {
	Name       string
	Collection string
	// Model returns a pointer to the struct records of the kind are validated against
	Model  func() interface{}
	Hidden []string
	// Scope always restricts the records visible through the handlers
	Scope    []types.ConditionItem
	Defaults types.Record
	Parent   *ParentScope
	Includes []Include
	// Protected fields are rejected by updates with ProtectedMessage
	Protected        []string
	ProtectedMessage string
	// Prepare is called before a record is validated and created
	Prepare func(r *http.Request, record types.Record) error
	// AfterWrite is called with the record once it has been created, updated or deleted
	AfterWrite func(ctx context.Context, record types.Record) error
}

type routeList struct {
	db     *db.Db
	config config.Config
	logger log.Logger
	params func(*http.Request, string) string
}

// handlerFunc is a handler whose failures are turned into the error envelope by a single boundary
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *routeList) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.respondWithError(w, r, err)
		}
	}
}

func (s *routeList) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	code := RespondWithError(w, err, config.IsDevelopment(s.config))
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		return
	}
	s.logger.Debug("request rejected",
		"method", r.Method,
		"path", r.URL.Path,
		"status", code,
		"error", err)
}

func (s *routeList) idParam(r *http.Request) string {
	return s.params(r, "id")
}

func (s *routeList) singleKey(kind Kind) string {
	return s.config.Naming().ToEnvelopeKey(kind.Name)
}

func (s *routeList) listKey(kind Kind) string {
	return s.config.Naming().ToEnvelopeListKey(kind.Name)
}

// CreateOne persists a record built from the request body
func (s *routeList) CreateOne(kind Kind) http.HandlerFunc {
	return s.handle(func(w http.ResponseWriter, r *http.Request) error {
		body, err := decodeBody(w, r)
		if err != nil {
			return err
		}

		record := kind.sanitize(body)
		if kind.Parent != nil {
			if parent := s.params(r, kind.Parent.Param); parent != "" && record[kind.Parent.Field] == nil {
				record[kind.Parent.Field] = parent
			}
		}
		for field, value := range kind.Defaults {
			if _, ok := record[field]; !ok {
				record[field] = value
			}
		}
		if kind.Prepare != nil {
			if err := kind.Prepare(r, record); err != nil {
				return err
			}
		}
		model := kind.Model()
		if err := validateRecord(model, record, nil); err != nil {
			return err
		}
		castFields(model, record)

		created, err := s.db.Collection(kind.Collection).Create(r.Context(), record)
		if err != nil {
			return storeError(err, "")
		}
		if err := s.afterWrite(r.Context(), kind, created); err != nil {
			return err
		}

		kind.hide(created)
		RespondJSONObjectWithCode(w, http.StatusCreated, NewSingleEnvelope(s.singleKey(kind), created))
		return nil
	})
}

// GetOne returns the record named by the id route parameter
func (s *routeList) GetOne(kind Kind) http.HandlerFunc {
	return s.getOne(kind, s.idParam)
}

func (s *routeList) getOne(kind Kind, id func(*http.Request) string) http.HandlerFunc {
	return s.handle(func(w http.ResponseWriter, r *http.Request) error {
		record, err := s.findOne(r.Context(), kind, id(r))
		if err != nil {
			return err
		}
		if err := s.populate(r.Context(), kind, []types.Record{record}, false); err != nil {
			return err
		}

		kind.hide(record)
		RespondJSONObjectWithCode(w, http.StatusOK, NewSingleEnvelope(s.singleKey(kind), record))
		return nil
	})
}

// GetAll lists the records matching the request query
func (s *routeList) GetAll(kind Kind) http.HandlerFunc {
	return s.handle(func(w http.ResponseWriter, r *http.Request) error {
		spec := t.ParseQuery(r.URL.Query())

		scope := append([]types.ConditionItem(nil), kind.Scope...)
		if kind.Parent != nil {
			if parent := s.params(r, kind.Parent.Param); parent != "" {
				scope = append(scope, types.Eq(kind.Parent.Field, parent))
			}
		}

		records, err := db.Execute(r.Context(), s.db.Collection(kind.Collection).Find(), scope, spec)
		if err != nil {
			return storeError(err, "")
		}
		if err := s.populate(r.Context(), kind, records, true); err != nil {
			return err
		}

		kind.hide(records...)
		RespondJSONObjectWithCode(w, http.StatusOK, NewListEnvelope(s.listKey(kind), records))
		return nil
	})
}

// UpdateOne sets the fields of the request body on the record named by the id route parameter.
// Only the fields being changed are validated, against the record as it will be stored.
func (s *routeList) UpdateOne(kind Kind) http.HandlerFunc {
	return s.handle(func(w http.ResponseWriter, r *http.Request) error {
		id := s.idParam(r)
		body, err := decodeBody(w, r)
		if err != nil {
			return err
		}
		for _, field := range kind.Protected {
			if _, ok := body[field]; ok {
				return e.NewBadRequestError(kind.ProtectedMessage)
			}
		}

		changes := kind.sanitize(body)
		existing, err := s.findOne(r.Context(), kind, id)
		if err != nil {
			return err
		}
		model := kind.Model()
		if err := validateRecord(model, merge(existing, changes), changedFields(model, changes)); err != nil {
			return err
		}
		castFields(model, changes)

		updated, err := s.db.Collection(kind.Collection).FindByIDAndUpdate(r.Context(), id, changes)
		if err != nil {
			return storeError(err, id)
		}
		if err := s.afterWrite(r.Context(), kind, updated); err != nil {
			return err
		}

		kind.hide(updated)
		RespondJSONObjectWithCode(w, http.StatusOK, NewSingleEnvelope(s.singleKey(kind), updated))
		return nil
	})
}

// DeleteOne removes the record named by the id route parameter
func (s *routeList) DeleteOne(kind Kind) http.HandlerFunc {
	return s.handle(func(w http.ResponseWriter, r *http.Request) error {
		id := s.idParam(r)
		if _, err := s.findOne(r.Context(), kind, id); err != nil {
			return err
		}
		deleted, err := s.db.Collection(kind.Collection).FindByIDAndDelete(r.Context(), id)
		if err != nil {
			return storeError(err, id)
		}
		if err := s.afterWrite(r.Context(), kind, deleted); err != nil {
			return err
		}

		RespondJSONObjectWithCode(w, http.StatusNoContent, NewDeleteEnvelope())
		return nil
	})
}

func (s *routeList) findOne(ctx context.Context, kind Kind, id string) (types.Record, error) {
	record, err := s.db.Collection(kind.Collection).FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, id)
	}
	if len(kind.Scope) > 0 && !db.Matches(record, kind.Scope) {
		return nil, e.NewNotFoundError("")
	}
	return record, nil
}

func (s *routeList) afterWrite(ctx context.Context, kind Kind, record types.Record) error {
	if kind.AfterWrite == nil {
		return nil
	}
	return kind.AfterWrite(ctx, record)
}

// populate resolves the includes of kind with one query per include
func (s *routeList) populate(ctx context.Context, kind Kind, records []types.Record, list bool) error {
	return s.populateIncludes(ctx, kind.Includes, records, list)
}

func (s *routeList) populateIncludes(ctx context.Context, includes []Include, records []types.Record, list bool) error {
	for _, include := range includes {
		if list && !include.List {
			continue
		}

		keys := make([]interface{}, 0)
		for _, record := range records {
			keys = append(keys, localValues(record, include.LocalField)...)
		}

		index := make(map[string][]types.Record)
		if len(keys) > 0 {
			related, err := s.db.Collection(include.Collection).
				Find(types.ConditionItem{Column: include.ForeignField, Operator: types.OpIn, Value: keys}).
				Select(include.Projection).
				All(ctx)
			if err != nil {
				return storeError(err, "")
			}
			if err := s.populateIncludes(ctx, include.Includes, related, false); err != nil {
				return err
			}
			for _, rel := range related {
				key := fmt.Sprint(rel[include.ForeignField])
				index[key] = append(index[key], rel)
			}
		}

		for _, record := range records {
			if _, ok := record[include.LocalField]; !ok {
				continue
			}
			matches := make([]types.Record, 0)
			for _, value := range localValues(record, include.LocalField) {
				matches = append(matches, index[fmt.Sprint(value)]...)
			}
			switch {
			case include.Many:
				record[include.Field] = matches
			case len(matches) > 0:
				record[include.Field] = matches[0]
			default:
				record[include.Field] = nil
			}
		}
	}
	return nil
}

func localValues(record types.Record, field string) []interface{} {
	switch v := record[field].(type) {
	case nil:
		return nil
	case []interface{}:
		return v
	case []string:
		values := make([]interface{}, 0, len(v))
		for _, s := range v {
			values = append(values, s)
		}
		return values
	default:
		return []interface{}{v}
	}
}

// sanitize drops every field the kind's model does not declare
func (k Kind) sanitize(body types.Record) types.Record {
	allowed := modelFields(k.Model())
	if k.Parent != nil {
		allowed[k.Parent.Field] = ""
	}

	record := make(types.Record, len(body))
	for field, value := range body {
		if _, ok := allowed[field]; ok {
			record[field] = value
		}
	}
	return record
}

func (k Kind) hide(records ...types.Record) {
	for _, record := range records {
		for _, field := range k.Hidden {
			delete(record, field)
		}
	}
}

// modelFields maps the json names of a model's fields to the struct field names
func modelFields(model interface{}) map[string]string {
	typ := reflect.TypeOf(model)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	fields := make(map[string]string, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		fields[name] = field.Name
	}
	return fields
}

func changedFields(model interface{}, changes types.Record) []string {
	fields := modelFields(model)
	names := make([]string, 0, len(changes))
	for field := range changes {
		if name, ok := fields[field]; ok {
			names = append(names, name)
		}
	}
	return names
}

func merge(existing types.Record, changes types.Record) types.Record {
	merged := make(types.Record, len(existing)+len(changes))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range changes {
		merged[k] = v
	}
	return merged
}

// validateRecord decodes record into model and validates it. A nil fields list validates every
// field of the model, otherwise only the named struct fields are validated.
func validateRecord(model interface{}, record types.Record, fields []string) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           model,
	})
	if err != nil {
		return e.WrapInternalError("unable to create decoder", err)
	}
	if err := decoder.Decode(record); err != nil {
		var decodeErr *mapstructure.Error
		if errors.As(err, &decodeErr) {
			return e.NewValidationError("Invalid input data. " + strings.Join(decodeErr.Errors, ". "))
		}
		return e.NewValidationError("Invalid input data. " + err.Error())
	}

	if fields == nil {
		err = inputValidator.Struct(model)
	} else if len(fields) > 0 {
		err = inputValidator.StructPartial(model, fields...)
	}
	if err != nil {
		return e.TranslateValidatorError(err, trans)
	}
	return nil
}

// castFields replaces the scalar values of record with the values decoded into model, so e.g. a price
// sent as "397" is stored as a number. Lists and embedded documents are stored as sent.
func castFields(model interface{}, record types.Record) {
	value := reflect.ValueOf(model)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}
	for jsonName, fieldName := range modelFields(model) {
		if _, ok := record[jsonName]; !ok || record[jsonName] == nil {
			continue
		}
		field := value.FieldByName(fieldName)
		switch field.Kind() {
		case reflect.Bool, reflect.String,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			record[jsonName] = field.Interface()
		}
	}
}

func parseAndValidatePayload(obj interface{}, w http.ResponseWriter, r *http.Request) error {
	body, err := decodeBody(w, r)
	if err != nil {
		return err
	}
	return validateRecord(obj, body, nil)
}

func decodeBody(w http.ResponseWriter, r *http.Request) (types.Record, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var body types.Record
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return types.Record{}, nil
		}
		return nil, e.NewBadRequestError("Invalid request body: " + err.Error())
	}
	if body == nil {
		body = types.Record{}
	}
	return body, nil
}

// storeError maps store failures to the error taxonomy. Unknown failures are returned as they are.
func storeError(err error, id string) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return e.NewNotFoundError("")
	case errors.Is(err, db.ErrInvalidID):
		return e.NewBadRequestError(fmt.Sprintf("Invalid %s: %s", types.IDField, id))
	case errors.Is(err, db.ErrDuplicate):
		return e.NewConflictError("Duplicate field value. Please use another value!")
	}
	return e.WrapInternalError("store failure", err)
}
