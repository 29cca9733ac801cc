package endpoint

import (
	"context"
	"fmt"
	"strings"

	"github.com/natours/natours-api/auth"
	"github.com/natours/natours-api/config"
	"github.com/natours/natours-api/db"
	e "github.com/natours/natours-api/rest/errors"
	m "github.com/natours/natours-api/rest/models"
	"github.com/natours/natours-api/types"
)

// ImportCollections are the collections records can be imported into, in the order they are loaded
var ImportCollections = []string{ToursCollection, UsersCollection, ReviewsCollection}

// Importer creates records the way the create handlers do, keeping the identifiers they carry.
// Store failures are returned unchanged.
type Importer struct {
	rl routeList
}

func NewImporter(cfg config.Config, dbClient *db.Db) *Importer {
	return &Importer{rl: routeList{db: dbClient, config: cfg, logger: cfg.Logger()}}
}

func (i *Importer) Import(ctx context.Context, collection string, record types.Record) (types.Record, error) {
	var kind Kind
	switch collection {
	case ToursCollection:
		kind = i.rl.tourKind()
	case UsersCollection:
		kind = i.rl.userKind()
	case ReviewsCollection:
		kind = i.rl.reviewKind()
	default:
		return nil, fmt.Errorf("unable to import into %q", collection)
	}

	record = merge(kind.Defaults, record)
	if collection == UsersCollection {
		if err := prepareImportedUser(record); err != nil {
			return nil, err
		}
	} else {
		model := kind.Model()
		if err := validateRecord(model, record, nil); err != nil {
			return nil, err
		}
		castFields(model, record)
		if name, ok := record["name"].(string); ok && collection == ToursCollection {
			record[slugField] = i.rl.config.Naming().ToSlug(name)
		}
	}

	created, err := i.rl.db.Collection(kind.Collection).Create(ctx, record)
	if err != nil {
		return nil, err
	}
	if err := i.rl.afterWrite(ctx, kind, created); err != nil {
		return nil, err
	}
	return created, nil
}

// prepareImportedUser hashes a plain text password and fills in the signup defaults. Passwords that
// already are bcrypt hashes are stored as they are.
func prepareImportedUser(record types.Record) error {
	delete(record, auth.PasswordConfirmField)
	if email, ok := record["email"].(string); ok {
		record["email"] = strings.ToLower(email)
	}
	if _, ok := record[auth.RoleField]; !ok {
		record[auth.RoleField] = m.RoleUser
	}
	if _, ok := record[auth.ActiveField]; !ok {
		record[auth.ActiveField] = true
	}

	password, _ := record[auth.PasswordField].(string)
	if password == "" {
		return e.NewValidationError("Invalid input data. password is a required field")
	}
	if strings.HasPrefix(password, "$2a$") || strings.HasPrefix(password, "$2b$") {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return e.WrapInternalError("unable to hash password", err)
	}
	record[auth.PasswordField] = hash
	return nil
}
