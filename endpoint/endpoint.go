package endpoint

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/natours/natours-api/config"
	"github.com/natours/natours-api/db"
	"github.com/natours/natours-api/log"
	"github.com/natours/natours-api/rest"
	restEndpointV1 "github.com/natours/natours-api/rest/endpoint/v1"
	"github.com/natours/natours-api/types"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	DefaultJWTExpiresIn    = 90 * 24 * time.Hour
	DefaultCookieExpiresIn = 90 * 24 * time.Hour
)

type NatoursEndpointConfig struct {
	env          string
	store        string
	mongoURI     string
	database     string
	auth         config.AuthConfig
	naming       config.NamingConvention
	supportedOps config.Operations
	logger       log.Logger
}

func (cfg NatoursEndpointConfig) Environment() string {
	return cfg.env
}

func (cfg NatoursEndpointConfig) Naming() config.NamingConvention {
	return cfg.naming
}

func (cfg NatoursEndpointConfig) SupportedOperations() config.Operations {
	return cfg.supportedOps
}

func (cfg NatoursEndpointConfig) Auth() config.AuthConfig {
	return cfg.auth
}

func (cfg NatoursEndpointConfig) Logger() log.Logger {
	return cfg.logger
}

func (cfg *NatoursEndpointConfig) WithEnvironment(env string) *NatoursEndpointConfig {
	cfg.env = env
	return cfg
}

func (cfg *NatoursEndpointConfig) WithStore(store string) *NatoursEndpointConfig {
	cfg.store = store
	return cfg
}

func (cfg *NatoursEndpointConfig) WithMongo(uri string, database string) *NatoursEndpointConfig {
	cfg.mongoURI = uri
	cfg.database = database
	return cfg
}

func (cfg *NatoursEndpointConfig) WithJWTSecret(secret string) *NatoursEndpointConfig {
	cfg.auth.JWTSecret = secret
	return cfg
}

func (cfg *NatoursEndpointConfig) WithJWTExpiresIn(expiresIn time.Duration) *NatoursEndpointConfig {
	cfg.auth.JWTExpiresIn = expiresIn
	return cfg
}

func (cfg *NatoursEndpointConfig) WithCookieExpiresIn(expiresIn time.Duration) *NatoursEndpointConfig {
	cfg.auth.CookieExpiresIn = expiresIn
	return cfg
}

func (cfg *NatoursEndpointConfig) WithNaming(naming config.NamingConvention) *NatoursEndpointConfig {
	cfg.naming = naming
	return cfg
}

func (cfg *NatoursEndpointConfig) WithSupportedOperations(supportedOps config.Operations) *NatoursEndpointConfig {
	cfg.supportedOps = supportedOps
	return cfg
}

// NewEndpoint connects to the configured store
func (cfg NatoursEndpointConfig) NewEndpoint(ctx context.Context) (*NatoursEndpoint, error) {
	if cfg.auth.JWTSecret == "" {
		return nil, fmt.Errorf("a jwt secret is required")
	}

	var dbClient *db.Db
	switch cfg.store {
	case StoreMemory:
		dbClient = db.NewMemoryDb()
	case StoreMongo:
		var err error
		dbClient, err = db.NewMongoDb(ctx, cfg.mongoURI, cfg.database)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported store %q", cfg.store)
	}

	return cfg.newEndpointWithDb(ctx, dbClient)
}

func (cfg NatoursEndpointConfig) newEndpointWithDb(ctx context.Context, dbClient *db.Db) (*NatoursEndpoint, error) {
	if err := dbClient.EnsureUnique(ctx, restEndpointV1.UsersCollection, "email"); err != nil {
		return nil, fmt.Errorf("unable to create user index: %w", err)
	}
	if err := dbClient.EnsureUnique(ctx, restEndpointV1.ToursCollection, "name"); err != nil {
		return nil, fmt.Errorf("unable to create tour index: %w", err)
	}
	return &NatoursEndpoint{
		dbClient: dbClient,
		config:   cfg,
	}, nil
}

type NatoursEndpoint struct {
	dbClient *db.Db
	config   NatoursEndpointConfig
}

func NewEndpointConfig() (*NatoursEndpointConfig, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return NewEndpointConfigWithLogger(log.NewZapLogger(logger)), nil
}

func NewEndpointConfigWithLogger(logger log.Logger) *NatoursEndpointConfig {
	return &NatoursEndpointConfig{
		env:   config.Production,
		store: StoreMongo,
		auth: config.AuthConfig{
			JWTExpiresIn:    DefaultJWTExpiresIn,
			CookieExpiresIn: DefaultCookieExpiresIn,
		},
		naming:       config.NewDefaultNaming(),
		supportedOps: config.AllOperations,
		logger:       logger,
	}
}

// Db exposes the store, e.g. for importing data
func (e *NatoursEndpoint) Db() *db.Db {
	return e.dbClient
}

// Importer creates records with the validation and defaults of the create handlers
func (e *NatoursEndpoint) Importer() *restEndpointV1.Importer {
	return restEndpointV1.NewImporter(e.config, e.dbClient)
}

// RoutesREST returns the routes of the REST API mounted under prefix
func (e *NatoursEndpoint) RoutesREST(prefix string) []types.Route {
	return restEndpointV1.Routes(prefix, e.config.supportedOps, e.config, e.dbClient)
}

// Handler serves the REST API under prefix, including the not found response and panic recovery
func (e *NatoursEndpoint) Handler(prefix string, configure func(*httprouter.Router)) http.Handler {
	router := rest.ApiRouter(e.RoutesREST(prefix), restEndpointV1.NotFoundHandler(e.config), configure)
	return restEndpointV1.NewRecoveryHandler(router, e.config)
}

func (e *NatoursEndpoint) Close(ctx context.Context) error {
	return e.dbClient.Close(ctx)
}
