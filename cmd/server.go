package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	log2 "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/natours/natours-api/config"
	"github.com/natours/natours-api/endpoint"
	"github.com/natours/natours-api/log"
)

const defaultRESTPath = "/api/v1"

// Environment variables prefixed with "NATOURS_" can override settings e.g. "NATOURS_JWT_SECRET"
const envVarPrefix = "natours"

var cfgFile string
var envFile string
var logger log.Logger

var serverCmd = &cobra.Command{
	Use:   os.Args[0] + " [--store mongo|memory] [OPTIONS]",
	Short: "REST API for tours, users, reviews and bookings",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		natoursEndpoint := createEndpoint()
		defer func() {
			_ = natoursEndpoint.Close(context.Background())
		}()

		handler := natoursEndpoint.Handler(viper.GetString("rest-path"), configureRouter)
		listenAndServe(handler, viper.GetInt("port"))
	},
}

// Execute starts the REST endpoint
func Execute() {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log2.Fatalf("unable to initialize logger: %v", err)
	}

	logger = log.NewZapLogger(zapLogger)

	flags := serverCmd.PersistentFlags()

	// General endpoint flags
	flags.StringVarP(&cfgFile, "config", "c", "", "config file")
	flags.StringVar(&envFile, "env-file", "config.env", "file of environment variables loaded on start, ignored when missing")
	flags.StringP("env", "e", config.Production, "environment the server runs in: development or production")
	flags.Int("port", 3000, "REST endpoint port")
	flags.String("rest-path", defaultRESTPath, "REST endpoint path")
	flags.String("store", endpoint.StoreMongo, "record store: mongo or memory")
	flags.String("mongo-uri", "mongodb://localhost:27017", "connection string of the document database")
	flags.String("database", "natours", "name of the document database")
	flags.String("jwt-secret", "", "secret used to sign tokens")
	flags.Duration("jwt-expires-in", endpoint.DefaultJWTExpiresIn, "lifetime of issued tokens")
	flags.Duration("jwt-cookie-expires-in", endpoint.DefaultCookieExpiresIn, "lifetime of the token cookie")
	flags.Bool("request-logging", false, "enable request logging")
	flags.StringSlice("operations", config.OperationNames,
		"list of supported generic resource operations. options: Create,Read,List,Update,Delete")
	flags.String("access-control-allow-origin", "", "Access-Control-Allow-Origin header value")

	flags.VisitAll(func(flag *pflag.Flag) {
		if flag.Name != "config" && flag.Name != "env-file" {
			_ = viper.BindPFlag(flag.Name, flags.Lookup(flag.Name))
		}
	})

	serverCmd.AddCommand(importCmd)

	cobra.OnInitialize(initialize)

	viper.SetEnvPrefix(envVarPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := serverCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func createEndpoint() *endpoint.NatoursEndpoint {
	supportedOps := getStringSlice("operations")
	ops, err := config.Ops(supportedOps...)
	if err != nil {
		logger.Fatal("invalid supported operation", "operations", supportedOps, "error", err)
	}

	cfg := endpoint.NewEndpointConfigWithLogger(logger).
		WithEnvironment(viper.GetString("env")).
		WithStore(viper.GetString("store")).
		WithMongo(viper.GetString("mongo-uri"), viper.GetString("database")).
		WithJWTSecret(viper.GetString("jwt-secret")).
		WithJWTExpiresIn(positiveDuration("jwt-expires-in", endpoint.DefaultJWTExpiresIn)).
		WithCookieExpiresIn(positiveDuration("jwt-cookie-expires-in", endpoint.DefaultCookieExpiresIn)).
		WithSupportedOperations(ops)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	natoursEndpoint, err := cfg.NewEndpoint(ctx)
	if err != nil {
		logger.Fatal("unable create new endpoint",
			"store", viper.GetString("store"),
			"error", err)
	}

	return natoursEndpoint
}

func positiveDuration(key string, defaultValue time.Duration) time.Duration {
	if value := viper.GetDuration(key); value > 0 {
		return value
	}
	return defaultValue
}

func maybeAddRequestLogging(handler http.Handler) http.Handler {
	if viper.GetBool("request-logging") {
		handler = log.NewLoggingHandler(handler, logger)
	}
	return handler
}

func maybeAddCORS(handler http.Handler) http.Handler {
	if value := viper.GetString("access-control-allow-origin"); value != "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", value)
			handler.ServeHTTP(w, r)
		})
	}
	return handler
}

func initialize() {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		logger.Fatal("unable to load environment file",
			"file", envFile,
			"error", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err == nil {
			logger.Info("using config file",
				"file", viper.ConfigFileUsed())
		}
	}

	envLogger, err := log.NewZapLoggerForEnv(viper.GetString("env"))
	if err != nil {
		logger.Fatal("unable to initialize logger", "error", err)
	}
	logger = envLogger
}

func configureRouter(router *httprouter.Router) {
	if value := viper.GetString("access-control-allow-origin"); value != "" {
		router.GlobalOPTIONS = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Access-Control-Request-Method") != "" {
				header := w.Header()
				header.Set("Access-Control-Allow-Methods", r.Header.Get("Access-Control-Request-Method"))
				header.Set("Access-Control-Allow-Headers", r.Header.Get("Access-Control-Request-Headers"))
				header.Set("Access-Control-Allow-Origin", value)
			}

			w.WriteHeader(http.StatusNoContent)
		})
	}
}

func listenAndServe(handler http.Handler, port int) {
	logger.Info("server listening",
		"port", port,
		"env", viper.GetString("env"),
		"store", viper.GetString("store"))
	handler = maybeAddCORS(maybeAddRequestLogging(handler))
	err := http.ListenAndServe(fmt.Sprintf(":%d", port), handler)
	if err != nil {
		logger.Fatal("unable to start server",
			"port", port,
			"error", err)
	}
}

func getStringSlice(key string) []string {
	value := viper.GetStringSlice(key)
	slice, err := toStringSlice(value)
	if err != nil {
		logger.Fatal("invalid string slice value for setting",
			"error", err,
			"key", key,
			"value", value)
	}
	return slice
}

func toStringSlice(slice []string) ([]string, error) {
	result := make([]string, 0)
	for _, entry := range slice {
		stringReader := strings.NewReader(entry)
		csvReader := csv.NewReader(stringReader)
		split, err := csvReader.Read()
		if err != nil {
			return nil, err
		}
		for _, part := range split {
			part = strings.TrimSpace(part)
			if part != "" { // Don't add empty values
				result = append(result, part)
			}
		}
	}
	return result, nil
}
