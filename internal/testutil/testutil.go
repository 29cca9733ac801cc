package testutil

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/natours/natours-api/db"
	"github.com/natours/natours-api/log"
	"github.com/natours/natours-api/types"
)

func PanicIfError(err error) {
	if err != nil {
		panic(err)
	}
}

func TestLogger() log.Logger {
	if strings.ToUpper(os.Getenv("TEST_TRACE")) == "ON" {
		logger, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		return log.NewZapLogger(logger)
	}

	return log.NewZapLogger(zap.NewNop())
}

// Seed inserts records into a collection and returns them as stored, in the same order
func Seed(collection db.Collection, records ...types.Record) []types.Record {
	created := make([]types.Record, 0, len(records))
	for _, record := range records {
		stored, err := collection.Create(context.Background(), record)
		PanicIfError(err)
		created = append(created, stored)
	}
	return created
}
