package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/natours/natours-api/endpoint"
	restEndpointV1 "github.com/natours/natours-api/rest/endpoint/v1"
	"github.com/natours/natours-api/types"
)

var (
	importDelete bool
	importFiles  = map[string]*string{
		restEndpointV1.ToursCollection:   new(string),
		restEndpointV1.UsersCollection:   new(string),
		restEndpointV1.ReviewsCollection: new(string),
	}
)

var importCmd = &cobra.Command{
	Use:   "import [--tours FILE] [--users FILE] [--reviews FILE] [--delete]",
	Short: "Load records from JSON files into the store",
	Long: "Load records from JSON files into the store. Tours and reviews are validated and cast like " +
		"created records, plain text user passwords are hashed and review ratings update their tours.",
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		natoursEndpoint := createEndpoint()
		defer func() {
			_ = natoursEndpoint.Close(context.Background())
		}()

		files := make(map[string]string)
		for collection, file := range importFiles {
			if *file != "" {
				files[collection] = *file
			}
		}

		counts, err := importData(context.Background(), natoursEndpoint, files, importDelete)
		if err != nil {
			logger.Fatal("unable to import data", "error", err)
		}
		for collection, count := range counts {
			logger.Info("data loaded", "collection", collection, "records", count)
		}
	},
}

func init() {
	flags := importCmd.Flags()
	flags.StringVar(importFiles[restEndpointV1.ToursCollection], "tours", "", "JSON file holding an array of tours")
	flags.StringVar(importFiles[restEndpointV1.UsersCollection], "users", "", "JSON file holding an array of users")
	flags.StringVar(importFiles[restEndpointV1.ReviewsCollection], "reviews", "", "JSON file holding an array of reviews")
	flags.BoolVar(&importDelete, "delete", false, "delete the existing records of each imported collection first")
}

// importData creates the records of each file in its collection and returns the number created per
// collection. Tours are loaded before users and reviews. Records keep the identifiers they carry so
// references between files stay valid.
func importData(
	ctx context.Context, natoursEndpoint *endpoint.NatoursEndpoint, files map[string]string, deleteFirst bool,
) (map[string]int, error) {
	records := make(map[string][]types.Record, len(files))
	for collection, file := range files {
		data, err := readRecords(file)
		if err != nil {
			return nil, err
		}
		records[collection] = data
	}

	importer := natoursEndpoint.Importer()
	counts := make(map[string]int, len(records))
	for _, collection := range restEndpointV1.ImportCollections {
		data, ok := records[collection]
		if !ok {
			continue
		}
		if deleteFirst {
			if err := natoursEndpoint.Db().Collection(collection).DeleteAll(ctx); err != nil {
				return nil, fmt.Errorf("unable to delete %s: %w", collection, err)
			}
		}
		for i, record := range data {
			if _, err := importer.Import(ctx, collection, record); err != nil {
				return counts, fmt.Errorf("unable to import record %d of %s: %w", i, collection, err)
			}
			counts[collection]++
		}
	}
	return counts, nil
}

func readRecords(file string) ([]types.Record, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var records []types.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", file, err)
	}
	return records, nil
}
