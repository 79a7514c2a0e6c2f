package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/cymbalsearch/internal/config"
	cymbalsearch "github.com/kailas-cloud/cymbalsearch/pkg/sdk"
)

var (
	searchFlags struct {
		pageSize       int
		summaryResults int
		snippets       int
		answers        int
		segments       int
		noCitations    bool
		noChunks       bool
	}
	importFlags struct {
		gcsURI    string
		bqDataset string
		bqTable   string
		async     bool
	}
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the configured app and print the result as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import documents into the data store from GCS or BigQuery",
	Long: `Imports documents with incremental reconciliation.

Exactly one source is required:
  --gcs-uri gs://bucket/record.json
  --bq-dataset DATASET --bq-table TABLE`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

var operationCmd = &cobra.Command{
	Use:   "operation <name>",
	Short: "Print the current state of an import operation",
	Args:  cobra.ExactArgs(1),
	RunE:  runOperation,
}

func init() {
	f := searchCmd.Flags()
	f.IntVar(&searchFlags.pageSize, "page-size", 10, "results per page")
	f.IntVar(&searchFlags.summaryResults, "summary-results", 3, "top results used for the summary")
	f.IntVar(&searchFlags.snippets, "snippets", 5, "max snippets per result")
	f.IntVar(&searchFlags.answers, "extractive-answers", 3, "max extractive answers per result")
	f.IntVar(&searchFlags.segments, "extractive-segments", 3, "max extractive segments per result")
	f.BoolVar(&searchFlags.noCitations, "no-citations", false, "omit citations from the summary")
	f.BoolVar(&searchFlags.noChunks, "no-semantic-chunks", false, "summarize without semantic chunks")

	f = importCmd.Flags()
	f.StringVar(&importFlags.gcsURI, "gcs-uri", "", "gs:// URI of the records to import")
	f.StringVar(&importFlags.bqDataset, "bq-dataset", "", "BigQuery dataset")
	f.StringVar(&importFlags.bqTable, "bq-table", "", "BigQuery table")
	f.BoolVar(&importFlags.async, "async", false, "return after submission instead of waiting")
	importCmd.MarkFlagsMutuallyExclusive("gcs-uri", "bq-dataset")
	importCmd.MarkFlagsMutuallyExclusive("gcs-uri", "bq-table")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	client, err := newSDKClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	res, err := client.Query(strings.Join(args, " ")).
		PageSize(searchFlags.pageSize).
		SummaryResults(searchFlags.summaryResults).
		Snippets(searchFlags.snippets).
		Citations(!searchFlags.noCitations).
		SemanticChunks(!searchFlags.noChunks).
		ExtractiveAnswers(searchFlags.answers).
		ExtractiveSegments(searchFlags.segments).
		Do(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func runImport(cmd *cobra.Command, _ []string) error {
	src, err := cymbalsearchSource(importFlags.gcsURI, importFlags.bqDataset, importFlags.bqTable)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	client, err := newSDKClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	var op cymbalsearch.Operation
	if importFlags.async {
		op, err = client.Submit(ctx, src)
	} else {
		op, err = client.Import(ctx, src)
	}
	if err != nil && !errors.Is(err, cymbalsearch.ErrImportTimeout) {
		return err
	}
	if perr := printJSON(cmd.OutOrStdout(), op); perr != nil {
		return perr
	}
	return err
}

func runOperation(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newSDKClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	op, err := client.Operation(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), op)
}

func cymbalsearchSource(gcsURI, dataset, table string) (cymbalsearch.Source, error) {
	switch {
	case gcsURI != "" && (dataset != "" || table != ""):
		return cymbalsearch.Source{}, cymbalsearch.ErrConflictingSources
	case gcsURI != "":
		return cymbalsearch.GCSSource(gcsURI)
	case dataset != "" || table != "":
		return cymbalsearch.BigQuerySource(dataset, table)
	default:
		return cymbalsearch.Source{}, cymbalsearch.ErrMissingSource
	}
}

// newSDKClient builds an in-process client from the same config file as serve.
func newSDKClient(ctx context.Context) (*cymbalsearch.Client, error) {
	_, cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return cymbalsearch.New(ctx, sdkOptions(cfg)...)
}

func sdkOptions(cfg config.Config) []cymbalsearch.Option {
	opts := []cymbalsearch.Option{
		cymbalsearch.WithProject(cfg.Google.ProjectID, cfg.Google.Location),
		cymbalsearch.WithDataStore(cfg.Google.DataStoreID),
		cymbalsearch.WithApp(cfg.Google.AppID),
		cymbalsearch.WithBucket(cfg.Storage.Bucket),
		cymbalsearch.WithPublicBaseURL(cfg.Storage.PublicBaseURL),
		cymbalsearch.WithRecordDir(cfg.Import.RecordDir, cfg.Import.KeepLocalRecords),
		cymbalsearch.WithImportWait(
			cfg.Import.WaitTimeout(), cfg.Import.PollInitialInterval(), cfg.Import.PollMaxInterval(),
		),
		cymbalsearch.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))),
	}
	if cfg.Storage.Driver == config.DriverMinIO {
		m := cfg.Storage.MinIO
		opts = append(opts, cymbalsearch.WithMinIO(m.Endpoint, m.AccessKey, m.SecretKey, m.UseSSL))
	}
	if cfg.Ledger.Enabled() {
		opts = append(opts, cymbalsearch.WithRedisLedger(cfg.Ledger.Addrs, cfg.Ledger.Password, cfg.Ledger.TTL()))
	}
	return opts
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
