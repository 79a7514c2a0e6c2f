package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/cymbalsearch/internal/config"
	cymbalsearch "github.com/kailas-cloud/cymbalsearch/pkg/sdk"
)

func TestSource(t *testing.T) {
	src, err := cymbalsearchSource("gs://b/a.json", "", "")
	require.NoError(t, err)
	assert.Equal(t, "gs://b/a.json", src.GCSURI)

	src, err = cymbalsearchSource("", "ds", "tbl")
	require.NoError(t, err)
	assert.Equal(t, "tbl", src.BigQueryTable)

	_, err = cymbalsearchSource("gs://b/a.json", "ds", "")
	assert.True(t, errors.Is(err, cymbalsearch.ErrConflictingSources))

	_, err = cymbalsearchSource("", "", "")
	assert.True(t, errors.Is(err, cymbalsearch.ErrMissingSource))
}

func TestSDKOptions(t *testing.T) {
	cfg := config.Config{
		Google:  config.GoogleConfig{ProjectID: "p", DataStoreID: "d", AppID: "a"},
		Storage: config.StorageConfig{Bucket: "b", Driver: config.DriverMinIO, MinIO: config.MinIOConfig{Endpoint: "localhost:9000"}},
		Ledger:  config.LedgerConfig{Addrs: []string{"redis-0:6379", "redis-1:6379"}},
	}
	cfg.ApplyDefaults()

	base := 8 // identifiers, storage, import and logger options
	assert.Len(t, sdkOptions(cfg), base+2)

	cfg.Storage.Driver = config.DriverGCS
	cfg.Ledger.Addrs = nil
	assert.Len(t, sdkOptions(cfg), base)
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	op := cymbalsearch.Operation{Name: "operations/1", State: cymbalsearch.StateRunning, SubmittedAt: time.Unix(0, 0).UTC()}

	require.NoError(t, printJSON(&buf, op))
	assert.Contains(t, buf.String(), `"name": "operations/1"`)
	assert.Contains(t, buf.String(), `"state": "running"`)
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "search", "import", "operation"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestSearchCommand_Flags(t *testing.T) {
	f := searchCmd.Flags()
	for name, want := range map[string]string{
		"page-size":           "10",
		"summary-results":     "3",
		"snippets":            "5",
		"extractive-answers":  "3",
		"extractive-segments": "3",
	} {
		fl := f.Lookup(name)
		require.NotNil(t, fl, "missing flag %s", name)
		assert.Equal(t, want, fl.DefValue, name)
	}
}
