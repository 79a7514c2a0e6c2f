package cymbalsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/api/option"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type minioConfig struct {
	endpoint  string
	accessKey string
	secretKey string
	useSSL    bool
}

type clientConfig struct {
	projectID   string
	location    string
	dataStoreID string
	appID       string

	bucket        string
	publicBaseURL string
	minio         *minioConfig
	googleOpts    []option.ClientOption

	recordDir        string
	keepLocalRecords bool
	waitTimeout      time.Duration
	pollInitial      time.Duration
	pollMax          time.Duration

	ledgerAddrs    []string
	ledgerPassword string
	ledgerTTL      time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithProject sets the Google Cloud project and Discovery Engine location ("global", "eu", ...).
func WithProject(projectID, location string) Option {
	return optionFunc(func(c *clientConfig) {
		c.projectID = projectID
		c.location = location
	})
}

// WithDataStore sets the data store that receives imported documents.
func WithDataStore(id string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dataStoreID = id
	})
}

// WithApp sets the search application (engine) queried by Query.
func WithApp(id string) Option {
	return optionFunc(func(c *clientConfig) {
		c.appID = id
	})
}

// WithBucket sets the Cloud Storage bucket for PDFs and descriptor records.
func WithBucket(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.bucket = name
	})
}

// WithPublicBaseURL overrides the host part of returned object URLs.
func WithPublicBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.publicBaseURL = url
	})
}

// WithMinIO stores objects in an S3-compatible endpoint instead of Cloud Storage.
// Intended for local development; imports still read gs:// URIs.
func WithMinIO(endpoint, accessKey, secretKey string, useSSL bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.minio = &minioConfig{
			endpoint:  endpoint,
			accessKey: accessKey,
			secretKey: secretKey,
			useSSL:    useSSL,
		}
	})
}

// WithGoogleClientOptions passes options (credentials, endpoints) to every Google client.
func WithGoogleClientOptions(opts ...option.ClientOption) Option {
	return optionFunc(func(c *clientConfig) {
		c.googleOpts = append(c.googleOpts, opts...)
	})
}

// WithRecordDir sets where descriptor records are written before upload.
// keep retains the files after upload.
func WithRecordDir(dir string, keep bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.recordDir = dir
		c.keepLocalRecords = keep
	})
}

// WithImportWait bounds how long Ingest and Import wait for the job and how
// often it is polled. Zero values keep the defaults (10m, 500ms, 10s).
func WithImportWait(timeout, pollInitial, pollMax time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.waitTimeout = timeout
		c.pollInitial = pollInitial
		c.pollMax = pollMax
	})
}

// WithRedisLedger records submitted operations in Redis so Operation can
// return their record name and source. Several addrs connect to a cluster.
// ttl of 0 keeps the default (72h).
func WithRedisLedger(addrs []string, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.ledgerAddrs = append([]string(nil), addrs...)
		c.ledgerPassword = password
		c.ledgerTTL = ttl
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
