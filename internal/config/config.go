package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverGCS   = "gcs"
	DriverMinIO = "minio"
)

// Config holds the cymbalsearch API configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Google  GoogleConfig  `yaml:"google"`
	Storage StorageConfig `yaml:"storage"`
	Import  ImportConfig  `yaml:"import"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port               int      `yaml:"port"`
	ReadTimeoutSec     int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec    int      `yaml:"write_timeout_sec"`
	ShutdownSec        int      `yaml:"shutdown_timeout_sec"`
	MaxUploadMB        int      `yaml:"max_upload_mb"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

// GoogleConfig identifies the Discovery Engine deployment.
type GoogleConfig struct {
	ProjectID   string `yaml:"project_id"`
	Location    string `yaml:"location"` // "global" or a region such as "eu"
	DataStoreID string `yaml:"datastore_id"`
	AppID       string `yaml:"app_id"`
}

// StorageConfig holds blob storage settings.
type StorageConfig struct {
	Driver        string      `yaml:"driver"` // gcs, minio (default: gcs)
	Bucket        string      `yaml:"bucket"`
	PublicBaseURL string      `yaml:"public_base_url"`
	MinIO         MinIOConfig `yaml:"minio"`
}

// MinIOConfig holds the S3-compatible endpoint used for local development.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// ImportConfig holds document import settings.
type ImportConfig struct {
	WaitTimeoutSec        int    `yaml:"wait_timeout_sec"`
	PollInitialIntervalMS int    `yaml:"poll_initial_interval_ms"`
	PollMaxIntervalSec    int    `yaml:"poll_max_interval_sec"`
	RecordDir             string `yaml:"record_dir"`
	KeepLocalRecords      bool   `yaml:"keep_local_records"`
}

// LedgerConfig holds the Redis connection of the import operation ledger.
// Empty Addrs disables the ledger.
type LedgerConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLHours         int      `yaml:"ttl_hours"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a ledger is configured.
func (l LedgerConfig) Enabled() bool { return len(l.Addrs) > 0 }

// TTL returns the ledger record lifetime.
func (l LedgerConfig) TTL() time.Duration { return time.Duration(l.TTLHours) * time.Hour }

// WaitTimeout returns the import wait deadline.
func (i ImportConfig) WaitTimeout() time.Duration {
	return time.Duration(i.WaitTimeoutSec) * time.Second
}

// PollInitialInterval returns the first poll delay.
func (i ImportConfig) PollInitialInterval() time.Duration {
	return time.Duration(i.PollInitialIntervalMS) * time.Millisecond
}

// PollMaxInterval returns the upper bound of the poll delay.
func (i ImportConfig) PollMaxInterval() time.Duration {
	return time.Duration(i.PollMaxIntervalSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, dev, docker, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes, expands ${VAR} placeholders, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
// List entries left empty by unset ${VAR} placeholders are dropped first.
func (c *Config) ApplyDefaults() {
	c.HTTP.CORSAllowedOrigins = compact(c.HTTP.CORSAllowedOrigins)
	c.Ledger.Addrs = compact(c.Ledger.Addrs)
	c.Auth.APIKeys = compact(c.Auth.APIKeys)

	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	// Synchronous imports hold the connection for up to import.wait_timeout_sec.
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 660
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxUploadMB <= 0 {
		c.HTTP.MaxUploadMB = 32
	}
	if len(c.HTTP.CORSAllowedOrigins) == 0 {
		c.HTTP.CORSAllowedOrigins = []string{"*"}
	}
	if c.Google.Location == "" {
		c.Google.Location = "global"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverGCS
	}
	if c.Import.WaitTimeoutSec <= 0 {
		c.Import.WaitTimeoutSec = 600
	}
	if c.Import.PollInitialIntervalMS <= 0 {
		c.Import.PollInitialIntervalMS = 500
	}
	if c.Import.PollMaxIntervalSec <= 0 {
		c.Import.PollMaxIntervalSec = 10
	}
	if c.Import.RecordDir == "" {
		c.Import.RecordDir = filepath.Join(os.TempDir(), "cymbalsearch-records")
	}
	if c.Ledger.TTLHours <= 0 {
		c.Ledger.TTLHours = 72
	}
	if c.Ledger.ReadinessTimeout <= 0 {
		c.Ledger.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Google.ProjectID == "" {
		return fmt.Errorf("google.project_id is required")
	}
	if c.Google.DataStoreID == "" {
		return fmt.Errorf("google.datastore_id is required")
	}
	if c.Google.AppID == "" {
		return fmt.Errorf("google.app_id is required")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	switch c.Storage.Driver {
	case DriverGCS:
	case DriverMinIO:
		if c.Storage.MinIO.Endpoint == "" {
			return fmt.Errorf("storage.minio.endpoint is required for the minio driver")
		}
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", DriverGCS, DriverMinIO, c.Storage.Driver)
	}
	if c.Import.PollInitialInterval() > c.Import.PollMaxInterval() {
		return fmt.Errorf(
			"import.poll_initial_interval_ms (%d) exceeds import.poll_max_interval_sec (%d)",
			c.Import.PollInitialIntervalMS, c.Import.PollMaxIntervalSec,
		)
	}
	// the 504 reply of a timed-out import must fit inside the write deadline
	if c.Import.WaitTimeoutSec >= c.HTTP.WriteTimeoutSec {
		return fmt.Errorf(
			"import.wait_timeout_sec (%d) must be below http.write_timeout_sec (%d)",
			c.Import.WaitTimeoutSec, c.HTTP.WriteTimeoutSec,
		)
	}
	return nil
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// relative to this source file, for tests run from package dirs
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
