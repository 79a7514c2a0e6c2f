// Package main is the cymbalsearch entry point: the HTTP server and a small CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/cymbalsearch/internal/config"
	"github.com/kailas-cloud/cymbalsearch/internal/version"
)

var envName string

var rootCmd = &cobra.Command{
	Use:   "cymbalsearch",
	Short: "Document search gateway for Vertex AI Search",
	Long: `cymbalsearch proxies document search, PDF upload and data store import
to Vertex AI Search (Discovery Engine) and Cloud Storage.

Configuration is read from config/{ENV}.yaml; ${VAR} placeholders are
expanded from the environment. A .env file in the working directory is
loaded first when present.`,
	Version:       version.Version + " (" + version.Commit + ")",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "config environment (default: $ENV or local)")
	rootCmd.AddCommand(serveCmd, searchCmd, importCmd, operationCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the environment name and loads its config file.
func loadConfig() (string, config.Config, error) {
	env := envName
	if env == "" {
		env = config.GetEnv()
	}
	cfg, err := config.Load(env)
	return env, cfg, err
}
