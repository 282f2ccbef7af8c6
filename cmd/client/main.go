package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-trip-keeper/internal/adapter"
	"github.com/MKhiriev/go-trip-keeper/internal/config"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "trip-keeper",
	Short: "Sync client for the trip-keeper server",
	Long: `Push offline changes, pull server changes, acknowledge conflicts and
migrate a whole offline dataset to the trip-keeper sync server.

The server address, request timeout and bearer token come from the
ADAPTER_ADDRESS, ADAPTER_REQUEST_TIMEOUT and ADAPTER_TOKEN environment
variables or from the JSON file given with --config.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a JSON configuration file")
	rootCmd.AddCommand(pushCmd, pullCmd, resolveCmd, migrateCmd, versionCmd, buildInfoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newAdapter loads the client configuration and builds the server adapter.
func newAdapter() (adapter.SyncAdapter, error) {
	cfg, err := config.GetClientConfig(configPath)
	if err != nil {
		return nil, err
	}

	log := logger.Nop()
	if cfg.LogFile != "" {
		log = logger.NewFileLogger("trip-keeper-client", cfg.LogFile)
	}

	return adapter.NewHTTPSyncAdapter(cfg.Adapter, log)
}

var buildInfoCmd = &cobra.Command{
	Use:   "build-info",
	Short: "Print the client build information",
	Run: func(cmd *cobra.Command, args []string) {
		printBuildInfo(cmd)
	},
}

func printBuildInfo(cmd *cobra.Command) {
	info := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	fmt.Fprint(cmd.OutOrStdout(), info)
}
