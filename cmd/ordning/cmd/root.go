package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/KUKARAF/ordning/internal/barcode"
	"github.com/KUKARAF/ordning/internal/config"
	"github.com/KUKARAF/ordning/internal/pipeline"
	"github.com/KUKARAF/ordning/internal/source"
	"github.com/KUKARAF/ordning/internal/store"
	"github.com/KUKARAF/ordning/internal/version"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ordning",
	Short: "Travel ticket ingestion and organization",
	Long: `Extracts travel data from ticket PDFs and keeps them organized.

Tickets are fingerprinted, parsed for travel details (passenger, route,
times, seat), scanned for barcodes, and stored in a local database.
Duplicate uploads are detected and skipped.

Examples:
  ordning ingest ticket.pdf
  ordning list --mode train
  ordning serve --port 8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, _ := cmd.PersistentFlags().GetBool("version")
		if v {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ordning version %s\n", version.Version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", version.GitCommit)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Date: %s\n", version.BuildDate)
			return nil
		}
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
// This allows tests to execute commands without calling os.Exit().
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags that apply to all commands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/ordning, /etc/ordning)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("db", "", "ticket database path (default ordning.db)")

	// Version flag for tests and usability
	rootCmd.PersistentFlags().Bool("version", false, "print version information and exit")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if globalConfig == nil {
			initConfig()
		}

		var logLevel slog.Level
		if globalConfig.Verbose {
			logLevel = slog.LevelDebug
		} else {
			switch globalConfig.LogLevel {
			case "debug":
				logLevel = slog.LevelDebug
			case "warn":
				logLevel = slog.LevelWarn
			case "error":
				logLevel = slog.LevelError
			default:
				logLevel = slog.LevelInfo
			}
		}

		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configLoader = config.NewLoader()

	var err error
	if cfgFile != "" {
		globalConfig, err = configLoader.LoadWithFile(cfgFile)
	} else {
		globalConfig, err = configLoader.Load()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}

// GetConfig returns the global configuration.
func GetConfig() *config.Config {
	if globalConfig == nil {
		initConfig()
	}
	return globalConfig
}

// databasePath resolves the database path, letting the --db flag win over
// the configuration file.
func databasePath(cmd *cobra.Command) string {
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		return db
	}
	return GetConfig().Database.Path
}

// openService opens the ticket store and wires the ingestion service around
// it. The caller must invoke the returned close function.
func openService(cmd *cobra.Command) (*pipeline.Service, func(), error) {
	st, err := openStore(cmd)
	if err != nil {
		return nil, nil, err
	}

	cfg := GetConfig()
	scanner := barcode.NewScannerWith(cfg.Scanner.TryHarder, cfg.Scanner.MinWidth)
	processor := pipeline.NewProcessorWithScanner(source.FileResolver{}, scanner)

	svc := pipeline.NewService(processor, st)
	return svc, func() { _ = st.Close() }, nil
}

// openStore opens only the ticket store, for commands that do not run the
// extraction pipeline.
func openStore(cmd *cobra.Command) (*store.SQLiteStore, error) {
	st, err := store.OpenSQLite(databasePath(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to open ticket database: %w", err)
	}
	return st, nil
}
