package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jamesainslie/tapir/pkg/tapir/config"
	"github.com/jamesainslie/tapir/pkg/tapir/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "tapir",
		Short: "Compute and verify SHA-256 checksum manifests",
		Long: `Tapir captures the checksums of files or directory trees in a manifest
and later verifies the filesystem against it, reporting unchanged,
modified, missing, and added files.

The manifest format is one record per line, "<digest>  <path>", compatible
with sha256sum-style checksum tooling.

Examples:
  tapir compute ./data                      # Print a manifest for a tree
  tapir compute --out sums.tapir a.txt b.txt  # Write a manifest for two files
  tapir verify sums.tapir                   # Verify against the manifest
  tapir verify --scan-root ./data sums.tapir  # Also detect added files
  tapir config show                         # Show configuration`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initLogging()
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/tapir/config.yaml)")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "hashing worker count (0=one per CPU)")
	rootCmd.PersistentFlags().String("chunk-size", "", "hash read buffer size (e.g., 256K, 1MiB)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "report format: pretty, plain, json, yaml")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	// Bind flags to viper
	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("chunk_size", rootCmd.PersistentFlags().Lookup("chunk-size"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
	}

	// Set environment variable prefix and enable auto env binding
	viper.SetEnvPrefix("TAPIR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// initLogging applies the effective log level. The verbose and quiet
// flags override the configured level.
func initLogging() error {
	level := viper.GetString("logging.level")
	if level == "" {
		level = config.DefaultLogLevel
	}
	if getVerbose() {
		level = "debug"
	} else if getQuiet() {
		level = "error"
	}

	return logging.Init(logging.Config{
		Level:      level,
		Components: viper.GetStringMapString("logging.components"),
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a message to stderr if quiet mode is not enabled.
// Stderr keeps stdout clean for manifest data.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
