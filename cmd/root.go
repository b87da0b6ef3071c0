package cmd

import (
	"fmt"
	"io"
	"os"

	"modelcfg/config"
	"modelcfg/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information
var (
	version string
	commit  string
	date    string
)

// SetVersionInfo sets the version information
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

var (
	cfgFile   string
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "modelcfg",
	Short: "Chat and embedding model configuration",
	Long: `modelcfg owns the chat and embedding model configuration of an LLM application.

It serves the configuration over HTTP, edits it in a terminal settings editor
and invokes the configured models.`,
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func init() {
	cobra.OnInitialize(initRuntime)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/modelcfg/modelcfg.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().String("backend-url", "", "configuration backend URL")

	viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag(config.KeyLogFile, rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag(config.KeyBackendURL, rootCmd.PersistentFlags().Lookup("backend-url"))
}

// initRuntime loads the runtime configuration and sets up logging
func initRuntime() {
	if err := config.InitRuntime(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	closer, err := logging.Init(viper.GetString(config.KeyLogLevel), viper.GetString(config.KeyLogFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logCloser = closer
}

// Execute executes the root command
func Execute() error {
	rootCmd.Version = version

	rootCmd.SetVersionTemplate(`modelcfg {{.Version}}
Commit: ` + commit + `
Date: ` + date + `
`)

	return rootCmd.Execute()
}
