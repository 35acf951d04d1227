// Package cmd implements the griffon command line
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/ortelius/griffon/config"
	"github.com/ortelius/griffon/model"
	"github.com/ortelius/griffon/output"
	"github.com/ortelius/griffon/util"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	format     string
	outputFile string
	logLevel   string
	timeout    time.Duration
	verbose    bool
	noProgress bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "griffon",
	Short: "Answer cross-service questions about components, products and CVEs",
	Long: `A CLI tool that combines the component registry and the incident database.
It finds the CVEs affecting a component, the components named by a CVE,
the products shipping a component and the components containing it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", util.GetEnvDefault("GRIFFON_CONFIG", ""), "Config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml, table)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Write results to file (optional)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Abort the query after this long (0 waits indefinitely)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "Do not show a progress spinner")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints a failed command's error. Lookups that found nothing already say so in the
// wrapped message, anything else gets an error prefix.
func reportError(w io.Writer, err error) {
	if errors.Is(err, model.ErrNotFound) {
		fmt.Fprintln(w, err)
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

// loadConfig reads the config file and environment, then applies any flags given explicitly
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = format
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

// commandContext cancels on interrupt and, when set, after the configured timeout
func commandContext(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	if d <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	return ctx, func() {
		cancel()
		stop()
	}
}

// writeResult renders v to the output file, or to the command's stdout
func writeResult(cmd *cobra.Command, cfg *config.Config, v any) error {
	var w io.Writer = cmd.OutOrStdout()
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := output.Render(w, cfg.Format, v); err != nil {
		return err
	}
	if outputFile != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Results written to: %s\n", outputFile)
	}
	return nil
}
