// Command fiberctl renders tree files through the fiber scheduler and serves
// the live inspector.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fiber/internal/config"
	ferrors "github.com/vango-dev/fiber/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	logLevel   string
	noColor    bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		ferrors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "fiberctl",
		Short: "Render trees with the incremental fiber reconciler",
		Long: `fiberctl drives the fiber reconciler from the command line.

Trees are described in YAML (or JSON) tree files. Render them one after
another to see the host mutations each commit makes, or serve the
inspector to post trees over HTTP and watch commits live.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.noColor {
				ferrors.DisableColors()
			}
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file (default: nearest fiber.yaml)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored error output")

	rootCmd.AddCommand(
		renderCmd(g),
		serveCmd(g),
		configCmd(g),
		versionCmd(),
	)
	return rootCmd
}

// load resolves the configuration and applies flag overrides.
func (g *globals) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// logger builds the command logger. Logs go to stderr so they never mix
// with command output.
func logger(cfg *config.Config, stderr io.Writer) *slog.Logger {
	return cfg.Log.NewLogger(stderr)
}

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, version)
				return
			}
			fmt.Fprintf(out, "fiberctl %s (commit %s, built %s)\n", version, commit, date)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")

	return cmd
}

func configCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
