package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X github.com/nextlevelbuilder/toolspace/cmd.Version=v1.0.0"
var Version = "dev"

var (
	cfgFile     string
	contentRoot string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "toolspace",
	Short: "toolspace — markdown-frontmatter tool execution runtime",
	Long:  "toolspace runs whitelisted tool calls authorized by a document's frontmatter, behind a path-containment and network-egress security gate.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: config.json5 or $TOOLSPACE_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&contentRoot, "content-root", "", "content root override (default: config value or .)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(execCmd())
	rootCmd.AddCommand(versionCmd())
}

func resolveConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if v := os.Getenv("TOOLSPACE_CONFIG"); v != "" {
		return v
	}
	return "config.json5"
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// Execute runs the root cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
