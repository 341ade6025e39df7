package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/toolspace/internal/config"
	"github.com/nextlevelbuilder/toolspace/internal/runtime"
	"github.com/nextlevelbuilder/toolspace/internal/toolerr"
	"github.com/nextlevelbuilder/toolspace/pkg/protocol"
)

func execCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <document> -- <argv...>",
		Short: "Parse, validate, and run a single tool call against a document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()

			docPath := args[0]
			argv := args[1:]
			if len(argv) == 0 {
				return fmt.Errorf("no command given after the document path (use -- to separate it)")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			content, err := os.ReadFile(docPath)
			if err != nil {
				return fmt.Errorf("read document: %w", err)
			}

			rt := runtime.New(cfg)
			resp, err := rt.Execute(context.Background(), protocol.ActionRequest{
				Document: string(content),
				Tool:     argv[0],
				Args:     argv[1:],
			})
			if err != nil {
				return reportErr(err)
			}

			if resp.Stdout != "" {
				fmt.Fprint(os.Stdout, resp.Stdout)
			}
			if resp.Stderr != "" {
				fmt.Fprint(os.Stderr, resp.Stderr)
			}
			if resp.Truncated {
				fmt.Fprintln(os.Stderr, "[output truncated]")
			}
			os.Exit(resp.ExitCode)
			return nil
		},
	}
	return cmd
}

func loadConfig() (*config.RuntimeConfig, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, err
	}
	if contentRoot != "" {
		cfg.ContentRoot = contentRoot
	}
	return cfg, nil
}

func reportErr(err error) error {
	if te, ok := err.(*toolerr.Error); ok {
		fmt.Fprintf(os.Stderr, "%s: %s\n", te.Kind, te.Message)
		if te.Detail != "" {
			fmt.Fprintf(os.Stderr, "  %s\n", te.Detail)
		}
		return nil
	}
	return err
}
