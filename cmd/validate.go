package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/toolspace/internal/frontmatter"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <document>",
		Short: "Parse a document's frontmatter and report compiled tool specs without executing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()

			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read document: %w", err)
			}

			fm, bodyOffset, err := frontmatter.Parse(content)
			if err != nil {
				return reportErr(err)
			}

			fmt.Printf("body starts at byte %d\n", bodyOffset)
			fmt.Printf("tool specs (%d compiled, %d warnings):\n", len(fm.CompiledSpecs), len(fm.CompileWarnings))
			for _, spec := range fm.CompiledSpecs {
				fmt.Printf("  - %s\n", spec.Raw)
			}
			for _, w := range fm.CompileWarnings {
				fmt.Printf("  ! %s\n", w)
			}
			if len(fm.AdditionalRoots) > 0 {
				fmt.Printf("additional roots: %v\n", fm.AdditionalRoots)
			}
			if len(fm.Env) > 0 {
				fmt.Printf("env overlay keys: %d\n", len(fm.Env))
			}
			return nil
		},
	}
}
