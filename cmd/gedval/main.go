// Command gedval validates and reformats GEDCOM files against a structure
// registry (spec §6 "added CLI surface"), following the shape of the
// ligneous-gedcom tool's cobra root command
// (cmd/gedcom/main.go) adapted to ged7's two-stage decode.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cacack/ged7/dialect"
)

var (
	schemaPath  string
	noColor     bool
	verbose     bool
	dialectName string
)

var rootCmd = &cobra.Command{
	Use:   "gedval",
	Short: "Validate and reformat GEDCOM files",
	Long:  "gedval decodes a GEDCOM file against a structure registry, reports diagnostics, and can canonicalize a file's line wrapping.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "path to the g7validation.json structure registry (required)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colorized diagnostic output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each resolved (container, tag) -> URI")
	rootCmd.PersistentFlags().StringVar(&dialectName, "dialect", "7", "line grammar to parse/serialize under: \"7\" or \"5.5.1\"")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fmtCmd)
}

// rootDialect resolves the --dialect flag to a *dialect.Config.
func rootDialect() *dialect.Config {
	if dialectName == "5.5.1" {
		return dialect.GEDCOM55()
	}
	return dialect.GEDCOM7()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("gedval: %v", err))
		os.Exit(1)
	}
}
