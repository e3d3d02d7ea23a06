// Command gedshell is an interactive dot-path selector REPL over a decoded
// GEDCOM dataset (spec §6 "added CLI surface"), grounded on the
// ligneous-gedcom tool's interactive mode
// (cmd/gedcom/commands/interactive.go): a go-prompt REPL with a
// TTY-detection fallback to a plain bufio loop, reusing the same
// selector.Select every matched structure is run through.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cacack/ged7/dialect"
	"github.com/cacack/ged7/diag"
	"github.com/cacack/ged7/schema"
	"github.com/cacack/ged7/typed"
)

var (
	schemaPath string
	cfgName    string
)

var rootCmd = &cobra.Command{
	Use:   "gedshell [file.ged]",
	Short: "Interactively query a GEDCOM file with dot-path selectors",
	Long:  "gedshell decodes file.ged once, then opens a REPL where each line is a dot-path selector (spec §4.6) run against the decoded dataset.",
	Args:  cobra.ExactArgs(1),
	RunE:  runShell,
}

func init() {
	rootCmd.Flags().StringVar(&schemaPath, "schema", "", "path to the g7validation.json structure registry (required)")
	rootCmd.Flags().StringVar(&cfgName, "dialect", "7", "line grammar to decode under: \"7\" or \"5.5.1\"")
}

func runShell(cmd *cobra.Command, args []string) error {
	if schemaPath == "" {
		return fmt.Errorf("--schema is required")
	}

	schemaFile, err := os.Open(schemaPath)
	if err != nil {
		return fmt.Errorf("opening schema: %w", err)
	}
	sch, err := schema.Load(schemaFile)
	schemaFile.Close()
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening %s: %w", args[0], err)
	}
	defer f.Close()

	sink := diag.NewSink()
	lookup := schema.NewLookup(sch, sink)
	dataset, err := typed.DecodeWithLookup(f, shellDialect(), lookup, sink)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", args[0], err)
	}

	for _, d := range sink.All() {
		fmt.Fprintln(os.Stderr, d.String())
	}
	fmt.Printf("loaded %s: %d top-level structure(s), %d diagnostic(s)\n", args[0], len(dataset.TopLevel()), sink.Count())
	fmt.Println("enter a dot-path selector (e.g. .https://gedcom.io/terms/v7/record-INDI), or 'exit'")

	startREPL(dataset)
	return nil
}

func shellDialect() *dialect.Config {
	if cfgName == "5.5.1" {
		return dialect.GEDCOM55()
	}
	return dialect.GEDCOM7()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gedshell: "+err.Error())
		os.Exit(1)
	}
}
