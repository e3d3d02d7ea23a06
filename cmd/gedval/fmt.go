package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cacack/ged7/diag"
	"github.com/cacack/ged7/tagtree"
)

var fmtOutput string

var fmtCmd = &cobra.Command{
	Use:   "fmt [file.ged]",
	Short: "Canonicalize a GEDCOM file's line wrapping",
	Long:  "fmt parses file.ged at the tag layer and re-serializes it under --dialect's grammar, canonicalizing CONC/CONT line wrapping without touching the typed layer.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().StringVarP(&fmtOutput, "output", "o", "", "write to this file instead of stdout")
}

func runFmt(cmd *cobra.Command, args []string) error {
	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening %s: %w", args[0], err)
	}
	defer in.Close()

	sink := diag.NewSink()
	cfg := rootDialect()
	forest, err := tagtree.Parse(in, cfg, sink)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	out, err := tagtree.Serialize(forest, cfg)
	if err != nil {
		return fmt.Errorf("serializing %s: %w", args[0], err)
	}

	w := os.Stdout
	if fmtOutput != "" {
		f, err := os.Create(fmtOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", fmtOutput, err)
		}
		defer f.Close()
		w = f
	}
	if _, err := w.WriteString(out); err != nil {
		return err
	}

	for _, d := range sink.Warnings() {
		fmt.Fprintln(os.Stderr, d.String())
	}
	return nil
}
