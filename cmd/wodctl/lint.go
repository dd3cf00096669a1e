package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/antigravity-dev/wodcore/internal/wodcore"
)

func lintCmd(args []string) error {
	fs := flag.NewFlagSet("lint", flag.ExitOnError)
	scriptPath := fs.String("script", "", "path to a workout DSL script (required)")
	fs.Parse(args)

	if *scriptPath == "" {
		return fmt.Errorf("lint: -script is required")
	}
	source, err := os.ReadFile(*scriptPath)
	if err != nil {
		return fmt.Errorf("lint: reading script: %w", err)
	}

	diags := wodcore.Diagnostics(string(source))
	if len(diags) == 0 {
		fmt.Fprintln(os.Stdout, "ok: no diagnostics")
		return nil
	}

	for _, d := range diags {
		fmt.Fprintf(os.Stdout, "%s:%d:%d: %s\n", *scriptPath, d.Line, d.Column, d.Message)
	}
	return fmt.Errorf("lint: %d diagnostic(s)", len(diags))
}
