// Package cli provides the command-line interface for the compliance
// engine: flag parsing, run wiring, and error-to-exit-code mapping.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// moduleListFlag collects a repeatable --module flag into an ordered
// slice, the same way a repeatable path or model flag is handled.
type moduleListFlag []string

func (m *moduleListFlag) String() string { return strings.Join(*m, ",") }
func (m *moduleListFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

// RunConfig holds the parsed command-line invocation.
type RunConfig struct {
	InputPath    string
	DocumentType string
	Modules      []string
	Synthesize   bool
	Quiet        bool
	Verbose      bool
	JSONOutput   bool
	ConfigDir    string
}

// ParseFlags parses args (excluding the program name) into a RunConfig.
// errOut receives flag-package usage text on parse failure.
func ParseFlags(args []string, errOut io.Writer) (*RunConfig, error) {
	fs := flag.NewFlagSet("complianceengine", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var modules moduleListFlag
	cfg := &RunConfig{}

	fs.StringVar(&cfg.InputPath, "input", "", "path to the document to validate (required)")
	fs.StringVar(&cfg.DocumentType, "document-type", "", "document type, e.g. employment_contract, privacy_notice (required)")
	fs.Var(&modules, "module", "module ID to run; may be repeated. Defaults to every enabled module.")
	fs.BoolVar(&cfg.Synthesize, "synthesize", false, "run the corrective retry loop instead of a single validation pass")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "suppress non-error output")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "enable debug-level logging")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "emit the result as JSON instead of a human-readable summary")
	fs.StringVar(&cfg.ConfigDir, "config-dir", "", "override the XDG config directory search path")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Modules = modules

	if cfg.Quiet && cfg.Verbose {
		return nil, fmt.Errorf("conflicting flags: --quiet and --verbose are mutually exclusive")
	}
	if cfg.InputPath == "" {
		return nil, fmt.Errorf("missing required --input flag")
	}
	if cfg.DocumentType == "" {
		return nil, fmt.Errorf("missing required --document-type flag")
	}

	return cfg, nil
}
