package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ukcompliance/complianceengine/internal/auditlog"
	"github.com/ukcompliance/complianceengine/internal/cache"
	"github.com/ukcompliance/complianceengine/internal/config"
	"github.com/ukcompliance/complianceengine/internal/engine"
	"github.com/ukcompliance/complianceengine/internal/logutil"
	"github.com/ukcompliance/complianceengine/internal/modules"
	"github.com/ukcompliance/complianceengine/internal/synthesis"
)

// Main is the process entry point. It parses flags, wires the engine,
// runs one validation (or synthesis) pass, prints the result, and exits
// with the code the outcome maps to.
func Main() {
	logger := newProcessLogger(logutil.InfoLevel)

	cfg, err := ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitCodeInvalidRequest)
	}
	if cfg.Verbose {
		logger = newProcessLogger(logutil.DebugLevel)
	}
	if cfg.Quiet {
		logger = newProcessLogger(logutil.ErrorLevel)
	}

	ctx := context.Background()
	exitCode, err := run(ctx, cfg, logger, os.Stdout)
	if err != nil {
		logger.ErrorContext(ctx, "run failed: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %s\n", friendlyMessage(err))
		os.Exit(exitCodeFromError(err))
	}
	os.Exit(exitCode)
}

// newProcessLogger builds the process-wide logger wrapped in secret
// sanitization: gate findings and error messages can echo fragments of
// the input document, and a document may itself quote something that
// looks like an API key or bearer token. Redacting before anything
// reaches stderr keeps that out of process logs regardless of source.
func newProcessLogger(level logutil.LogLevel) logutil.LoggerInterface {
	return logutil.WithSecretSanitization(logutil.NewLogger(level, os.Stderr, "complianceengine"))
}

// run performs the actual validation/synthesis invocation and writes its
// result to out. It is split from Main so tests can drive it without a
// process exit.
func run(ctx context.Context, cfg *RunConfig, logger logutil.LoggerInterface, out io.Writer) (int, error) {
	text, err := os.ReadFile(cfg.InputPath)
	if err != nil {
		return ExitCodeInputError, fmt.Errorf("reading input: %w", err)
	}

	emitter := auditlog.NewBufferedEmitter(os.Stderr, auditlog.DefaultBufferCapacity)
	defer emitter.Close()

	mgr := config.NewManager(logger, emitter)
	if err := mgr.Load(); err != nil {
		return ExitCodeGenericError, fmt.Errorf("loading config: %w", err)
	}
	settings := mgr.Settings()

	modulesReg, snippetsReg, err := modules.NewRegistries(logger)
	if err != nil {
		return ExitCodeGenericError, fmt.Errorf("wiring modules: %w", err)
	}

	activeModules := cfg.Modules
	if len(activeModules) == 0 {
		for _, id := range modules.IDs() {
			if settings.ModuleEnabled(id) {
				activeModules = append(activeModules, id)
			}
		}
	}

	store := cache.NewLocal(settings.CacheMaxEntries, settings.CacheMaxBytes)
	eng := engine.New(modulesReg, store, emitter, nil)
	eng.CacheTTL = settings.CacheTTL()
	eng.ChunkThreshold = settings.ChunkThresholdBytes
	eng.ChunkWorkers = settings.ChunkWorkers
	eng.OverallDeadline = settings.OverallDeadline()

	if cfg.Synthesize {
		synth := synthesis.New(eng, snippetsReg, emitter)
		synth.MaxIterations = settings.MaxIterations
		outcome := synth.Run(ctx, string(text), cfg.DocumentType, activeModules)
		return writeSynthesisOutcome(out, cfg, outcome)
	}

	result, err := eng.Validate(ctx, string(text), cfg.DocumentType, activeModules)
	if err != nil {
		return ExitCodeGenericError, fmt.Errorf("validating: %w", err)
	}
	return writeValidationResult(out, cfg, result)
}

func writeValidationResult(out io.Writer, cfg *RunConfig, result engine.ValidationResult) (int, error) {
	if cfg.JSONOutput {
		enc := json.NewEncoder(out)
		if err := enc.Encode(result); err != nil {
			return ExitCodeGenericError, err
		}
	} else if !cfg.Quiet {
		fmt.Fprintf(out, "risk: %s  findings: %d  elapsed: %dms  cache_hit: %t\n",
			result.OverallRisk, len(result.Findings), result.ElapsedMs, result.CacheHit)
		for _, f := range result.Findings {
			fmt.Fprintf(out, "  [%s] %s/%s: %s\n", f.Status, f.ModuleID, f.GateID, f.Message)
		}
	}
	if result.OverallRisk == engine.RiskCritical || result.OverallRisk == engine.RiskHigh {
		return ExitCodeHighRisk, nil
	}
	return ExitCodeSuccess, nil
}

func writeSynthesisOutcome(out io.Writer, cfg *RunConfig, outcome synthesis.Outcome) (int, error) {
	if cfg.JSONOutput {
		enc := json.NewEncoder(out)
		if err := enc.Encode(outcome); err != nil {
			return ExitCodeGenericError, err
		}
	} else if !cfg.Quiet {
		fmt.Fprintf(out, "synthesis %s after %d iteration(s): %s\n", outcomeLabel(outcome.Success), outcome.Iterations, outcome.Reason)
		fmt.Fprintln(out, "--- corrected text ---")
		fmt.Fprintln(out, outcome.Text)
	}
	if !outcome.Success {
		return ExitCodeHighRisk, nil
	}
	return ExitCodeSuccess, nil
}

func outcomeLabel(success bool) string {
	if success {
		return "converged"
	}
	return "did not converge"
}
