package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/stater/internal/manifest"
	"github.com/aretw0/stater/internal/validator"
	"github.com/muesli/termenv"
)

// ErrCheckFailed is returned when routes compile but a case fails.
var ErrCheckFailed = errors.New("check failed")

// RunCheck compiles the manifest at path, runs its cases and reports to w.
// Compilation errors, ambiguities included, are returned as is.
// Suspicious state flows are printed as warnings and do not fail the check.
func RunCheck(ctx context.Context, w io.Writer, path string, profile termenv.Profile, logger *slog.Logger) error {
	m, err := manifest.Load(path)
	if err != nil {
		return err
	}

	results, err := m.RunCases(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	pass := profile.String("PASS").Foreground(profile.Color("#22c55e")).Bold()
	fail := profile.String("FAIL").Foreground(profile.Color("#ef4444")).Bold()

	failed := 0
	for i, r := range results {
		if r.Passed() {
			fmt.Fprintf(w, "%s %s (%s)\n", pass, r.Case.Label(i), r.Handler)
			continue
		}
		failed++
		fmt.Fprintf(w, "%s %s\n", fail, r.Case.Label(i))
		for _, f := range r.Failures {
			fmt.Fprintf(w, "     %s\n", f)
		}
	}

	warn := profile.String("WARN").Foreground(profile.Color("#eab308")).Bold()
	for _, issue := range validator.ValidateStates(m) {
		fmt.Fprintf(w, "%s %s\n", warn, issue)
	}

	printSystemMessage(w, "%d routes compiled, %d/%d cases passed.", len(m.Routes), len(results)-failed, len(results))
	logger.Debug("Check finished", "manifest", path, "cases", len(results), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d cases", ErrCheckFailed, failed, len(results))
	}
	return nil
}
