package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukcompliance/complianceengine/internal/logutil"
)

func writeTempDoc(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRun_ValidatesAgainstRequestedModule(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path := writeTempDoc(t, "Invest now for guaranteed high returns.")
	cfg := &RunConfig{
		InputPath:    path,
		DocumentType: "financial_promotion",
		Modules:      []string{"fca_uk"},
		JSONOutput:   true,
	}

	var out bytes.Buffer
	logger := logutil.NewLogger(logutil.ErrorLevel, &bytes.Buffer{}, "test")
	exitCode, err := run(context.Background(), cfg, logger, &out)
	require.NoError(t, err)
	assert.Equal(t, ExitCodeHighRisk, exitCode)
	assert.Contains(t, out.String(), "fca_uk")
}

func TestRun_SynthesizeConverges(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path := writeTempDoc(t, "Invest now for guaranteed high returns.")
	cfg := &RunConfig{
		InputPath:    path,
		DocumentType: "financial_promotion",
		Modules:      []string{"fca_uk"},
		Synthesize:   true,
		JSONOutput:   true,
	}

	var out bytes.Buffer
	logger := logutil.NewLogger(logutil.ErrorLevel, &bytes.Buffer{}, "test")
	_, err := run(context.Background(), cfg, logger, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "\"Reason\":\"converged\"")
}

func TestRun_ErrorsOnMissingInputFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &RunConfig{InputPath: "/nonexistent/doc.txt", DocumentType: "nda"}
	var out bytes.Buffer
	logger := logutil.NewLogger(logutil.ErrorLevel, &bytes.Buffer{}, "test")
	_, err := run(context.Background(), cfg, logger, &out)
	assert.Error(t, err)
}
