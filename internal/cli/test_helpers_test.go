package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// clearEnv blanks the variables config.Load reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"PORT", "BUTTERFLIES_ADDR", "BUTTERFLIES_DB", "BUTTERFLIES_DRIVER", "BUTTERFLIES_LOG_LEVEL"} {
		t.Setenv(name, "")
	}
}

// runCLI executes the root command with args and returns stdout and the
// error. Logs are discarded.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// createSeededStore seeds a fresh store with driver and returns its path.
func createSeededStore(t *testing.T, driver, file string) string {
	t.Helper()
	clearEnv(t)
	path := filepath.Join(t.TempDir(), file)
	_, err := runCLI(t, "--driver", driver, "--db", path, "seed")
	require.NoError(t, err)
	return path
}
