package provision

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TipTopTap/super-doodle/internal/config"
	"github.com/TipTopTap/super-doodle/internal/pipeline"
)

// fakeCommander records commands and simulates the few side effects the
// steps observe (sandbox creation).
type fakeCommander struct {
	calls  [][]string
	failOn string
}

func (f *fakeCommander) Run(ctx context.Context, name string, args ...string) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.failOn != "" && name == f.failOn {
		return errors.New("simulated command failure")
	}
	// Simulate `python -m venv <dir>` so SandboxExists sees the result.
	if len(args) >= 3 && args[0] == "-m" && args[1] == "venv" {
		binDir := filepath.Join(args[2], "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(binDir, "python"), []byte("#!stub\n"), 0o755)
	}
	return nil
}

func (f *fakeCommander) Output(ctx context.Context, name string, args ...string) (string, error) {
	return "", f.Run(ctx, name, args...)
}

func (f *fakeCommander) commandNames() []string {
	var names []string
	for _, call := range f.calls {
		names = append(names, call[0])
	}
	return names
}

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	root := t.TempDir()
	marker := filepath.Join(root, "termux-prefix")
	require.NoError(t, os.MkdirAll(marker, 0o755))
	return &config.Settings{
		Root:         root,
		TermuxPrefix: marker,
		PythonBin:    "python",
		VenvDir:      filepath.Join(root, "venv"),
		DBPath:       filepath.Join(root, "data", "db", "gerard.db"),
		EnvFile:      filepath.Join(root, ".env"),
		ManifestFile: filepath.Join(root, "requirements.txt"),
	}
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSteps_FullRunSucceeds(t *testing.T) {
	cfg := testSettings(t)
	cmd := &fakeCommander{}

	results, err := pipeline.NewRunner(discard(), Steps(cfg, cmd, discard())).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 10)
	for _, r := range results {
		assert.NotEqual(t, pipeline.StatusFailed, r.Status, "step %s failed", r.Name)
	}

	// Observable postconditions.
	assert.Empty(t, MissingLayoutDirs(cfg.Root))
	assert.FileExists(t, cfg.DBPath)
	assert.FileExists(t, cfg.EnvFile)
	assert.True(t, SandboxExists(cfg))
}

func TestSteps_SecondRunIsIdempotent(t *testing.T) {
	cfg := testSettings(t)
	ctx := context.Background()

	_, err := pipeline.NewRunner(discard(), Steps(cfg, &fakeCommander{}, discard())).Run(ctx)
	require.NoError(t, err)

	envBefore, err := os.ReadFile(cfg.EnvFile)
	require.NoError(t, err)

	// Operator edits a secret between runs.
	edited := strings.Replace(string(envBefore), "your-openai-api-key-here", "sk-live-123", 1)
	require.NoError(t, os.WriteFile(cfg.EnvFile, []byte(edited), 0o600))

	second := &fakeCommander{}
	results, err := pipeline.NewRunner(discard(), Steps(cfg, second, discard())).Run(ctx)
	require.NoError(t, err)

	byName := map[string]pipeline.StepStatus{}
	for _, r := range results {
		byName[r.Name] = r.Status
	}
	assert.Equal(t, pipeline.StatusSkipped, byName["runtime-sandbox"])
	assert.Equal(t, pipeline.StatusSkipped, byName["directory-layout"])
	assert.Equal(t, pipeline.StatusSkipped, byName["config-file"])

	envAfter, err := os.ReadFile(cfg.EnvFile)
	require.NoError(t, err)
	assert.Equal(t, edited, string(envAfter), "operator-edited env file must survive re-runs")
}

func TestSteps_RerunDetectsUnwritableLayoutDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits have no effect for root")
	}
	cfg := testSettings(t)
	ctx := context.Background()

	_, err := pipeline.NewRunner(discard(), Steps(cfg, &fakeCommander{}, discard())).Run(ctx)
	require.NoError(t, err)

	// A directory turned read-only between runs must fail the re-run,
	// not slide through as already satisfied.
	locked := filepath.Join(cfg.Root, "data", "cache")
	require.NoError(t, os.Chmod(locked, 0o555))
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	results, err := pipeline.NewRunner(discard(), Steps(cfg, &fakeCommander{}, discard())).Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeline.ErrProvisioningFailure))
	assert.Contains(t, err.Error(), locked)

	last := results[len(results)-1]
	assert.Equal(t, "directory-layout", last.Name)
	assert.Equal(t, pipeline.StatusFailed, last.Status)
}

func TestSteps_FailedImportIsVerificationFailure(t *testing.T) {
	cfg := testSettings(t)
	// The sandbox interpreter only runs during the final import checks,
	// so failing it leaves all nine earlier steps intact.
	cmd := &fakeCommander{failOn: cfg.VenvPython()}

	results, err := pipeline.NewRunner(discard(), Steps(cfg, cmd, discard())).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeline.ErrVerificationFailure))
	assert.False(t, errors.Is(err, pipeline.ErrProvisioningFailure))

	require.Len(t, results, 10)
	for _, r := range results[:9] {
		assert.NotEqual(t, pipeline.StatusFailed, r.Status, "step %s failed", r.Name)
	}
	assert.Equal(t, "verification", results[9].Name)
	assert.Equal(t, pipeline.StatusFailed, results[9].Status)
	assert.Contains(t, results[9].Error, "import")
}

func TestSteps_PackageFailureHaltsEverything(t *testing.T) {
	cfg := testSettings(t)
	cmd := &fakeCommander{failOn: "pkg"}

	results, err := pipeline.NewRunner(discard(), Steps(cfg, cmd, discard())).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeline.ErrProvisioningFailure))

	// Only preflight and the failing step may appear.
	require.Len(t, results, 2)
	assert.Equal(t, "system-packages", results[1].Name)

	// No later side effect may exist.
	assert.False(t, SandboxExists(cfg))
	assert.NoFileExists(t, cfg.DBPath)
	assert.NoFileExists(t, cfg.EnvFile)
	assert.NotEmpty(t, MissingLayoutDirs(cfg.Root))
}

func TestSteps_PreflightFailureMutatesNothing(t *testing.T) {
	cfg := testSettings(t)
	cfg.TermuxPrefix = filepath.Join(cfg.Root, "does-not-exist")
	cmd := &fakeCommander{}

	_, err := pipeline.NewRunner(discard(), Steps(cfg, cmd, discard())).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeline.ErrEnvironmentMismatch))
	assert.Empty(t, cmd.calls, "no command may run after a preflight failure")
}

func TestSteps_DependencyManifestPreferred(t *testing.T) {
	cfg := testSettings(t)
	require.NoError(t, os.WriteFile(cfg.ManifestFile, []byte("fastapi==0.115.0\n"), 0o644))
	cmd := &fakeCommander{}

	_, err := pipeline.NewRunner(discard(), Steps(cfg, cmd, discard())).Run(context.Background())
	require.NoError(t, err)

	var sawManifestInstall bool
	for _, call := range cmd.calls {
		if call[0] == cfg.VenvPip() && len(call) >= 3 && call[1] == "install" && call[2] == "-r" {
			sawManifestInstall = true
		}
	}
	assert.True(t, sawManifestInstall, "expected pip install -r with manifest present, calls: %v", cmd.calls)
}

func TestBootstrapSteps_OnlyLayoutAndStore(t *testing.T) {
	cfg := testSettings(t)

	results, err := pipeline.NewRunner(discard(), BootstrapSteps(cfg, discard())).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Empty(t, MissingLayoutDirs(cfg.Root))
	assert.FileExists(t, cfg.DBPath)
	// Runtime-only concerns stay untouched at image build time.
	assert.NoFileExists(t, cfg.EnvFile)
	assert.False(t, SandboxExists(cfg))
}
