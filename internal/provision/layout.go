package provision

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// layoutDirs is the fixed directory tree the orchestrator expects,
// relative to the project root.
var layoutDirs = []string{
	"src/core",
	"src/agents",
	"src/utils",
	"src/api",
	"config",
	"tests/unit",
	"tests/integration",
	"docs",
	"scripts",
	"data/logs",
	"data/artifacts",
	"data/cache",
	"data/db",
	"data/reports",
}

// entryPoints are files whose executable bit is normalized when present.
var entryPoints = []string{
	"quick_gerard.py",
	"deploy.sh",
}

// EnsureLayout creates the full directory tree. Existing directories and
// their contents are left untouched.
func EnsureLayout(root string) error {
	for _, dir := range layoutDirs {
		path := filepath.Join(root, filepath.FromSlash(dir))
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}

// MissingLayoutDirs returns the directories from the fixed tree that do
// not exist (or exist as non-directories) under root.
func MissingLayoutDirs(root string) []string {
	var missing []string
	for _, dir := range layoutDirs {
		path := filepath.Join(root, filepath.FromSlash(dir))
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			missing = append(missing, dir)
		}
	}
	return missing
}

// VerifyLayoutWritable confirms every directory in the tree accepts
// writes by creating and removing a probe file.
func VerifyLayoutWritable(root string) error {
	for _, dir := range layoutDirs {
		path := filepath.Join(root, filepath.FromSlash(dir))
		probe := filepath.Join(path, ".gerard-write-probe")
		if err := os.WriteFile(probe, nil, 0o644); err != nil {
			return fmt.Errorf("directory %s is not writable: %w", path, err)
		}
		os.Remove(probe)
	}
	return nil
}

// NormalizePermissions sets the executable bit on shell scripts and the
// known entry-point files. Failures are logged and swallowed: a missing
// executable bit never blocks later steps.
func NormalizePermissions(root string, logger *slog.Logger) {
	scripts, err := filepath.Glob(filepath.Join(root, "scripts", "*.sh"))
	if err == nil {
		for _, script := range scripts {
			if err := os.Chmod(script, 0o755); err != nil {
				logger.Warn("could not set executable bit", "file", script, "error", err)
			}
		}
	}

	for _, name := range entryPoints {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := os.Chmod(path, 0o755); err != nil {
			logger.Warn("could not set executable bit", "file", path, "error", err)
		}
	}
}
