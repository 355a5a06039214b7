// Package config handles environment variable loading and the materialized
// environment file for the provisioning core.
package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Default locations, relative to the project root.
const (
	DefaultTermuxPrefix = "/data/data/com.termux/files/usr"
	DefaultVenvDir      = "venv"
	DefaultDBPath       = "data/db/gerard.db"
	DefaultEnvFile      = ".env"
	DefaultManifest     = "requirements.txt"
)

// Settings holds all configuration values for a provisioning run. Steps
// receive it explicitly instead of reading ambient process state, so each
// step is independently testable.
type Settings struct {
	// Root is the project root; every relative path below hangs off it.
	Root string

	// TermuxPrefix is the runtime-identifying path the preflight gate
	// requires to exist.
	TermuxPrefix string

	// PythonBin is the host interpreter used to build the sandbox.
	PythonBin string

	// VenvDir is the runtime sandbox directory.
	VenvDir string

	// DBPath is the embedded state store file.
	DBPath string

	// EnvFile is the materialized configuration file.
	EnvFile string

	// ManifestFile is the optional dependency manifest. When absent the
	// fallback dependency set is installed instead.
	ManifestFile string

	// Debug switches the console logger to debug level.
	Debug bool
}

// Load reads configuration from environment variables. An explicit root
// takes precedence over GERARD_ROOT; when both are empty the current
// directory is used.
func Load(root string) (*Settings, error) {
	if root == "" {
		root = os.Getenv("GERARD_ROOT")
	}
	if root == "" {
		root = "."
	}

	prefix := os.Getenv("GERARD_TERMUX_PREFIX")
	if prefix == "" {
		prefix = DefaultTermuxPrefix
	}

	python := os.Getenv("GERARD_PYTHON")
	if python == "" {
		python = "python"
	}

	debug := false
	if v := os.Getenv("DEBUG"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			debug = parsed
		}
	}

	return &Settings{
		Root:         root,
		TermuxPrefix: prefix,
		PythonBin:    python,
		VenvDir:      filepath.Join(root, DefaultVenvDir),
		DBPath:       filepath.Join(root, filepath.FromSlash(DefaultDBPath)),
		EnvFile:      filepath.Join(root, DefaultEnvFile),
		ManifestFile: filepath.Join(root, DefaultManifest),
		Debug:        debug,
	}, nil
}

// VenvPython returns the path of the sandbox interpreter.
func (s *Settings) VenvPython() string {
	return filepath.Join(s.VenvDir, "bin", "python")
}

// VenvPip returns the path of the sandbox package installer.
func (s *Settings) VenvPip() string {
	return filepath.Join(s.VenvDir, "bin", "pip")
}
