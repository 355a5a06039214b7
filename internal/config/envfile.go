package config

import (
	"fmt"
	"os"
	"strings"
)

// envKeys is the recognized configuration surface, in file order.
// Secrets are written as placeholders the operator replaces by hand.
var envKeys = []string{
	"DEBUG",
	"LOG_LEVEL",
	"DATABASE_URL",
	"REDIS_URL",
	"OPENAI_API_KEY",
	"GITHUB_TOKEN",
	"RAILWAY_TOKEN",
}

var envDefaults = map[string]string{
	"DEBUG":          "True",
	"LOG_LEVEL":      "INFO",
	"DATABASE_URL":   "sqlite:///data/db/gerard.db",
	"REDIS_URL":      "redis://localhost:6379",
	"OPENAI_API_KEY": "your-openai-api-key-here",
	"GITHUB_TOKEN":   "your-github-token-here",
	"RAILWAY_TOKEN":  "your-railway-token-here",
}

// RenderEnvFile returns the default environment file contents. The key
// order is fixed so repeated runs produce byte-identical output.
func RenderEnvFile() []byte {
	var b strings.Builder
	b.WriteString("# GÉRARD environment configuration\n")
	b.WriteString("# Replace the placeholder secrets before production use.\n")
	for _, key := range envKeys {
		fmt.Fprintf(&b, "%s=%s\n", key, envDefaults[key])
	}
	return []byte(b.String())
}

// MaterializeEnvFile writes the default environment file at path unless a
// file already exists there. An existing file is never touched: it may
// hold operator-entered secrets. Returns true when a file was written.
func MaterializeEnvFile(path string) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(RenderEnvFile()); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}
