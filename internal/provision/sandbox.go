package provision

import (
	"context"
	"log/slog"
	"os"

	"github.com/TipTopTap/super-doodle/internal/config"
)

// fallbackDependencies is installed when no requirements manifest exists.
// Keep in sync with coreImports in verify.go.
var fallbackDependencies = []string{
	"fastapi",
	"uvicorn",
	"rich",
	"requests",
	"python-dotenv",
}

// SandboxExists reports whether the runtime sandbox has been created.
func SandboxExists(cfg *config.Settings) bool {
	info, err := os.Stat(cfg.VenvPython())
	return err == nil && !info.IsDir()
}

// BuildSandbox creates the isolated runtime sandbox with the host
// interpreter. It must only be called when the sandbox is absent.
func BuildSandbox(ctx context.Context, cmd Commander, cfg *config.Settings) error {
	return cmd.Run(ctx, cfg.PythonBin, "-m", "venv", cfg.VenvDir)
}

// UpgradeInstaller upgrades the package installer inside the sandbox.
func UpgradeInstaller(ctx context.Context, cmd Commander, cfg *config.Settings) error {
	return cmd.Run(ctx, cfg.VenvPip(), "install", "--upgrade", "pip")
}

// InstallDependencies installs the dependency set into the sandbox: the
// manifest contents when a manifest exists, otherwise the documented
// fallback set. A missing manifest is a warning, never an error.
func InstallDependencies(ctx context.Context, cmd Commander, cfg *config.Settings, logger *slog.Logger) error {
	if _, err := os.Stat(cfg.ManifestFile); err == nil {
		return cmd.Run(ctx, cfg.VenvPip(), "install", "-r", cfg.ManifestFile)
	}

	logger.Warn("dependency manifest missing, installing fallback set",
		"manifest", cfg.ManifestFile,
		"fallback", fallbackDependencies)
	args := append([]string{"install"}, fallbackDependencies...)
	return cmd.Run(ctx, cfg.VenvPip(), args...)
}
