package provision

import (
	"context"
	"log/slog"
	"os"

	"github.com/TipTopTap/super-doodle/internal/config"
	"github.com/TipTopTap/super-doodle/internal/pipeline"
	"github.com/TipTopTap/super-doodle/internal/store"
)

// Steps returns the full ten-step provisioning pipeline in its fixed
// order. The container image build reuses a subset of the same step
// values (see BootstrapSteps) so the two bootstrap paths cannot drift.
func Steps(cfg *config.Settings, cmd Commander, logger *slog.Logger) []pipeline.Step {
	return []pipeline.Step{
		stepPreflight(cfg),
		stepSystemPackages(cfg, cmd),
		stepRuntimeSandbox(cfg, cmd),
		stepInstallerUpgrade(cfg, cmd),
		stepDependencies(cfg, cmd, logger),
		stepDirectoryLayout(cfg),
		stepScriptPermissions(cfg, logger),
		stepStateStore(cfg),
		stepConfigFile(cfg, logger),
		stepVerification(cfg, cmd),
	}
}

// BootstrapSteps is the image-build subset: directory tree and store
// schema only. The sandbox and config file are runtime concerns in the
// container (the image carries its own interpreter and env).
func BootstrapSteps(cfg *config.Settings, logger *slog.Logger) []pipeline.Step {
	return []pipeline.Step{
		stepDirectoryLayout(cfg),
		stepStateStore(cfg),
		stepScriptPermissions(cfg, logger),
	}
}

func stepPreflight(cfg *config.Settings) pipeline.Step {
	return pipeline.Step{
		Name: "preflight",
		Run: func(ctx context.Context) error {
			if err := CheckRuntime(cfg.TermuxPrefix); err != nil {
				return pipeline.Fatal(pipeline.ErrEnvironmentMismatch, "preflight", err)
			}
			return nil
		},
	}
}

func stepSystemPackages(cfg *config.Settings, cmd Commander) pipeline.Step {
	return pipeline.Step{
		Name: "system-packages",
		Run: func(ctx context.Context) error {
			if err := InstallSystemPackages(ctx, cmd); err != nil {
				return pipeline.Fatal(pipeline.ErrProvisioningFailure, "system-packages", err)
			}
			return nil
		},
	}
}

func stepRuntimeSandbox(cfg *config.Settings, cmd Commander) pipeline.Step {
	return pipeline.Step{
		Name: "runtime-sandbox",
		Done: func(ctx context.Context) (bool, error) {
			return SandboxExists(cfg), nil
		},
		Run: func(ctx context.Context) error {
			if err := BuildSandbox(ctx, cmd, cfg); err != nil {
				return pipeline.Fatal(pipeline.ErrProvisioningFailure, "runtime-sandbox", err)
			}
			return nil
		},
		Verify: func(ctx context.Context) error {
			if !SandboxExists(cfg) {
				return pipeline.Fatalf(pipeline.ErrProvisioningFailure, "runtime-sandbox",
					"sandbox interpreter missing at %s after build", cfg.VenvPython())
			}
			return nil
		},
	}
}

func stepInstallerUpgrade(cfg *config.Settings, cmd Commander) pipeline.Step {
	return pipeline.Step{
		Name: "installer-upgrade",
		Run: func(ctx context.Context) error {
			if err := UpgradeInstaller(ctx, cmd, cfg); err != nil {
				return pipeline.Fatal(pipeline.ErrProvisioningFailure, "installer-upgrade", err)
			}
			return nil
		},
	}
}

func stepDependencies(cfg *config.Settings, cmd Commander, logger *slog.Logger) pipeline.Step {
	return pipeline.Step{
		Name: "dependencies",
		Run: func(ctx context.Context) error {
			if err := InstallDependencies(ctx, cmd, cfg, logger); err != nil {
				return pipeline.Fatal(pipeline.ErrProvisioningFailure, "dependencies", err)
			}
			return nil
		},
	}
}

func stepDirectoryLayout(cfg *config.Settings) pipeline.Step {
	return pipeline.Step{
		Name: "directory-layout",
		Done: func(ctx context.Context) (bool, error) {
			if len(MissingLayoutDirs(cfg.Root)) > 0 {
				return false, nil
			}
			// An existing tree that refuses writes is not done; the
			// probe below then surfaces the failing directory.
			return VerifyLayoutWritable(cfg.Root) == nil, nil
		},
		Run: func(ctx context.Context) error {
			if err := EnsureLayout(cfg.Root); err != nil {
				return pipeline.Fatal(pipeline.ErrProvisioningFailure, "directory-layout", err)
			}
			return nil
		},
		Verify: func(ctx context.Context) error {
			if err := VerifyLayoutWritable(cfg.Root); err != nil {
				return pipeline.Fatal(pipeline.ErrProvisioningFailure, "directory-layout", err)
			}
			return nil
		},
	}
}

func stepScriptPermissions(cfg *config.Settings, logger *slog.Logger) pipeline.Step {
	return pipeline.Step{
		Name: "script-permissions",
		Run: func(ctx context.Context) error {
			// Warn-only inside; permission failures never fail the run.
			NormalizePermissions(cfg.Root, logger)
			return nil
		},
	}
}

func stepStateStore(cfg *config.Settings) pipeline.Step {
	return pipeline.Step{
		Name: "state-store",
		Run: func(ctx context.Context) error {
			s, err := store.Open(cfg.DBPath)
			if err != nil {
				return pipeline.Fatal(pipeline.ErrStoreInitFailure, "state-store", err)
			}
			defer s.Close()
			if err := s.Bootstrap(ctx); err != nil {
				return pipeline.Fatal(pipeline.ErrStoreInitFailure, "state-store", err)
			}
			return nil
		},
	}
}

func stepConfigFile(cfg *config.Settings, logger *slog.Logger) pipeline.Step {
	return pipeline.Step{
		Name: "config-file",
		Done: func(ctx context.Context) (bool, error) {
			_, err := os.Stat(cfg.EnvFile)
			return err == nil, nil
		},
		Run: func(ctx context.Context) error {
			created, err := config.MaterializeEnvFile(cfg.EnvFile)
			if err != nil {
				return pipeline.Fatal(pipeline.ErrProvisioningFailure, "config-file", err)
			}
			if created {
				logger.Info("wrote environment file with placeholder secrets", "path", cfg.EnvFile)
			}
			return nil
		},
	}
}

func stepVerification(cfg *config.Settings, cmd Commander) pipeline.Step {
	return pipeline.Step{
		Name: "verification",
		Run: func(ctx context.Context) error {
			if err := VerifyDependencies(ctx, cmd, cfg); err != nil {
				return pipeline.Fatal(pipeline.ErrVerificationFailure, "verification", err)
			}
			if err := VerifyStore(ctx, cfg.DBPath); err != nil {
				return pipeline.Fatal(pipeline.ErrVerificationFailure, "verification", err)
			}
			return nil
		},
	}
}
