package provision

import (
	"context"
	"fmt"

	"github.com/TipTopTap/super-doodle/internal/config"
	"github.com/TipTopTap/super-doodle/internal/store"
)

// coreImports are the module names the verification gate loads inside the
// sandbox. One per entry in the fallback dependency set (python-dotenv
// imports as dotenv).
var coreImports = []string{
	"fastapi",
	"uvicorn",
	"rich",
	"requests",
	"dotenv",
}

// VerifyDependencies imports each core dependency inside the sandbox.
// A single failed import fails the whole gate.
func VerifyDependencies(ctx context.Context, cmd Commander, cfg *config.Settings) error {
	for _, module := range coreImports {
		if out, err := cmd.Output(ctx, cfg.VenvPython(), "-c", "import "+module); err != nil {
			return fmt.Errorf("importing %s: %w (output: %s)", module, err, out)
		}
	}
	return nil
}

// VerifyStore opens the state store, executes a no-op statement, and
// closes it again.
func VerifyStore(ctx context.Context, dbPath string) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Ping(ctx)
}
