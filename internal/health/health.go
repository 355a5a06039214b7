// Package health implements the container health probe over the state
// store. The probe is a short-lived read-only open/read/close; it shares
// nothing with the pipeline beyond the store file itself.
package health

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/TipTopTap/super-doodle/internal/store"
)

// Probe schedule constants. These are fixed configuration, not tunables;
// the Dockerfile HEALTHCHECK mirrors them. A container is marked
// unhealthy after Retries consecutive probe failures.
const (
	Interval    = 30 * time.Second
	Timeout     = 10 * time.Second
	StartPeriod = 30 * time.Second
	Retries     = 3
)

// Check reports whether the state store is healthy: the file exists, the
// store opens, and the bootstrap schema accepts a trivial read. The SQLite
// driver would silently create a missing file, so existence is checked
// first.
func Check(ctx context.Context, dbPath string) error {
	info, err := os.Stat(dbPath)
	if err != nil {
		return fmt.Errorf("state store file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("state store path %s is a directory", dbPath)
	}

	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening state store: %w", err)
	}
	defer s.Close()

	if _, err := s.CountAgents(ctx); err != nil {
		return fmt.Errorf("reading agents table: %w", err)
	}
	return nil
}
