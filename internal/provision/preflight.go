package provision

import (
	"fmt"
	"os"
)

// CheckRuntime confirms the host carries the runtime-identifying marker
// path (the Termux prefix). It performs no side effects: a mismatch means
// the pipeline aborts before any mutation.
func CheckRuntime(markerPath string) error {
	info, err := os.Stat(markerPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("marker path %s not found; this tool must run inside Termux", markerPath)
		}
		return fmt.Errorf("inspecting marker path %s: %w", markerPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("marker path %s exists but is not a directory", markerPath)
	}
	return nil
}
