package provision

import "context"

// systemPackages is the fixed host package list installed through the
// Termux package manager. The container image keeps its own, separately
// editable list in the Dockerfile; the two are not assumed to match.
var systemPackages = []string{
	"python",
	"git",
	"sqlite",
	"openssl",
	"curl",
}

// InstallSystemPackages updates the package index and installs the fixed
// package list. `pkg install -y` upgrades packages already present and
// leaves up-to-date ones alone, so re-running costs nothing.
func InstallSystemPackages(ctx context.Context, cmd Commander) error {
	if err := cmd.Run(ctx, "pkg", "update", "-y"); err != nil {
		return err
	}
	args := append([]string{"install", "-y"}, systemPackages...)
	return cmd.Run(ctx, "pkg", args...)
}
