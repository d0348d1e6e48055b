package main

import (
	"os"
	"path/filepath"

	"github.com/subosito/gotenv"

	"github.com/ahd-playgrounds/google-task-cli/cmd"
	"github.com/ahd-playgrounds/google-task-cli/internal/logger"
)

// Build-time variables injected by ldflags
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

func main() {
	// Load .env file if present (current directory or XDG config dir) so the
	// secrets vault/item selection can be overridden per-checkout.
	// Order: project root .env > XDG config dir .env (first one found is loaded)
	tryPaths := []string{".env"}
	if cfgHome, err := os.UserConfigDir(); err == nil {
		tryPaths = append(tryPaths, filepath.Join(cfgHome, "google-task-cli", ".env"))
	}
	for _, p := range tryPaths {
		if _, err := os.Stat(p); err == nil {
			if loadErr := gotenv.Load(p); loadErr == nil {
				break
			}
		}
	}

	cmd.SetVersionInfo(Version, CommitHash, BuildTime)

	if err := cmd.Execute(); err != nil {
		logger.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
