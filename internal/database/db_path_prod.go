//go:build prod

package database

import (
	"log"
	"os"
	"path/filepath"
)

// GetDefaultDBPath returns the database path for production mode.
// Preferences live in the user's config directory so they survive reinstalls.
func GetDefaultDBPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Printf("Warning: Failed to get user config dir: %v. Using fallback.", err)
		return "boltdesk.db"
	}

	appDir := filepath.Join(configDir, "boltdesk")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		log.Printf("Warning: Failed to create app config dir: %v. Using fallback.", err)
		return "boltdesk.db"
	}

	return filepath.Join(appDir, "preferences.db")
}

func IsDevelopment() bool {
	return false
}
