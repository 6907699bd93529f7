//go:build !prod

package database

// GetDefaultDBPath returns the database path for development mode.
// In dev mode the database sits in the working directory for easy inspection.
func GetDefaultDBPath() string {
	return "boltdesk.db"
}

func IsDevelopment() bool {
	return true
}
