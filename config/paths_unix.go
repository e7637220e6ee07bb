//go:build !windows

package config

// Platform-specific path defaults for Linux and other unix systems

// GetDefaultConfigLocation returns the default configuration file path.
func GetDefaultConfigLocation() string {
	return "/etc/pathway/config.yml"
}

// GetDefaultDatabasePath returns the default location of the sqlite database.
func GetDefaultDatabasePath() string {
	return "/var/lib/pathway/pathway.db"
}
