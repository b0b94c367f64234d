// Package config provides configuration management for fim.
package config

// Default configuration values for fim.
const (
	// DefaultBaseline is the baseline file, relative to the working directory.
	DefaultBaseline = "baseline.json"

	// DefaultFormat is the check report format.
	DefaultFormat = "plain"

	// DefaultWorkers is the number of directory walker workers. Zero lets
	// fastwalk pick based on CPU count.
	DefaultWorkers = 0

	// DefaultRetentionDays is how long journal entries are kept.
	DefaultRetentionDays = 90

	// DefaultLogLevel is the file log level.
	DefaultLogLevel = "info"

	// DefaultMaxLogSize is the log size that triggers rotation.
	DefaultMaxLogSize = "10MB"
)

// DefaultExclusions is empty: fim tracks exactly what it is pointed at.
var DefaultExclusions = []string{}

// DefaultComponentLevels sets per-package log levels.
var DefaultComponentLevels = map[string]string{
	"digest":    "warn",
	"enumerate": "info",
	"journal":   "info",
}
