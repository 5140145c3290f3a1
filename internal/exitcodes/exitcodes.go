// Package exitcodes holds the process exit codes returned by ai-scaffold.
package exitcodes

const (
	Success = 0
	// GeneralError covers anything without a more specific code.
	GeneralError = 1
	UsageError   = 2
	// ConfigError means the feature context could not be located or parsed.
	ConfigError        = 3
	VerificationFailed = 4
	NetworkError       = 5
	// FilesystemError is returned when generation could not write the tree.
	FilesystemError = 6
)
