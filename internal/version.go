package internal

// version is set at build time via -ldflags "-X github.com/vodmock/wsplay/internal.version=..."
var version = "0.1.0-dev"

// GetVersion returns the wsplay version.
func GetVersion() string {
	return version
}
