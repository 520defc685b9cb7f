package systemctl

// Version is the current version of the go-systemctl library
const Version = "1.0.0"

// VersionInfo contains detailed version information
type VersionInfo struct {
	// Version is the semantic version
	Version string
	// Backend is the service manager this library drives
	Backend string
}

// GetVersion returns the current version information
func GetVersion() VersionInfo {
	return VersionInfo{
		Version: Version,
		Backend: "systemd/systemctl",
	}
}
