package types

// InstallState represents the stage a single install request is in.
type InstallState int32

const (
	// StatePending is entered when the request is accepted
	StatePending InstallState = iota
	// StateDownloading indicates the archive is being streamed to scratch storage
	StateDownloading
	// StateVerifying indicates the archive digest is being checked
	StateVerifying
	// StateExtracting indicates the archive is being unpacked into the destination
	StateExtracting
	// StateDone indicates the build is installed
	StateDone
	// StateFailed indicates the request stopped with an error
	StateFailed
)

// String returns the string representation of the InstallState
func (s InstallState) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateDownloading:
		return "Downloading"
	case StateVerifying:
		return "Verifying"
	case StateExtracting:
		return "Extracting"
	case StateDone:
		return "Done"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transitions can happen from s.
func (s InstallState) Terminal() bool {
	return s == StateDone || s == StateFailed
}
