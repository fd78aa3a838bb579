package ir

// Version constants for the record layout and the registry binary.
const (
	// LayoutVersion is the record layout version. Bumping it changes the
	// discriminator domain and therefore invalidates every stored record.
	LayoutVersion = "1"

	// Version is the favnum release version.
	Version = "0.1.0"
)
