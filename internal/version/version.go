package version

// Build metadata, stamped via -ldflags "-X ...".
var (
	Version = "dev"
	Commit  = "unknown"
)
