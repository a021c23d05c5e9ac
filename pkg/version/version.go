package version

// These are set at build time with -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)
