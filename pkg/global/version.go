package global

// These are overridden at build time through -ldflags.
var (
	BinaryVersion = "v0.3.0"
	GitCommit     = "unknown"
	BuildDate     = "unknown"
)
