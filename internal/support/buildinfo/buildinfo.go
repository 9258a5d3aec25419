// Package buildinfo carries version metadata stamped at build time.
package buildinfo

// Version is the console version, overridden via -ldflags on release builds.
var Version = "dev"
