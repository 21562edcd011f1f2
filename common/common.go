// Package common holds shared constants for mamgo binaries and servers.
package common

// PackageName identifies this project in logs and metrics.
const PackageName = "mamgo"

// Version is the release version, overridden at build time via ldflags.
var Version = "dev"
