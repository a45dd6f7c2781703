// Package common holds process-wide helpers shared by the binaries.
package common

// Version is set at build time with -ldflags "-X ...common.Version=...".
var Version = "dev"

// PackageName is the metrics namespace and default log service name.
const PackageName = "docsign"
