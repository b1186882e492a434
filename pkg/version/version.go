// Package version holds the build version, set with
// -ldflags "-X github.com/maxvaer/soft404/pkg/version.Version=1.2.3".
package version

// Version is the soft404 release.
var Version = "dev"
