// Package version reports the build version.
package version

// version is set at build time with
// -ldflags "-X backoffice/pkg/version.version=v1.2.3".
var version = "dev"

// Version returns the build version, "dev" for local builds.
func Version() string {
	return version
}
