// Package version holds the build version of vt.
package version

import "runtime/debug"

// Version is set at build time with
// -ldflags "-X github.com/vanderheijden86/voltable/pkg/version.Version=v1.2.3".
// Without it, the module version from the build info is used.
var Version = "dev"

func init() {
	if Version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
}
