package version

import "runtime/debug"

// Name is the program name shown in -version output and export manifests.
const Name = "ecotrack"

var (
    // Version is set via ldflags at build time.
    Version = "dev"
    Commit  = ""
    // Date is the build timestamp in RFC3339.
    Date    = ""
)

// Short is the bare version, falling back to the module build info when no
// ldflags were given (go install).
func Short() string {
    if Version != "dev" { return Version }
    if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
        return bi.Main.Version
    }
    return Version
}

func String() string {
    s := Name + " " + Short()
    if Commit != "" { s += "+" + Commit }
    if Date != "" { s += " (" + Date + ")" }
    return s
}
