package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
    oldV, oldC, oldD := Version, Commit, Date
    defer func() { Version, Commit, Date = oldV, oldC, oldD }()

    Version, Commit, Date = "1.2.0", "abc123", "2024-01-02T00:00:00Z"
    if got := String(); got != "ecotrack 1.2.0+abc123 (2024-01-02T00:00:00Z)" {
        t.Fatalf("String() = %q", got)
    }
    Version, Commit, Date = "dev", "", ""
    if got := String(); !strings.HasPrefix(got, "ecotrack ") {
        t.Fatalf("String() = %q", got)
    }
}
