package habits

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// DumpMarkdown writes a markdown report of the state to filename.
func DumpMarkdown(st AppState, now time.Time, filename string) error {
    f, err := os.Create(filename)
    if err != nil { return err }
    defer f.Close()
    if err := WriteMarkdown(f, st, now); err != nil { return err }
    return f.Close()
}

// WriteMarkdown renders today's checklist, counts and streak as markdown.
func WriteMarkdown(w io.Writer, st AppState, now time.Time) error {
    p := ProgressOf(st.Habits)
    var b strings.Builder
    fmt.Fprintf(&b, "# EcoTrack · %s\n\n", now.Local().Format("Mon, 02 Jan 2006"))
    fmt.Fprintf(&b, "- Habits: %d\n", p.Total)
    fmt.Fprintf(&b, "- Completed: %d\n", p.Done)
    fmt.Fprintf(&b, "- Progress: %d%%\n", p.Percent)
    fmt.Fprintf(&b, "- Streak: %s\n", streakLabel(st.Streak))
    fmt.Fprintf(&b, "- Last active day: %s\n\n", st.LastDay)

    fmt.Fprintln(&b, "## Today")
    fmt.Fprintln(&b)
    if len(st.Habits) == 0 {
        fmt.Fprintln(&b, "_No habits yet._")
    }
    for _, h := range st.Habits {
        mark := " "
        if h.Done { mark = "x" }
        fmt.Fprintf(&b, "- [%s] %s\n", mark, escapeMarkdown(h.Title))
    }
    _, err := io.WriteString(w, b.String())
    return err
}

func streakLabel(n int) string {
    if n == 1 { return "1 day" }
    return fmt.Sprintf("%d days", n)
}

// escapeMarkdown keeps user titles from turning into markup.
func escapeMarkdown(s string) string {
    r := strings.NewReplacer(
        `\`, `\\`,
        "*", `\*`,
        "_", `\_`,
        "`", "\\`",
        "[", `\[`,
        "]", `\]`,
        "<", "&lt;",
        ">", "&gt;",
    )
    return r.Replace(s)
}
