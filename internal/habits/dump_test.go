package habits

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecotrack/internal/hooks"
)

func TestWriteMarkdown(t *testing.T) {
    st := AppState{
        Habits:  []Habit{{Title: "Short showers", Done: true}, {Title: "Use *bus*/metro"}},
        LastDay: "2024-01-02",
        Streak:  1,
    }
    var buf bytes.Buffer
    require.NoError(t, WriteMarkdown(&buf, st, time.Date(2024, 1, 2, 8, 0, 0, 0, time.Local)))
    out := buf.String()

    assert.True(t, strings.HasPrefix(out, "# EcoTrack · Tue, 02 Jan 2024\n"))
    assert.Contains(t, out, "- Progress: 50%\n")
    assert.Contains(t, out, "- Streak: 1 day\n")
    assert.Contains(t, out, "- [x] Short showers\n")
    assert.Contains(t, out, `- [ ] Use \*bus\*/metro`)
}

func TestDumpMarkdownEmpty(t *testing.T) {
    p := filepath.Join(t.TempDir(), "report.md")
    require.NoError(t, DumpMarkdown(DefaultState("2024-01-02"), time.Now(), p))
    b, err := os.ReadFile(p)
    require.NoError(t, err)
    assert.Contains(t, string(b), "_No habits yet._")
    assert.Contains(t, string(b), "- Streak: 0 days")
}

func TestSuggestions(t *testing.T) {
    s := Suggestions()
    require.Len(t, s, 8)
    assert.Equal(t, "Carry a water bottle", s[0])
    s[0] = "mutated"
    assert.Equal(t, "Carry a water bottle", Suggestions()[0])

    // without hooks the static list is returned
    assert.Equal(t, Suggestions(), SuggestionsWithHooks(nil))
}

func TestHookIntegration(t *testing.T) {
    dir := t.TempDir()
    code := `
function suggestions() { return ["Compost", "Short showers", "  "]; }
function renderHabitItem(h) { return h.done ? { desc: "nice" } : null; }
var seen = null;
function onRollover(ev) { seen = ev.to + ":" + ev.streak; }
function lastSeen() { return seen; }
`
    require.NoError(t, os.WriteFile(filepath.Join(dir, "eco.js"), []byte(code), 0o644))
    env, err := hooks.LoadDir(dir)
    require.NoError(t, err)

    s := SuggestionsWithHooks(env)
    assert.Len(t, s, 9)
    assert.Equal(t, "Compost", s[8])

    _, desc, ok := RenderItemWithHooks(env, Habit{Title: "A", Done: true}, 0)
    assert.True(t, ok)
    assert.Equal(t, "nice", desc)
    _, _, ok = RenderItemWithHooks(env, Habit{Title: "A"}, 0)
    assert.False(t, ok)

    NotifyRollover(env, RolloverEvent{From: "2024-01-01", To: "2024-01-02", Streak: 3})
    got, ok := env.CallString("lastSeen", nil)
    require.True(t, ok)
    assert.Equal(t, "2024-01-02:3", got)
}

func TestCleanTitle(t *testing.T) {
    s, cut := CleanTitle("\t Plant\r\nwatering  ")
    assert.Equal(t, "Plant  watering", s)
    assert.False(t, cut)

    s, cut = CleanTitle(strings.Repeat("ü", MaxTitleLen+1))
    assert.True(t, cut)
    assert.Equal(t, MaxTitleLen+1, len([]rune(s)))
}
