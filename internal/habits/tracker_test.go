package habits

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTracker(t *testing.T, mem *MemoryBackend, day string) *Tracker {
    t.Helper()
    tr, err := Open(NewStateStore(mem, "ecotrack:v1", fixedClock(day), false))
    require.NoError(t, err)
    return tr
}

func titles(st AppState) []string {
    out := []string{}
    for _, h := range st.Habits { out = append(out, h.Title) }
    return out
}

func TestOpenAppliesRolloverAndPersists(t *testing.T) {
    mem := NewMemoryBackend()
    seed := NewStateStore(mem, "ecotrack:v1", fixedClock("2024-01-01"), false)
    require.NoError(t, seed.Save(AppState{
        Habits:  []Habit{{ID: "a", Title: "A", Done: true}, {ID: "b", Title: "B", Done: true}},
        LastDay: "2024-01-01",
        Streak:  2,
    }))

    tr := openTracker(t, mem, "2024-01-02")
    want := AppState{
        Habits:  []Habit{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}},
        LastDay: "2024-01-02",
        Streak:  3,
    }
    assert.Equal(t, want, tr.State())
    // persisted, not just in memory
    assert.Equal(t, want, NewStateStore(mem, "ecotrack:v1", fixedClock("2024-01-02"), false).Load())

    evs := tr.TakeRollovers()
    require.Len(t, evs, 1)
    assert.Equal(t, RolloverEvent{From: "2024-01-01", To: "2024-01-02", Completed: true, Streak: 3}, evs[0])
    assert.Empty(t, tr.TakeRollovers())
}

func TestOpenSameDayDoesNotWrite(t *testing.T) {
    mem := NewMemoryBackend()
    seed := NewStateStore(mem, "ecotrack:v1", fixedClock("2024-01-01"), false)
    require.NoError(t, seed.Save(AppState{Habits: []Habit{{ID: "a", Title: "A", Done: true}}, LastDay: "2024-01-01", Streak: 4}))

    tr := openTracker(t, mem, "2024-01-01")
    assert.Equal(t, 1, mem.Writes())
    assert.Equal(t, 4, tr.State().Streak)
    assert.True(t, tr.State().Habits[0].Done)
}

func TestAddTrimsAndIgnoresBlank(t *testing.T) {
    mem := NewMemoryBackend()
    tr := openTracker(t, mem, "2024-01-01")

    require.NoError(t, tr.Add(""))
    require.NoError(t, tr.Add("   "))
    assert.Equal(t, 0, tr.Len())
    assert.Equal(t, 0, mem.Writes())

    require.NoError(t, tr.Add("  Recycle "))
    st := tr.State()
    require.Len(t, st.Habits, 1)
    assert.Equal(t, "Recycle", st.Habits[0].Title)
    assert.False(t, st.Habits[0].Done)
    assert.NotEmpty(t, st.Habits[0].ID)
    assert.Equal(t, 1, mem.Writes())

    require.NoError(t, tr.Add("Recycle"))
    assert.Equal(t, []string{"Recycle", "Recycle"}, titles(tr.State()), "duplicates are allowed")
}

func TestAddCleansLongAndMultilineTitles(t *testing.T) {
    tr := openTracker(t, NewMemoryBackend(), "2024-01-01")
    require.NoError(t, tr.Add("Turn off\nthe lights"))
    require.NoError(t, tr.Add(strings.Repeat("x", MaxTitleLen+10)))
    st := tr.State()
    assert.Equal(t, "Turn off the lights", st.Habits[0].Title)
    assert.Equal(t, strings.Repeat("x", MaxTitleLen)+"…", st.Habits[1].Title)
}

func TestToggleSetDoneAndBounds(t *testing.T) {
    mem := NewMemoryBackend()
    tr := openTracker(t, mem, "2024-01-01")
    require.NoError(t, tr.Add("A"))
    require.NoError(t, tr.Add("B"))

    require.NoError(t, tr.Toggle(1))
    assert.True(t, tr.State().Habits[1].Done)
    require.NoError(t, tr.Toggle(1))
    assert.False(t, tr.State().Habits[1].Done)

    require.NoError(t, tr.SetDone(0, true))
    require.NoError(t, tr.SetDone(0, true))
    assert.True(t, tr.State().Habits[0].Done)

    before := tr.State()
    writes := mem.Writes()
    require.NoError(t, tr.Toggle(2))
    require.NoError(t, tr.Toggle(-1))
    require.NoError(t, tr.SetDone(9, true))
    assert.Equal(t, before, tr.State())
    assert.Equal(t, writes, mem.Writes())
}

func TestDeleteOutOfRangeIsNoop(t *testing.T) {
    tr := openTracker(t, NewMemoryBackend(), "2024-01-01")
    require.NoError(t, tr.Add("A"))
    require.NoError(t, tr.Add("B"))

    require.NoError(t, tr.Delete(5))
    assert.Equal(t, 2, tr.Len())

    require.NoError(t, tr.Delete(0))
    assert.Equal(t, []string{"B"}, titles(tr.State()))
}

func TestClearAllAndResetDayKeepStreak(t *testing.T) {
    mem := NewMemoryBackend()
    seed := NewStateStore(mem, "ecotrack:v1", fixedClock("2024-01-03"), false)
    require.NoError(t, seed.Save(AppState{
        Habits:  []Habit{{ID: "a", Title: "A", Done: true}, {ID: "b", Title: "B", Done: true}},
        LastDay: "2024-01-03",
        Streak:  5,
    }))
    tr := openTracker(t, mem, "2024-01-03")

    require.NoError(t, tr.ResetDay())
    st := tr.State()
    assert.False(t, st.Habits[0].Done)
    assert.False(t, st.Habits[1].Done)
    assert.Equal(t, 5, st.Streak)
    assert.Equal(t, "2024-01-03", st.LastDay)

    require.NoError(t, tr.ClearAll())
    st = tr.State()
    assert.Empty(t, st.Habits)
    assert.Equal(t, 5, st.Streak)
    assert.Equal(t, "2024-01-03", st.LastDay)
    assert.Equal(t, st, seed.Load())
}

func TestStateIsACopy(t *testing.T) {
    tr := openTracker(t, NewMemoryBackend(), "2024-01-01")
    require.NoError(t, tr.Add("A"))
    st := tr.State()
    st.Habits[0].Done = true
    assert.False(t, tr.State().Habits[0].Done)
}

func TestIndexOfFollowsDeletes(t *testing.T) {
    tr := openTracker(t, NewMemoryBackend(), "2024-01-01")
    require.NoError(t, tr.Add("A"))
    require.NoError(t, tr.Add("B"))
    idB := tr.State().Habits[1].ID

    assert.Equal(t, 1, tr.IndexOf(idB))
    require.NoError(t, tr.Delete(0))
    assert.Equal(t, 0, tr.IndexOf(idB))
    assert.Equal(t, -1, tr.IndexOf("missing"))
    assert.Equal(t, -1, tr.IndexOf(""))
}

func TestEnsureTodayAcrossMidnight(t *testing.T) {
    mem := NewMemoryBackend()
    now := time.Date(2024, 6, 1, 23, 59, 0, 0, time.Local)
    tr, err := Open(NewStateStore(mem, "ecotrack:v1", func() time.Time { return now }, false))
    require.NoError(t, err)
    require.NoError(t, tr.Add("A"))
    require.NoError(t, tr.Toggle(0))

    changed, err := tr.EnsureToday()
    require.NoError(t, err)
    assert.False(t, changed)

    now = now.Add(2 * time.Minute)
    changed, err = tr.EnsureToday()
    require.NoError(t, err)
    assert.True(t, changed)
    assert.Equal(t, 1, tr.State().Streak)
    assert.Equal(t, "2024-06-02", tr.State().LastDay)

    changed, err = tr.EnsureToday()
    require.NoError(t, err)
    assert.False(t, changed)
}

func TestReplaceNormalizesAndRollsOver(t *testing.T) {
    tr := openTracker(t, NewMemoryBackend(), "2024-01-05")
    err := tr.Replace(AppState{
        Habits:  []Habit{{Title: " Compost ", Done: true}},
        LastDay: "2024-01-04",
        Streak:  1,
    })
    require.NoError(t, err)
    st := tr.State()
    require.Len(t, st.Habits, 1)
    assert.Equal(t, "Compost", st.Habits[0].Title)
    assert.NotEmpty(t, st.Habits[0].ID)
    assert.False(t, st.Habits[0].Done)
    assert.Equal(t, 2, st.Streak)
    assert.Equal(t, "2024-01-05", st.LastDay)

    assert.ErrorIs(t, tr.Replace(AppState{LastDay: "bad"}), ErrInvalidState)
}

func TestReloadPicksUpExternalWrite(t *testing.T) {
    mem := NewMemoryBackend()
    tr := openTracker(t, mem, "2024-01-01")
    other := openTracker(t, mem, "2024-01-01")
    require.NoError(t, other.Add("From elsewhere"))

    assert.Equal(t, 0, tr.Len())
    require.NoError(t, tr.Reload())
    assert.Equal(t, []string{"From elsewhere"}, titles(tr.State()))
}

func TestCommandAfterMidnightRollsOverFirst(t *testing.T) {
    mem := NewMemoryBackend()
    seed := NewStateStore(mem, "ecotrack:v1", fixedClock("2024-01-01"), false)
    require.NoError(t, seed.Save(AppState{
        Habits:  []Habit{{ID: "a", Title: "A", Done: true}, {ID: "b", Title: "B"}},
        LastDay: "2024-01-01",
        Streak:  5,
    }))

    now, _ := time.ParseInLocation(DayLayout, "2024-01-01", time.Local)
    now = now.Add(23*time.Hour + 59*time.Minute)
    tr, err := Open(NewStateStore(mem, "ecotrack:v1", func() time.Time { return now }, false))
    require.NoError(t, err)
    assert.Equal(t, "2024-01-01", tr.State().LastDay)

    // midnight passes with no tick in between
    now = now.Add(2 * time.Minute)
    require.NoError(t, tr.Toggle(1))

    want := AppState{
        Habits:  []Habit{{ID: "a", Title: "A"}, {ID: "b", Title: "B", Done: true}},
        LastDay: "2024-01-02",
        Streak:  0,
    }
    assert.Equal(t, want, tr.State())
    assert.Equal(t, want, NewStateStore(mem, "ecotrack:v1", fixedClock("2024-01-02"), false).Load())

    evs := tr.TakeRollovers()
    require.Len(t, evs, 1)
    assert.False(t, evs[0].Completed)

    // a later tick finds nothing to do
    changed, err := tr.EnsureToday()
    require.NoError(t, err)
    assert.False(t, changed)
    assert.True(t, tr.State().Habits[1].Done)
}

func TestEveryCommandRollsOver(t *testing.T) {
    cmds := map[string]func(*Tracker) error{
        "add":      func(tr *Tracker) error { return tr.Add("C") },
        "setDone":  func(tr *Tracker) error { return tr.SetDone(0, true) },
        "delete":   func(tr *Tracker) error { return tr.Delete(9) },
        "clearAll": func(tr *Tracker) error { return tr.ClearAll() },
        "resetDay": func(tr *Tracker) error { return tr.ResetDay() },
    }
    for name, run := range cmds {
        t.Run(name, func(t *testing.T) {
            mem := NewMemoryBackend()
            require.NoError(t, NewStateStore(mem, "k", fixedClock("2024-01-01"), false).Save(AppState{
                Habits: []Habit{{ID: "a", Title: "A", Done: true}}, LastDay: "2024-01-01", Streak: 1,
            }))
            day := "2024-01-01"
            clock := func() time.Time { return fixedClock(day)() }
            tr, err := Open(NewStateStore(mem, "k", clock, false))
            require.NoError(t, err)

            day = "2024-01-02"
            require.NoError(t, run(tr))
            st := tr.State()
            assert.Equal(t, "2024-01-02", st.LastDay)
            assert.Equal(t, 2, st.Streak)
        })
    }
}
