package habits

import (
	"time"
)

// DayLayout is the calendar-day format stored in AppState.LastDay.
const DayLayout = "2006-01-02"

// Habit is one checklist entry. ID stays stable across reorders and deletes.
type Habit struct {
    ID    string `json:"id"`
    Title string `json:"title"`
    Done  bool   `json:"done"`
}

// AppState is everything the tracker persists.
type AppState struct {
    Habits  []Habit `json:"habits"`
    LastDay string  `json:"lastDay"`
    Streak  int     `json:"streak"`
}

// Clock returns the current instant. Tests pin it.
type Clock func() time.Time

// DayKey formats t as a local calendar day.
func DayKey(t time.Time) string { return t.Local().Format(DayLayout) }

// ValidDay reports whether s is a YYYY-MM-DD calendar date.
func ValidDay(s string) bool {
    if len(s) != len(DayLayout) { return false }
    _, err := time.Parse(DayLayout, s)
    return err == nil
}

// DefaultState is the empty state for a first run or an unreadable store.
func DefaultState(today string) AppState {
    return AppState{Habits: []Habit{}, LastDay: today, Streak: 0}
}

// Clone returns a deep copy so callers can't reach into the owner's slice.
func (s AppState) Clone() AppState {
    out := s
    out.Habits = make([]Habit, len(s.Habits))
    copy(out.Habits, s.Habits)
    return out
}

// AllDone is true only for a non-empty list where every habit is done.
func AllDone(hs []Habit) bool {
    if len(hs) == 0 { return false }
    for _, h := range hs {
        if !h.Done { return false }
    }
    return true
}
