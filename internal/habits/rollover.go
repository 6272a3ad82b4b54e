package habits

// RolloverEvent describes one applied day change.
type RolloverEvent struct {
    From      string // previous lastDay
    To        string // new lastDay
    Completed bool   // every habit was done on From
    Streak    int    // streak after the change
}

// Rollover applies the day-change rule when state.LastDay differs from today:
// the streak grows by one if every habit of a non-empty list was done and drops
// to zero otherwise, all habits are unchecked and LastDay becomes today. The
// input is never modified; on the same day it is returned as is.
func Rollover(state AppState, today string) (AppState, bool) {
    if state.LastDay == today {
        return state, false
    }
    next := state.Clone()
    if AllDone(state.Habits) {
        next.Streak++
    } else {
        next.Streak = 0
    }
    for i := range next.Habits {
        next.Habits[i].Done = false
    }
    next.LastDay = today
    return next, true
}
