package habits

import (
	"log"

	"github.com/google/uuid"
)

// Tracker is the single owner of the in-memory AppState. Every command first
// applies a pending day change, then mutates the state and saves it
// synchronously. A Tracker is not safe for
// concurrent use; hand it to one goroutine.
type Tracker struct {
    store   *StateStore
    now     Clock
    state   AppState
    pending []RolloverEvent
}

// Open loads the persisted state and applies the day rollover before anything
// else can see it.
func Open(store *StateStore) (*Tracker, error) {
    t := &Tracker{store: store, now: store.now}
    t.state = store.Load()
    if _, err := t.EnsureToday(); err != nil {
        return t, err
    }
    return t, nil
}

// State returns a copy of the current state.
func (t *Tracker) State() AppState { return t.state.Clone() }

func (t *Tracker) Len() int { return len(t.state.Habits) }

func (t *Tracker) Progress() Progress { return ProgressOf(t.state.Habits) }

func (t *Tracker) Today() string { return DayKey(t.now()) }

// EnsureToday rolls the state over if the calendar day changed since LastDay.
// The rolled state is kept in memory even if saving it fails.
func (t *Tracker) EnsureToday() (bool, error) {
    today := t.Today()
    next, changed := Rollover(t.state, today)
    if !changed { return false, nil }
    ev := RolloverEvent{From: t.state.LastDay, To: today, Completed: AllDone(t.state.Habits), Streak: next.Streak}
    t.state = next
    t.pending = append(t.pending, ev)
    log.Printf("[rollover] %s -> %s completed=%t streak=%d", ev.From, ev.To, ev.Completed, ev.Streak)
    return true, t.store.Save(t.state)
}

// TakeRollovers returns the rollovers applied since the last call.
func (t *Tracker) TakeRollovers() []RolloverEvent {
    out := t.pending
    t.pending = nil
    return out
}

// Add appends a habit with the cleaned title. Blank titles are ignored.
func (t *Tracker) Add(title string) error {
    t.roll()
    clean, _ := CleanTitle(title)
    if clean == "" { return nil }
    t.state.Habits = append(t.state.Habits, Habit{ID: uuid.NewString(), Title: clean})
    return t.save()
}

// Toggle flips the habit at index. Out-of-range indices are ignored.
func (t *Tracker) Toggle(index int) error {
    t.roll()
    if !t.inRange(index) { return nil }
    t.state.Habits[index].Done = !t.state.Habits[index].Done
    return t.save()
}

// SetDone sets the completion flag of the habit at index.
func (t *Tracker) SetDone(index int, done bool) error {
    t.roll()
    if !t.inRange(index) { return nil }
    t.state.Habits[index].Done = done
    return t.save()
}

// Delete removes the habit at index. Out-of-range indices are ignored.
func (t *Tracker) Delete(index int) error {
    t.roll()
    if !t.inRange(index) { return nil }
    t.state.Habits = append(t.state.Habits[:index], t.state.Habits[index+1:]...)
    return t.save()
}

// ClearAll removes every habit; streak and LastDay are kept.
func (t *Tracker) ClearAll() error {
    t.roll()
    t.state.Habits = []Habit{}
    return t.save()
}

// ResetDay unchecks every habit without touching LastDay or the streak.
func (t *Tracker) ResetDay() error {
    t.roll()
    for i := range t.state.Habits {
        t.state.Habits[i].Done = false
    }
    return t.save()
}

// IndexOf returns the current position of the habit with id, or -1.
func (t *Tracker) IndexOf(id string) int {
    if id == "" { return -1 }
    for i, h := range t.state.Habits {
        if h.ID == id { return i }
    }
    return -1
}

// Reload re-reads the store, e.g. after another process wrote it.
func (t *Tracker) Reload() error {
    t.state = t.store.Load()
    _, err := t.EnsureToday()
    return err
}

// Replace swaps in an imported state after normalizing it the same way a load
// would, then applies the rollover for today.
func (t *Tracker) Replace(st AppState) error {
    b, err := Encode(st)
    if err != nil { return err }
    norm, err := Decode(b, t.Today())
    if err != nil { return err }
    t.state = norm
    if err := t.save(); err != nil { return err }
    _, err = t.EnsureToday()
    return err
}

// roll catches a midnight that passed since the last command. A failed save is
// retried by the command's own save.
func (t *Tracker) roll() {
    if _, err := t.EnsureToday(); err != nil { log.Printf("[rollover] save failed: %v", err) }
}

func (t *Tracker) inRange(i int) bool { return i >= 0 && i < len(t.state.Habits) }

func (t *Tracker) save() error { return t.store.Save(t.state) }
