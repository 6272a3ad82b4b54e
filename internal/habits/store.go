package habits

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Backend is a minimal key/value text store.
type Backend interface {
    Get(key string) (string, bool, error)
    Set(key, value string) error
}

var ErrInvalidState = errors.New("invalid state")

// StateStore owns the encoding of AppState inside a Backend.
type StateStore struct {
    backend Backend
    key     string
    now     Clock
    debug   bool
}

func NewStateStore(b Backend, key string, now Clock, debug bool) *StateStore {
    return &StateStore{backend: b, key: key, now: now, debug: debug}
}

func (s *StateStore) Key() string { return s.key }

// Today is the store clock's current local day.
func (s *StateStore) Today() string { return DayKey(s.now()) }

// Load returns the persisted state, or the default state when nothing usable is
// stored. It never fails.
func (s *StateStore) Load() AppState {
    today := s.Today()
    raw, ok, err := s.backend.Get(s.key)
    if err != nil {
        log.Printf("[store] read %s failed, starting empty: %v", s.key, err)
        return DefaultState(today)
    }
    if !ok {
        if s.debug { log.Printf("[store] no saved state under %s", s.key) }
        return DefaultState(today)
    }
    st, err := Decode([]byte(raw), today)
    if err != nil {
        log.Printf("[store] discarding unreadable state under %s: %v", s.key, err)
        return DefaultState(today)
    }
    if s.debug { log.Printf("[store] loaded %s: habits=%d lastDay=%s streak=%d", s.key, len(st.Habits), st.LastDay, st.Streak) }
    return st
}

// Save writes the whole state with a single Set.
func (s *StateStore) Save(st AppState) error {
    b, err := Encode(st)
    if err != nil { return err }
    if err := s.backend.Set(s.key, string(b)); err != nil {
        return fmt.Errorf("save %s: %w", s.key, err)
    }
    if s.debug { log.Printf("[store] saved %s: habits=%d lastDay=%s streak=%d", s.key, len(st.Habits), st.LastDay, st.Streak) }
    return nil
}

// Encode serializes a state. States that break the invariants are refused so
// nothing invalid reaches the backend.
func Encode(st AppState) ([]byte, error) {
    if !ValidDay(st.LastDay) {
        return nil, fmt.Errorf("%w: lastDay %q", ErrInvalidState, st.LastDay)
    }
    if st.Streak < 0 {
        return nil, fmt.Errorf("%w: streak %d", ErrInvalidState, st.Streak)
    }
    if st.Habits == nil { st.Habits = []Habit{} }
    return json.Marshal(st)
}

// Decode parses a stored document field by field. A missing or mistyped field
// falls back to its default without discarding the others; only text that is
// not a JSON object is an error.
func Decode(b []byte, today string) (AppState, error) {
    var fields map[string]json.RawMessage
    if err := json.Unmarshal(b, &fields); err != nil {
        return AppState{}, fmt.Errorf("decode state: %w", err)
    }
    st := DefaultState(today)
    var items []json.RawMessage
    if raw, ok := fields["habits"]; ok && json.Unmarshal(raw, &items) == nil {
        for _, it := range items {
            if h, ok := decodeHabit(it); ok { st.Habits = append(st.Habits, h) }
        }
    }
    var day string
    if raw, ok := fields["lastDay"]; ok && json.Unmarshal(raw, &day) == nil && ValidDay(day) {
        st.LastDay = day
    }
    // counts written as 3.0 still count; fractions are truncated
    var streak float64
    if raw, ok := fields["streak"]; ok && json.Unmarshal(raw, &streak) == nil && streak >= 1 && streak <= math.MaxInt32 {
        st.Streak = int(streak)
    }
    return st, nil
}

// decodeHabit keeps an entry only when it has a non-blank string title.
func decodeHabit(raw json.RawMessage) (Habit, bool) {
    var f map[string]json.RawMessage
    if json.Unmarshal(raw, &f) != nil { return Habit{}, false }
    var h Habit
    if json.Unmarshal(f["title"], &h.Title) != nil { return Habit{}, false }
    h.Title = strings.TrimSpace(h.Title)
    if h.Title == "" { return Habit{}, false }
    if json.Unmarshal(f["id"], &h.ID) != nil || h.ID == "" { h.ID = uuid.NewString() }
    if json.Unmarshal(f["done"], &h.Done) != nil { h.Done = false }
    return h, true
}

// MemoryBackend keeps values in process memory.
type MemoryBackend struct {
    mu    sync.Mutex
    items map[string]string
    sets  int
}

func NewMemoryBackend() *MemoryBackend { return &MemoryBackend{items: map[string]string{}} }

func (m *MemoryBackend) Get(key string) (string, bool, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    v, ok := m.items[key]
    return v, ok, nil
}

func (m *MemoryBackend) Set(key, value string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.items[key] = value
    m.sets++
    return nil
}

// Writes counts Set calls.
func (m *MemoryBackend) Writes() int {
    m.mu.Lock()
    defer m.mu.Unlock()
    return m.sets
}

// Backuper is implemented by backends that can snapshot their data file.
type Backuper interface {
    Backup(suffix string) (string, error)
}
