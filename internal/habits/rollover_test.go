package habits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRolloverSameDayIsNoop(t *testing.T) {
    st := AppState{
        Habits:  []Habit{{ID: "1", Title: "A", Done: true}, {ID: "2", Title: "B"}},
        LastDay: "2024-01-02",
        Streak:  7,
    }
    got, changed := Rollover(st, "2024-01-02")
    assert.False(t, changed)
    assert.Equal(t, st, got)
}

func TestRolloverAllDoneExtendsStreak(t *testing.T) {
    st := AppState{
        Habits:  []Habit{{ID: "a", Title: "A", Done: true}, {ID: "b", Title: "B", Done: true}},
        LastDay: "2024-01-01",
        Streak:  2,
    }
    got, changed := Rollover(st, "2024-01-02")
    assert.True(t, changed)
    assert.Equal(t, AppState{
        Habits:  []Habit{{ID: "a", Title: "A", Done: false}, {ID: "b", Title: "B", Done: false}},
        LastDay: "2024-01-02",
        Streak:  3,
    }, got)
    // input untouched
    assert.True(t, st.Habits[0].Done)
    assert.Equal(t, "2024-01-01", st.LastDay)
}

func TestRolloverStreakRules(t *testing.T) {
    cases := []struct {
        name   string
        habits []Habit
        streak int
        want   int
    }{
        {"empty list resets", []Habit{}, 5, 0},
        {"nil list resets", nil, 1, 0},
        {"one pending resets", []Habit{{Title: "A", Done: true}, {Title: "B"}}, 4, 0},
        {"all pending resets", []Habit{{Title: "A"}}, 9, 0},
        {"single done extends", []Habit{{Title: "A", Done: true}}, 0, 1},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            got, changed := Rollover(AppState{Habits: tc.habits, LastDay: "2023-12-31", Streak: tc.streak}, "2024-01-01")
            assert.True(t, changed)
            assert.Equal(t, tc.want, got.Streak)
            assert.Equal(t, "2024-01-01", got.LastDay)
            assert.Len(t, got.Habits, len(tc.habits))
            for i, h := range got.Habits {
                assert.False(t, h.Done)
                assert.Equal(t, tc.habits[i].Title, h.Title)
            }
        })
    }
}

func TestRolloverIdempotentWithinDay(t *testing.T) {
    st := AppState{Habits: []Habit{{Title: "A", Done: true}}, LastDay: "2024-03-01", Streak: 1}
    once, _ := Rollover(st, "2024-03-02")
    twice, changed := Rollover(once, "2024-03-02")
    assert.False(t, changed)
    assert.Equal(t, once, twice)
}

func TestProgressOf(t *testing.T) {
    assert.Equal(t, Progress{}, ProgressOf(nil))
    assert.Equal(t, Progress{Done: 1, Total: 3, Percent: 33}, ProgressOf([]Habit{{Done: true}, {}, {}}))
    assert.Equal(t, Progress{Done: 2, Total: 3, Percent: 67}, ProgressOf([]Habit{{Done: true}, {Done: true}, {}}))
    assert.Equal(t, Progress{Done: 1, Total: 8, Percent: 13}, ProgressOf([]Habit{{Done: true}, {}, {}, {}, {}, {}, {}, {}}))
}
