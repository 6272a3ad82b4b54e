package habits

import "math"

// Progress summarizes today's completion for display.
type Progress struct {
    Done    int
    Total   int
    Percent int // rounded to the nearest percent, 0 for an empty list
}

// ProgressOf counts the done habits in hs.
func ProgressOf(hs []Habit) Progress {
    p := Progress{Total: len(hs)}
    for _, h := range hs {
        if h.Done { p.Done++ }
    }
    if p.Total > 0 {
        p.Percent = int(math.Round(float64(p.Done) / float64(p.Total) * 100))
    }
    return p
}
