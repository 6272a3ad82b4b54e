package habits

import (
    "log"

    "ecotrack/internal/hooks"
)

// SuggestionsWithHooks returns the built-in suggestions followed by any titles
// a suggestions() hook adds. Duplicates and blanks are dropped.
func SuggestionsWithHooks(env *hooks.HookEnv) []string {
    out := Suggestions()
    if env == nil || !env.Has("suggestions") { return out }
    extra, ok := env.CallStringSlice("suggestions", nil)
    if !ok { return out }
    seen := map[string]bool{}
    for _, s := range out { seen[s] = true }
    for _, s := range extra {
        clean, _ := CleanTitle(s)
        if clean == "" || seen[clean] { continue }
        seen[clean] = true
        out = append(out, clean)
    }
    return out
}

// RenderItemWithHooks asks renderHabitItem(habit) for a row override. Empty
// strings mean "keep the default".
func RenderItemWithHooks(env *hooks.HookEnv, h Habit, index int) (title, desc string, ok bool) {
    if env == nil || !env.Has("renderHabitItem") { return "", "", false }
    out, ok := env.CallExported("renderHabitItem", habitToMap(h, index))
    if !ok { return "", "", false }
    m, ok := out.(map[string]any)
    if !ok { return "", "", false }
    title, _ = m["title"].(string)
    desc, _ = m["desc"].(string)
    if desc == "" { desc, _ = m["description"].(string) }
    return title, desc, title != "" || desc != ""
}

// NotifyRollover passes a detached summary to onRollover(event). The hook sees
// copies only and its return value is ignored.
func NotifyRollover(env *hooks.HookEnv, ev RolloverEvent) {
    if env == nil || !env.Has("onRollover") { return }
    if _, ok := env.Call("onRollover", map[string]any{
        "from":      ev.From,
        "to":        ev.To,
        "completed": ev.Completed,
        "streak":    ev.Streak,
    }); ok {
        log.Printf("[hooks] onRollover notified for %s", ev.To)
    }
}

func habitToMap(h Habit, index int) map[string]any {
    return map[string]any{
        "id":    h.ID,
        "index": index,
        "title": h.Title,
        "done":  h.Done,
    }
}
