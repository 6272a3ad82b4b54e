package hooks

import (
    "log"
    "os"
    "path/filepath"
    "sort"
    "strings"

    "github.com/dop251/goja"
)

// Known hook functions. Anything else defined by a script is ignored.
var Known = []string{"suggestions", "renderHabitItem", "onRollover"}

var debug bool

// EnableDebug turns on per-call logging.
func EnableDebug(on bool) { debug = on }

// HookEnv is a JS runtime loaded with the user's hook scripts. It must only be
// used from one goroutine.
type HookEnv struct{ rt *goja.Runtime }

func LoadDir(dir string) (*HookEnv, error) {
    env := &HookEnv{rt: goja.New()}
    // expose minimal helpers
    env.rt.Set("readText", func(call goja.FunctionCall) goja.Value {
        if len(call.Arguments) < 1 { return goja.Undefined() }
        p := call.Arguments[0].String()
        b, err := os.ReadFile(p)
        if err != nil { return goja.Null() }
        return env.rt.ToValue(string(b))
    })
    env.rt.Set("log", func(call goja.FunctionCall) goja.Value {
        parts := make([]string, 0, len(call.Arguments))
        for _, a := range call.Arguments { parts = append(parts, a.String()) }
        log.Printf("[hooks] %s", strings.Join(parts, " "))
        return goja.Undefined()
    })
    if dir == "" { return env, nil }
    entries, err := os.ReadDir(dir)
    if err != nil { return env, nil }
    names := make([]string, 0, len(entries))
    for _, e := range entries {
        if e.IsDir() || filepath.Ext(e.Name()) != ".js" { continue }
        names = append(names, e.Name())
    }
    sort.Strings(names)
    for _, name := range names {
        b, err := os.ReadFile(filepath.Join(dir, name))
        if err != nil { continue }
        code := string(b)
        // strip simple ESM exports
        code = strings.ReplaceAll(code, "export function ", "function ")
        code = strings.ReplaceAll(code, "export const ", "const ")
        code = strings.ReplaceAll(code, "export let ", "let ")
        code = strings.ReplaceAll(code, "export var ", "var ")
        if _, err := env.rt.RunString(code); err != nil {
            log.Printf("[hooks] error evaluating %s: %v", name, err)
        } else if debug {
            log.Printf("[hooks] loaded %s", name)
        }
    }
    if debug {
        for _, fn := range Known {
            if env.Has(fn) { log.Printf("[hooks] function available: %s", fn) }
        }
    }
    return env, nil
}

// Has reports whether fn is defined as a function.
func (h *HookEnv) Has(fn string) bool {
    if h == nil || h.rt == nil { return false }
    _, ok := goja.AssertFunction(h.rt.Get(fn))
    return ok
}

func (h *HookEnv) Call(fn string, arg any) (goja.Value, bool) {
    if h == nil || h.rt == nil { return goja.Undefined(), false }
    v := h.rt.Get(fn)
    if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
        if debug { log.Printf("[hooks] function not found: %s", fn) }
        return goja.Undefined(), false
    }
    if f, ok := goja.AssertFunction(v); ok {
        var args []goja.Value
        if arg != nil { args = append(args, h.rt.ToValue(arg)) }
        rv, err := f(goja.Undefined(), args...)
        if err != nil {
            log.Printf("[hooks] error calling %s: %v", fn, err)
            return goja.Undefined(), false
        }
        if debug { log.Printf("[hooks] %s returned: %#v", fn, rv.Export()) }
        return rv, true
    }
    log.Printf("[hooks] symbol is not a function: %s", fn)
    return goja.Undefined(), false
}

func (h *HookEnv) CallString(fn string, arg any) (string, bool) {
    if rv, ok := h.Call(fn, arg); ok && !goja.IsUndefined(rv) && !goja.IsNull(rv) { return rv.String(), true }
    return "", false
}

func (h *HookEnv) CallExported(fn string, arg any) (any, bool) {
    if rv, ok := h.Call(fn, arg); ok { return rv.Export(), true }
    return nil, false
}

func (h *HookEnv) CallStringSlice(fn string, arg any) ([]string, bool) {
    if rv, ok := h.Call(fn, arg); ok {
        if arr, ok2 := rv.Export().([]any); ok2 {
            out := make([]string, 0, len(arr))
            for _, v := range arr {
                if s, ok3 := v.(string); ok3 { out = append(out, s) }
            }
            return out, true
        }
    }
    return nil, false
}
