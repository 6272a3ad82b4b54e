package tui

import (
    "log"
    "path/filepath"

    "github.com/fsnotify/fsnotify"
    tea "github.com/charmbracelet/bubbletea"
)

type watchStartedMsg struct{ w *fsnotify.Watcher }
type storeChangedMsg struct{}

// startWatchCmd watches the store's directory; watching the file itself misses
// atomic renames.
func (m model) startWatchCmd() tea.Cmd {
    if !m.cfg.Watch || m.storePath == "" || m.watcher != nil { return nil }
    dir := filepath.Dir(m.storePath)
    debug := m.cfg.Debug
    return func() tea.Msg {
        w, err := fsnotify.NewWatcher()
        if err != nil {
            log.Printf("[watch] disabled: %v", err)
            return nil
        }
        if err := w.Add(dir); err != nil {
            log.Printf("[watch] disabled, cannot watch %s: %v", dir, err)
            _ = w.Close()
            return nil
        }
        if debug { log.Printf("[watch] watching %s", dir) }
        return watchStartedMsg{w}
    }
}

// waitForChangeCmd blocks until the store file (or its sqlite WAL) changes.
func waitForChangeCmd(w *fsnotify.Watcher, storePath string) tea.Cmd {
    if w == nil { return nil }
    base := filepath.Base(storePath)
    return func() tea.Msg {
        for {
            select {
            case ev, ok := <-w.Events:
                if !ok { return nil }
                if !isStoreFile(filepath.Base(ev.Name), base) { continue }
                if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
                    return storeChangedMsg{}
                }
            case err, ok := <-w.Errors:
                if !ok { return nil }
                log.Printf("[watch] error: %v", err)
            }
        }
    }
}

// isStoreFile ignores backups and temp files written next to the store.
func isStoreFile(name, base string) bool {
    return name == base || name == base+"-wal"
}
