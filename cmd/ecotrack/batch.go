package main

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"ecotrack/internal/config"
	"ecotrack/internal/habits"
	"ecotrack/internal/zipper"
)

// batchOpts collects the non-interactive commands. Habit numbers are 1-based
// as printed by -list; 0 means unset.
type batchOpts struct {
    list     bool
    add      string
    toggle   int
    del      int
    resetDay bool
    clearAll bool
    yes      bool
    dump     string
    export   string
    imp      string
}

func (o batchOpts) any() bool {
    return o.list || o.add != "" || o.toggle != 0 || o.del != 0 || o.resetDay || o.clearAll ||
        o.dump != "" || o.export != "" || o.imp != ""
}

// runBatch applies the commands in a fixed order: import, add, toggle, delete,
// reset-day, clear-all, then the outputs (dump, export, list).
func runBatch(o batchOpts, cfg config.Config, tr *habits.Tracker, be habits.Backend, in io.Reader, out io.Writer, interactive bool) error {
    now := time.Now()
    if o.imp != "" {
        st, man, err := zipper.ImportState(o.imp, tr.Today())
        if err != nil { return fmt.Errorf("import failed: %w", err) }
        backup(be, out)
        if err := tr.Replace(st); err != nil { return fmt.Errorf("import failed: %w", err) }
        fmt.Fprintf(out, "imported %d habits (streak %d) from %s\n", man.Habits, man.Streak, o.imp)
    }
    if o.add != "" {
        before := tr.Len()
        if err := tr.Add(o.add); err != nil { return err }
        if tr.Len() == before {
            fmt.Fprintln(out, "empty title ignored")
        } else {
            fmt.Fprintf(out, "added #%d\n", tr.Len())
        }
    }
    if o.toggle != 0 {
        if err := tr.Toggle(o.toggle - 1); err != nil { return err }
    }
    if o.del != 0 {
        if err := tr.Delete(o.del - 1); err != nil { return err }
    }
    if o.resetDay {
        if err := tr.ResetDay(); err != nil { return err }
    }
    if o.clearAll && tr.Len() > 0 {
        ok := o.yes
        if !ok && interactive { ok = confirm(in, out, fmt.Sprintf("Delete ALL %d habits? [y/N] ", tr.Len())) }
        if !ok {
            fmt.Fprintln(out, "clear-all skipped (pass -yes to confirm)")
        } else {
            backup(be, out)
            if err := tr.ClearAll(); err != nil { return err }
            fmt.Fprintln(out, "all habits deleted")
        }
    }
    if o.dump != "" {
        if err := habits.DumpMarkdown(tr.State(), now, o.dump); err != nil { return fmt.Errorf("dump failed: %w", err) }
        fmt.Fprintf(out, "report written to %s\n", o.dump)
    }
    if o.export != "" {
        if err := zipper.ExportState(tr.State(), cfg.StorageKey, now, o.export); err != nil {
            return fmt.Errorf("export failed: %w", err)
        }
        fmt.Fprintf(out, "exported -> %s\n", o.export)
    }
    if o.list {
        printList(out, tr.State())
    }
    return nil
}

// writeConfig stores the merged file and flag settings so later runs start
// from them.
func writeConfig(path string, cfg config.Config, out io.Writer) error {
    if err := config.Save(path, cfg); err != nil { return fmt.Errorf("write config: %w", err) }
    fmt.Fprintf(out, "config written to %s\n", path)
    return nil
}

func printList(w io.Writer, st habits.AppState) {
    p := habits.ProgressOf(st.Habits)
    fmt.Fprintf(w, "%s  %d/%d done  %d%%  streak %d\n", st.LastDay, p.Done, p.Total, p.Percent, st.Streak)
    for i, h := range st.Habits {
        mark := " "
        if h.Done { mark = "x" }
        fmt.Fprintf(w, "%2d. [%s] %s\n", i+1, mark, h.Title)
    }
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
    fmt.Fprint(out, prompt)
    line, _ := bufio.NewReader(in).ReadString('\n')
    line = strings.ToLower(strings.TrimSpace(line))
    return line == "y" || line == "yes"
}

// backup snapshots the store before destructive commands. Failure only warns.
func backup(be habits.Backend, out io.Writer) {
    b, ok := be.(habits.Backuper)
    if !ok { return }
    p, err := b.Backup("")
    if err != nil {
        fmt.Fprintf(out, "warning: backup skipped: %v\n", err)
        return
    }
    fmt.Fprintf(out, "backup: %s\n", filepath.Base(p))
}
