package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"ecotrack/internal/config"
	"ecotrack/internal/habits"
	"ecotrack/internal/hooks"
	"ecotrack/internal/tui"
	"ecotrack/internal/version"
)

func main() {
    // Flags
    var (
        cfgPath     string
        backend     string
        dataDir     string
        storageKey  string
        hooksDir    string
        exportDir   string
        debug       bool
        showVersion bool
        doBackup    bool
        doRestore   bool
        restoreArg  string // backup suffix, skips the picker
        noWatch     bool
        saveCfg     bool
        batch       batchOpts
    )

    flag.StringVar(&cfgPath, "config", filepath.Join(config.UserHome(), ".config", "ecotrack.json"), "config file path (.json or .yaml)")
    flag.StringVar(&backend, "backend", "", "storage backend: sqlite | file (overrides config)")
    flag.StringVar(&dataDir, "data-dir", "", "override the data directory")
    flag.StringVar(&storageKey, "storage-key", "", "key the state is stored under")
    flag.StringVar(&hooksDir, "hooks-dir", "", "directory containing JS hook files")
    flag.StringVar(&exportDir, "export-dir", "", "default directory for TUI exports and reports")
    flag.BoolVar(&debug, "debug", false, "print debug info (paths, writes, rollovers)")
    flag.BoolVar(&showVersion, "version", false, "print version and exit")
    flag.BoolVar(&doBackup, "backup", false, "write a timestamped backup of the store and exit")
    flag.BoolVar(&doRestore, "restore", false, "pick a backup to restore")
    flag.StringVar(&restoreArg, "restore-suffix", "", "restore the backup with this suffix without prompting")
    flag.BoolVar(&noWatch, "no-watch", false, "do not reload when the store changes on disk")
    flag.BoolVar(&saveCfg, "write-config", false, "write the merged settings to -config and exit")

    flag.BoolVar(&batch.list, "list", false, "print today's habits and exit")
    flag.StringVar(&batch.add, "add", "", "add a habit")
    flag.IntVar(&batch.toggle, "toggle", 0, "toggle habit N (1-based, as printed by -list)")
    flag.IntVar(&batch.del, "delete", 0, "delete habit N (1-based, as printed by -list)")
    flag.BoolVar(&batch.resetDay, "reset-day", false, "uncheck all habits for today")
    flag.BoolVar(&batch.clearAll, "clear-all", false, "delete all habits")
    flag.BoolVar(&batch.yes, "yes", false, "do not ask for confirmation")
    flag.StringVar(&batch.dump, "dump", "", "write a markdown report to this file")
    flag.StringVar(&batch.export, "export", "", "export the state to this zip file")
    flag.StringVar(&batch.imp, "import", "", "replace the state with the one in this zip file")
    flag.Parse()

    if showVersion {
        fmt.Println(version.String())
        return
    }

    // Load config
    cfg := config.Default()
    if err := config.Load(cfgPath, &cfg); err != nil && !os.IsNotExist(err) {
        log.Printf("warning: failed to load config: %v", err)
    }
    // Merge overrides
    if backend != "" { cfg.Backend = backend }
    if dataDir != "" { cfg.DataDir = dataDir }
    if storageKey != "" { cfg.StorageKey = storageKey }
    if hooksDir != "" { cfg.HooksDir = hooksDir }
    if exportDir != "" { cfg.ExportDir = exportDir }
    if noWatch { cfg.Watch = false }
    if debug { cfg.Debug = true }
    if err := cfg.Validate(); err != nil {
        log.Fatalf("invalid config: %v", err)
    }
    hooks.EnableDebug(cfg.Debug)

    if saveCfg {
        if err := writeConfig(cfgPath, cfg, os.Stdout); err != nil { log.Fatal(err) }
        return
    }

    storePath, err := habits.StorePath(cfg)
    if err != nil { log.Fatalf("resolve data dir: %v", err) }
    if err := config.EnsureDir(filepath.Dir(storePath)); err != nil {
        log.Fatalf("create data dir: %v", err)
    }
    if cfg.Debug { log.Printf("[main] backend=%s store=%s key=%s", cfg.Backend, storePath, cfg.StorageKey) }

    interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))

    // Restore runs before the store is opened
    if doRestore || restoreArg != "" {
        suffix := restoreArg
        if suffix == "" {
            infos, err := habits.ListBackups(storePath)
            if err != nil { log.Fatalf("list backups: %v", err) }
            if len(infos) == 0 {
                fmt.Println("no backups found next to", storePath)
                return
            }
            if !interactive {
                for _, b := range infos { fmt.Printf("%s\t%s\t%d\n", b.Suffix, b.ModTime.Format(time.RFC3339), b.Size) }
                fmt.Println("pass -restore-suffix to pick one")
                return
            }
            final, err := tea.NewProgram(tui.NewRestore(infos, storePath)).Run()
            if err != nil { log.Fatalf("restore picker: %v", err) }
            suffix = final.(tui.RestoreModel).Selected()
            if suffix == "" { return }
        }
        if err := habits.RestoreFromBackup(storePath, suffix, cfg.Debug); err != nil {
            log.Fatalf("restore failed: %v", err)
        }
        fmt.Printf("restored %s from %s\n", storePath, suffix)
        return
    }

    be, closeFn, err := habits.OpenBackend(cfg)
    if err != nil { log.Fatalf("open store: %v", err) }
    defer func() {
        if err := closeFn(); err != nil { log.Printf("close store: %v", err) }
    }()
    store := habits.NewStateStore(be, cfg.StorageKey, time.Now, cfg.Debug)

    if doBackup {
        b, ok := be.(habits.Backuper)
        if !ok { log.Fatalf("backend %s cannot be backed up", cfg.Backend) }
        p, err := b.Backup("")
        if err != nil { log.Fatalf("backup failed: %v", err) }
        fmt.Println("backup written:", p)
        return
    }

    // Batch operations
    if batch.any() || !interactive {
        tr, err := habits.Open(store)
        if err != nil { log.Printf("warning: %v", err) }
        if !batch.any() { batch.list = true }
        if err := runBatch(batch, cfg, tr, be, os.Stdin, os.Stdout, interactive); err != nil {
            log.Printf("error: %v", err)
            _ = closeFn()
            os.Exit(1)
        }
        return
    }

    if cfg.Debug {
        f, err := tea.LogToFile(filepath.Join(filepath.Dir(storePath), "debug.log"), "ecotrack")
        if err == nil { defer f.Close() }
    }
    p := tea.NewProgram(tui.New(cfg, store, be, storePath))
    if _, err := p.Run(); err != nil {
        log.Fatalf("tui error: %v", err)
    }
}
