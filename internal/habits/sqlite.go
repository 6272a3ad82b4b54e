package habits

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ecotrack/internal/config"
)

const (
    dbFileName   = "ecotrack.db"
    jsonFileName = "state.json"
    backupInfix  = ".bak-"
)

// SQLiteBackend keeps values in an ItemTable(key, value) table, the same shape
// browsers use for localStorage.
type SQLiteBackend struct {
    path  string
    db    *sql.DB
    debug bool
}

func OpenSQLite(path string, debug bool) (*SQLiteBackend, error) {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return nil, err }
    db, err := sql.Open("sqlite", path)
    if err != nil { return nil, fmt.Errorf("open %s: %w", path, err) }
    // one connection keeps PRAGMAs and transactions on the same handle
    db.SetMaxOpenConns(1)
    _, _ = db.Exec("PRAGMA busy_timeout=5000")
    _, _ = db.Exec("PRAGMA journal_mode=WAL")
    if _, err := db.Exec("CREATE TABLE IF NOT EXISTS ItemTable (key TEXT PRIMARY KEY, value BLOB)"); err != nil {
        db.Close()
        return nil, fmt.Errorf("init %s: %w", path, err)
    }
    if debug { log.Printf("[sqlite] opened %s", path) }
    return &SQLiteBackend{path: path, db: db, debug: debug}, nil
}

func (b *SQLiteBackend) Path() string { return b.path }

func (b *SQLiteBackend) Get(key string) (string, bool, error) {
    var raw []byte
    err := b.db.QueryRow("SELECT value FROM ItemTable WHERE key = ?", key).Scan(&raw)
    if errors.Is(err, sql.ErrNoRows) { return "", false, nil }
    if err != nil { return "", false, err }
    return string(raw), true, nil
}

func (b *SQLiteBackend) Set(key, value string) error {
    tx, err := b.db.Begin()
    if err != nil { return err }
    defer tx.Rollback()
    if _, err := tx.Exec("INSERT INTO ItemTable(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value", key, []byte(value)); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil { return err }
    if b.debug { log.Printf("[sqlite] write committed: db=%s key=%s bytes=%d", b.path, key, len(value)) }
    return nil
}

// Backup checkpoints the WAL and copies the database next to itself as
// <db>.bak-<suffix>. It returns the backup path.
func (b *SQLiteBackend) Backup(suffix string) (string, error) {
    if _, err := b.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
        return "", fmt.Errorf("checkpoint: %w", err)
    }
    dst := backupPath(b.path, suffix, time.Now())
    if err := copyFile(b.path, dst); err != nil { return "", fmt.Errorf("backup: %w", err) }
    if b.debug { log.Printf("[sqlite] backup written: %s", dst) }
    return dst, nil
}

func (b *SQLiteBackend) Close() error {
    // fold the WAL back so a plain file copy of the db is complete
    _, _ = b.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
    return b.db.Close()
}

// BackupInfo describes a found backup file for the database.
type BackupInfo struct {
    Path    string
    Suffix  string
    ModTime time.Time
    Size    int64
}

// ListBackups returns all <db>.bak-* backups sorted by ModTime desc.
func ListBackups(dbPath string) ([]BackupInfo, error) {
    dir := filepath.Dir(dbPath)
    prefix := filepath.Base(dbPath) + backupInfix
    entries, err := os.ReadDir(dir)
    if err != nil { return nil, err }
    var out []BackupInfo
    for _, e := range entries {
        name := e.Name()
        if !e.Type().IsRegular() { continue }
        if !strings.HasPrefix(name, prefix) { continue }
        info, err := e.Info(); if err != nil { continue }
        out = append(out, BackupInfo{
            Path: filepath.Join(dir, name),
            Suffix: strings.TrimPrefix(name, prefix),
            ModTime: info.ModTime(),
            Size: info.Size(),
        })
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ModTime.After(out[j].ModTime) })
    return out, nil
}

// RestoreFromBackup replaces the database with the backup carrying suffix. The
// database must not be open.
func RestoreFromBackup(dbPath, suffix string, debug bool) error {
    src := dbPath + backupInfix + suffix
    if _, err := os.Stat(src); err != nil { return fmt.Errorf("backup not found: %s", src) }
    // a leftover WAL would be replayed on top of the restored file
    for _, side := range []string{dbPath + "-wal", dbPath + "-shm"} {
        if err := os.Remove(side); err != nil && !errors.Is(err, os.ErrNotExist) {
            return fmt.Errorf("remove %s: %w", side, err)
        }
    }
    if err := copyFile(src, dbPath); err != nil { return fmt.Errorf("restore: %w", err) }
    if debug { log.Printf("[restore] restored %s from suffix %s", dbPath, suffix) }
    return nil
}

// backupPath names the backup of path. An explicit suffix is used as is; an
// empty one gets a timestamp plus a counter so two backups in the same second
// never overwrite each other.
func backupPath(path, suffix string, now time.Time) string {
    if suffix != "" { return path + backupInfix + suffix }
    base := path + backupInfix + now.Format("20060102-150405")
    dst := base
    for i := 2; ; i++ {
        if _, err := os.Stat(dst); errors.Is(err, os.ErrNotExist) { return dst }
        dst = fmt.Sprintf("%s-%d", base, i)
    }
}

func copyFile(src, dst string) error {
    b, err := os.ReadFile(src)
    if err != nil { return err }
    return writeFileAtomic(dst, b)
}

// StorePath returns where the configured backend keeps its data.
func StorePath(cfg config.Config) (string, error) {
    dir, err := config.ResolveDataDir(cfg)
    if err != nil { return "", err }
    if cfg.Backend == config.BackendFile {
        return filepath.Join(dir, jsonFileName), nil
    }
    return filepath.Join(dir, dbFileName), nil
}

// OpenBackend opens the configured backend. The returned close func is never nil.
func OpenBackend(cfg config.Config) (Backend, func() error, error) {
    p, err := StorePath(cfg)
    if err != nil { return nil, nil, err }
    switch cfg.Backend {
    case config.BackendFile:
        return NewFileBackend(p), func() error { return nil }, nil
    case config.BackendSQLite, "":
        b, err := OpenSQLite(p, cfg.Debug)
        if err != nil { return nil, nil, err }
        return b, b.Close, nil
    default:
        return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
    }
}
