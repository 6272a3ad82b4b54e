package habits

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileBackend stores all keys in one JSON object on disk. Every Set rewrites
// the file through a temp file and rename.
type FileBackend struct {
    path string
}

func NewFileBackend(path string) *FileBackend { return &FileBackend{path: path} }

func (f *FileBackend) Path() string { return f.path }

func (f *FileBackend) Get(key string) (string, bool, error) {
    items, err := f.read()
    if err != nil { return "", false, err }
    v, ok := items[key]
    return v, ok, nil
}

func (f *FileBackend) Set(key, value string) error {
    items, err := f.read()
    if err != nil {
        // an unreadable file is replaced rather than blocking every save
        items = map[string]string{}
    }
    items[key] = value
    b, err := json.MarshalIndent(items, "", "  ")
    if err != nil { return err }
    if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil { return err }
    return writeFileAtomic(f.path, b)
}

func (f *FileBackend) read() (map[string]string, error) {
    items := map[string]string{}
    b, err := os.ReadFile(f.path)
    if errors.Is(err, fs.ErrNotExist) { return items, nil }
    if err != nil { return nil, err }
    if len(b) == 0 { return items, nil }
    if err := json.Unmarshal(b, &items); err != nil {
        return nil, fmt.Errorf("parse %s: %w", f.path, err)
    }
    return items, nil
}

func writeFileAtomic(dst string, b []byte) error {
    tmp := dst + ".tmp-" + time.Now().Format("20060102-150405.000000000")
    if err := os.WriteFile(tmp, b, 0o600); err != nil { return err }
    if err := os.Rename(tmp, dst); err != nil {
        _ = os.Remove(tmp)
        return err
    }
    return nil
}

// Backup copies the store file to <path>.bak-<suffix>.
func (f *FileBackend) Backup(suffix string) (string, error) {
    if _, err := os.Stat(f.path); err != nil { return "", err }
    dst := backupPath(f.path, suffix, time.Now())
    if err := copyFile(f.path, dst); err != nil { return "", fmt.Errorf("backup: %w", err) }
    return dst, nil
}
