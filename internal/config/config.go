package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
    BackendSQLite = "sqlite"
    BackendFile   = "file"

    DefaultStorageKey = "ecotrack:v1"
)

type Config struct {
    Backend    string `json:"backend" yaml:"backend"`       // sqlite | file
    DataDir    string `json:"dataDir" yaml:"dataDir"`       // optional override of the per-OS data directory
    StorageKey string `json:"storageKey" yaml:"storageKey"` // key the state document is stored under
    HooksDir   string `json:"hooksDir" yaml:"hooksDir"`
    ExportDir  string `json:"exportDir" yaml:"exportDir"`   // default destination for exports and reports
    Watch      bool   `json:"watch" yaml:"watch"`           // reload the TUI when the store changes on disk
    Debug      bool   `json:"debug" yaml:"debug"`
}

func Default() Config {
    return Config{
        Backend:    BackendSQLite,
        DataDir:    "",
        StorageKey: DefaultStorageKey,
        HooksDir:   filepath.Join(UserHome(), ".config", "ecotrack", "hooks"),
        // CWD by default; app will fallback to "." when empty
        ExportDir:  "",
        Watch:      true,
        Debug:      false,
    }
}

// Load reads a JSON or YAML (by extension) config file into out. Empty fields
// in the file keep the values already present in out.
func Load(path string, out *Config) error {
    b, err := os.ReadFile(path)
    if err != nil {
        return err
    }
    c := *out
    switch strings.ToLower(filepath.Ext(path)) {
    case ".yaml", ".yml":
        err = yaml.Unmarshal(b, &c)
    default:
        err = json.Unmarshal(b, &c)
    }
    if err != nil {
        return fmt.Errorf("parse %s: %w", path, err)
    }
    if c.Backend == "" {
        c.Backend = out.Backend
    }
    if c.StorageKey == "" {
        c.StorageKey = out.StorageKey
    }
    if c.HooksDir == "" {
        c.HooksDir = out.HooksDir
    }
    if err := c.Validate(); err != nil {
        return err
    }
    *out = c
    return nil
}

// Save writes c as YAML or JSON depending on the extension of path.
func Save(path string, c Config) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
        return err
    }
    var (
        b   []byte
        err error
    )
    switch strings.ToLower(filepath.Ext(path)) {
    case ".yaml", ".yml":
        b, err = yaml.Marshal(c)
    default:
        b, err = json.MarshalIndent(c, "", "  ")
    }
    if err != nil {
        return err
    }
    return os.WriteFile(path, b, 0o644)
}

func (c Config) Validate() error {
    switch c.Backend {
    case BackendSQLite, BackendFile:
    default:
        return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendFile)
    }
    if strings.TrimSpace(c.StorageKey) == "" {
        return errors.New("storage key is empty")
    }
    return nil
}

// ResolveDataDir returns the directory holding the store, creating nothing.
func ResolveDataDir(c Config) (string, error) {
    if c.DataDir != "" {
        return c.DataDir, nil
    }
    switch runtime.GOOS {
    case "darwin":
        return filepath.Join(UserHome(), "Library", "Application Support", "ecotrack"), nil
    case "windows":
        appdata := os.Getenv("APPDATA")
        if appdata == "" {
            return "", errors.New("APPDATA not set")
        }
        return filepath.Join(appdata, "ecotrack"), nil
    default:
        if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
            return filepath.Join(xdg, "ecotrack"), nil
        }
        return filepath.Join(UserHome(), ".config", "ecotrack"), nil
    }
}

func UserHome() string {
    if h, err := os.UserHomeDir(); err == nil {
        return h
    }
    if runtime.GOOS == "windows" {
        if h := os.Getenv("USERPROFILE"); h != "" {
            return h
        }
    }
    return "."
}

func EnsureDir(path string) error {
    if path == "" {
        return errors.New("empty path")
    }
    return os.MkdirAll(path, 0o755)
}
