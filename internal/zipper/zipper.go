package zipper

import (
    "archive/zip"
    "bytes"
    "encoding/json"
    "fmt"
    "io"
    "os"
    "path/filepath"
    "strings"
    "time"

    "ecotrack/internal/habits"
    "ecotrack/internal/version"
)

const (
    manifestName = "ecotrack-manifest.json"
    stateName    = "state.json"
    reportName   = "report.md"

    manifestVersion = 1
)

// Manifest describes an exported archive.
type Manifest struct {
    Version    int       `json:"version"`
    StorageKey string    `json:"storageKey"`
    ExportedAt time.Time `json:"exportedAt"`
    LastDay    string    `json:"lastDay"`
    Streak     int       `json:"streak"`
    Habits     int       `json:"habits"`
    Generator  string    `json:"generator,omitempty"`
}

// ExportState writes a zip with the manifest, the stored state document and a
// markdown report.
func ExportState(st habits.AppState, storageKey string, now time.Time, zipPath string) error {
    doc, err := habits.Encode(st)
    if err != nil { return err }
    if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil { return err }
    f, err := os.Create(zipPath)
    if err != nil { return err }
    defer f.Close()

    zw := zip.NewWriter(f)
    manifest := Manifest{
        Version:    manifestVersion,
        StorageKey: storageKey,
        ExportedAt: now.UTC(),
        LastDay:    st.LastDay,
        Streak:     st.Streak,
        Habits:     len(st.Habits),
        Generator:  version.String(),
    }
    if err := writeJSON(zw, manifestName, manifest); err != nil { return err }
    if err := addBytes(zw, stateName, doc); err != nil { return err }
    var report bytes.Buffer
    if err := habits.WriteMarkdown(&report, st, now); err != nil { return err }
    if err := addBytes(zw, reportName, report.Bytes()); err != nil { return err }
    if err := zw.Close(); err != nil { return err }
    return f.Close()
}

// ImportState reads an archive written by ExportState. Unlike a store load, a
// broken archive is an error: the user asked for this file.
func ImportState(zipPath, today string) (habits.AppState, Manifest, error) {
    var manifest Manifest
    r, err := zip.OpenReader(zipPath)
    if err != nil { return habits.AppState{}, manifest, err }
    defer r.Close()

    var doc []byte
    hasManifest := false
    for _, f := range r.File {
        if f.FileInfo().IsDir() { continue }
        switch strings.ToLower(filepath.Base(f.Name)) {
        case manifestName:
            b, err := readFile(f)
            if err != nil { return habits.AppState{}, manifest, err }
            if err := json.Unmarshal(b, &manifest); err != nil {
                return habits.AppState{}, manifest, fmt.Errorf("invalid manifest in %s: %w", zipPath, err)
            }
            hasManifest = true
        case stateName:
            b, err := readFile(f)
            if err != nil { return habits.AppState{}, manifest, err }
            doc = b
        }
    }
    if !hasManifest { return habits.AppState{}, manifest, fmt.Errorf("manifest missing in %s", zipPath) }
    if manifest.Version > manifestVersion {
        return habits.AppState{}, manifest, fmt.Errorf("archive version %d is newer than supported %d", manifest.Version, manifestVersion)
    }
    if doc == nil { return habits.AppState{}, manifest, fmt.Errorf("%s missing in %s", stateName, zipPath) }
    st, err := habits.Decode(doc, today)
    if err != nil { return habits.AppState{}, manifest, err }
    return st, manifest, nil
}

func writeJSON(zw *zip.Writer, name string, v any) error {
    b, err := json.MarshalIndent(v, "", "  ")
    if err != nil { return err }
    return addBytes(zw, name, b)
}

func addBytes(zw *zip.Writer, name string, b []byte) error {
    w, err := zw.Create(name)
    if err != nil { return err }
    _, err = w.Write(b)
    return err
}

func readFile(f *zip.File) ([]byte, error) {
    rc, err := f.Open()
    if err != nil { return nil, err }
    defer rc.Close()
    return io.ReadAll(rc)
}
