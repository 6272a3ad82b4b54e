package tui

import (
    "bytes"
    "fmt"
    "log"
    "path/filepath"
    "time"

    "github.com/charmbracelet/bubbles/viewport"
    "github.com/charmbracelet/glamour"
    tea "github.com/charmbracelet/bubbletea"

    "ecotrack/internal/habits"
)

// renderReport builds the markdown report and renders it into the viewport.
func (m *model) renderReport() {
    if m.tracker == nil { return }
    var buf bytes.Buffer
    if err := habits.WriteMarkdown(&buf, m.tracker.State(), time.Now()); err != nil {
        m.topMsg = "report failed: " + err.Error()
        return
    }
    content := buf.String()
    // Use glamour to render markdown to ANSI suitable for terminal
    opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
    if m.width > 4 { opts = append(opts, glamour.WithWordWrap(m.width-4)) }
    r, err := glamour.NewTermRenderer(opts...)
    if err == nil {
        if s, err2 := r.Render(content); err2 == nil { content = s }
    } else if m.cfg.Debug {
        log.Printf("[tui] glamour renderer: %v", err)
    }
    m.vp = viewport.New(m.width, max(3, m.height-4))
    m.vp.SetContent(content)
}

func (m model) updateReport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
    switch msg.String() {
    case "h", "esc", "q":
        m.mode = modeList
        m.topMsg = ""
        return m, nil
    case "j", "down":
        m.vp.LineDown(1); return m, nil
    case "k", "up":
        m.vp.LineUp(1); return m, nil
    case "pgdown", "ctrl+f":
        m.vp.ViewDown(); return m, nil
    case "pgup", "ctrl+b":
        m.vp.ViewUp(); return m, nil
    case "g":
        m.vp.GotoTop(); return m, nil
    case "G":
        m.vp.GotoBottom(); return m, nil
    case "e":
        m.topMsg = "exporting..."
        return m, exportCmd(m.tracker.State(), m.cfg, time.Now())
    case "d":
        base := m.cfg.ExportDir
        if base == "" { base = "." }
        p := filepath.Join(base, fmt.Sprintf("ecotrack-%s.md", time.Now().Format("20060102")))
        if err := habits.DumpMarkdown(m.tracker.State(), time.Now(), p); err != nil {
            m.topMsg = "write failed: " + err.Error()
        } else {
            if ap, _ := filepath.Abs(p); ap != "" { p = ap }
            m.topMsg = "wrote " + p
        }
        return m, nil
    }
    return m, nil
}
