package tui

import (
    "fmt"
    "log"
    "path/filepath"
    "strings"
    "time"

    "github.com/charmbracelet/bubbles/key"
    "github.com/charmbracelet/bubbles/list"
    "github.com/charmbracelet/bubbles/spinner"
    "github.com/charmbracelet/bubbles/textinput"
    "github.com/charmbracelet/bubbles/viewport"
    "github.com/charmbracelet/lipgloss"
    "github.com/fsnotify/fsnotify"
    tea "github.com/charmbracelet/bubbletea"

    "ecotrack/internal/config"
    "ecotrack/internal/habits"
    "ecotrack/internal/hooks"
    "ecotrack/internal/zipper"
)

type mode int

const (
    modeList mode = iota
    modeAdd
    modeSuggest
    modeConfirmClear
    modeReport
)

// ownWriteWindow is how long after our own save a change on disk is ignored.
const ownWriteWindow = 1500 * time.Millisecond

type model struct {
    cfg       config.Config
    store     *habits.StateStore
    backend   habits.Backend
    storePath string
    tracker   *habits.Tracker
    hooks     *hooks.HookEnv

    list   list.Model
    input  textinput.Model
    vp     viewport.Model
    spin   spinner.Model
    width  int
    height int

    mode        mode
    loading     bool
    hooksLoaded bool
    showHelp    bool
    statusMsg   string
    topMsg      string

    suggestions []string
    suggestIdx  int

    watcher  *fsnotify.Watcher
    lastSave time.Time
    pending  []habits.RolloverEvent
}

type item struct {
    h     habits.Habit
    title string
    desc  string
}

func (i item) Title() string       { return checkbox(i.h.Done) + i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.h.Title }

type keymap struct {
    toggle     key.Binding
    add        key.Binding
    suggest    key.Binding
    del        key.Binding
    resetDay   key.Binding
    clearAll   key.Binding
    report     key.Binding
    export     key.Binding
    refresh    key.Binding
    quit       key.Binding
}

func newKeymap() keymap {
    return keymap{
        toggle:   key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "check/uncheck")),
        add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add habit")),
        suggest:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "suggestions")),
        del:      key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
        resetDay: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset day")),
        clearAll: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear all")),
        report:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "report")),
        export:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export zip")),
        refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
        quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
    }
}

var keys = newKeymap()

// New builds the TUI model. backend is only used for backups before
// destructive actions; storePath is watched for external changes.
func New(cfg config.Config, store *habits.StateStore, backend habits.Backend, storePath string) model {
    lm := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
    lm.Title = "EcoTrack"
    lm.SetShowStatusBar(false)
    lm.SetFilteringEnabled(true)
    lm.SetShowHelp(false)
    lm.AdditionalShortHelpKeys = func() []key.Binding {
        return []key.Binding{keys.toggle, keys.add, keys.suggest, keys.del, keys.resetDay, keys.clearAll, keys.report, keys.export, keys.quit}
    }
    lm.AdditionalFullHelpKeys = lm.AdditionalShortHelpKeys
    hs := lm.Styles.HelpStyle
    hs = hs.Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#B0B7C3"}).Bold(true)
    lm.Styles.HelpStyle = hs
    sp := spinner.New()
    sp.Spinner = spinner.MiniDot
    ti := textinput.New()
    ti.Placeholder = "e.g. Carry a water bottle"
    ti.CharLimit = habits.MaxTitleLen
    return model{
        cfg: cfg, store: store, backend: backend, storePath: storePath,
        list: lm, input: ti, spin: sp, loading: true,
        suggestions: habits.Suggestions(),
    }
}

func (m model) Init() tea.Cmd {
    return tea.Batch(openTrackerCmd(m.store), loadHooksCmd(m.cfg), m.spin.Tick, dayTickCmd())
}

type trackerOpenedMsg struct {
    t   *habits.Tracker
    err error
}
type hooksLoadedMsg struct{ env *hooks.HookEnv }
type dayTickMsg time.Time
type exportDoneMsg struct {
    path string
    err  error
}

// openTrackerCmd loads the store and applies the rollover before the model
// renders anything but the spinner.
func openTrackerCmd(store *habits.StateStore) tea.Cmd {
    return func() tea.Msg {
        t, err := habits.Open(store)
        return trackerOpenedMsg{t: t, err: err}
    }
}

func loadHooksCmd(cfg config.Config) tea.Cmd {
    return func() tea.Msg {
        hooks.EnableDebug(cfg.Debug)
        env, _ := hooks.LoadDir(cfg.HooksDir)
        return hooksLoadedMsg{env}
    }
}

func dayTickCmd() tea.Cmd {
    return tea.Tick(time.Minute, func(t time.Time) tea.Msg { return dayTickMsg(t) })
}

func exportCmd(st habits.AppState, cfg config.Config, now time.Time) tea.Cmd {
    return func() tea.Msg {
        base := cfg.ExportDir
        if base == "" { base = "." }
        p := filepath.Join(base, fmt.Sprintf("ecotrack-%s.zip", now.Format("20060102-150405")))
        err := zipper.ExportState(st, cfg.StorageKey, now, p)
        return exportDoneMsg{path: p, err: err}
    }
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
    switch msg := msg.(type) {
    case tea.WindowSizeMsg:
        m.width, m.height = msg.Width, msg.Height
        m.resize()
        if m.mode == modeReport { m.renderReport() }
        return m, nil
    case trackerOpenedMsg:
        m.loading = false
        m.tracker = msg.t
        if msg.err != nil { m.statusMsg = "save failed: " + msg.err.Error() }
        if m.tracker == nil { return m, nil }
        m.pending = append(m.pending, m.tracker.TakeRollovers()...)
        m.notifyRollovers()
        m.rebuildItems()
        if m.statusMsg == "" { m.statusMsg = m.summaryLine() }
        return m, m.startWatchCmd()
    case hooksLoadedMsg:
        m.hooks = msg.env
        m.hooksLoaded = true
        m.suggestions = habits.SuggestionsWithHooks(m.hooks)
        m.notifyRollovers()
        if m.tracker != nil { m.rebuildItems() }
        return m, nil
    case dayTickMsg:
        if m.tracker != nil {
            changed, err := m.tracker.EnsureToday()
            if changed {
                m.lastSave = time.Now()
                m.pending = append(m.pending, m.tracker.TakeRollovers()...)
                m.notifyRollovers()
                m.rebuildItems()
                m.statusMsg = fmt.Sprintf("new day: streak %d", m.tracker.State().Streak)
            }
            if err != nil { m.statusMsg = "save failed: " + err.Error() }
        }
        return m, dayTickCmd()
    case watchStartedMsg:
        m.watcher = msg.w
        return m, waitForChangeCmd(m.watcher, m.storePath)
    case storeChangedMsg:
        if m.tracker != nil && time.Since(m.lastSave) > ownWriteWindow {
            if err := m.tracker.Reload(); err != nil {
                m.statusMsg = "reload failed: " + err.Error()
            } else {
                m.pending = append(m.pending, m.tracker.TakeRollovers()...)
                m.notifyRollovers()
                m.rebuildItems()
                m.statusMsg = "reloaded: store changed on disk"
            }
        }
        return m, waitForChangeCmd(m.watcher, m.storePath)
    case exportDoneMsg:
        if msg.err != nil {
            m.setMsg("export failed: " + msg.err.Error())
        } else {
            if ap, _ := filepath.Abs(msg.path); ap != "" { msg.path = ap }
            m.setMsg("exported to " + msg.path)
        }
        return m, nil
    case spinner.TickMsg:
        if !m.loading { return m, nil }
        var cmd tea.Cmd
        m.spin, cmd = m.spin.Update(msg)
        return m, cmd
    case tea.KeyMsg:
        if msg.String() == "ctrl+c" || ((m.loading || m.tracker == nil) && msg.String() == "q") {
            cmd := m.quit()
            return m, cmd
        }
        if m.loading || m.tracker == nil { return m, nil }
        switch m.mode {
        case modeAdd:
            return m.updateAdd(msg)
        case modeSuggest:
            return m.updateSuggest(msg)
        case modeConfirmClear:
            return m.updateConfirmClear(msg)
        case modeReport:
            return m.updateReport(msg)
        }
        if m.list.FilterState() == list.Filtering { break }
        switch {
        case key.Matches(msg, keys.quit):
            cmd := m.quit()
            return m, cmd
        case key.Matches(msg, keys.toggle):
            if idx, ok := m.selectedIndex(); ok {
                m.afterCommand(m.tracker.Toggle(idx), "")
            }
            return m, nil
        case key.Matches(msg, keys.add):
            m.mode = modeAdd
            m.input.SetValue("")
            m.resize()
            cmd := m.input.Focus()
            return m, cmd
        case key.Matches(msg, keys.suggest):
            m.mode = modeSuggest
            m.resize()
            return m, nil
        case key.Matches(msg, keys.del):
            if idx, ok := m.selectedIndex(); ok {
                title := m.tracker.State().Habits[idx].Title
                m.afterCommand(m.tracker.Delete(idx), "deleted: "+title)
            }
            return m, nil
        case key.Matches(msg, keys.resetDay):
            m.afterCommand(m.tracker.ResetDay(), "day reset")
            return m, nil
        case key.Matches(msg, keys.clearAll):
            if m.tracker.Len() == 0 { m.statusMsg = "nothing to clear"; return m, nil }
            m.mode = modeConfirmClear
            m.resize()
            return m, nil
        case key.Matches(msg, keys.report):
            m.mode = modeReport
            m.topMsg = ""
            m.renderReport()
            return m, nil
        case key.Matches(msg, keys.export):
            m.statusMsg = "exporting..."
            return m, exportCmd(m.tracker.State(), m.cfg, time.Now())
        case key.Matches(msg, keys.refresh):
            if err := m.tracker.Reload(); err != nil { m.statusMsg = "reload failed: " + err.Error() } else { m.statusMsg = "reloaded" }
            m.pending = append(m.pending, m.tracker.TakeRollovers()...)
            m.notifyRollovers()
            m.rebuildItems()
            return m, nil
        case msg.String() == "?":
            m.showHelp = !m.showHelp
            m.list.SetShowHelp(m.showHelp)
            m.resize()
            return m, nil
        }
    }

    // Delegate other events to list
    var cmd tea.Cmd
    m.list, cmd = m.list.Update(msg)
    return m, cmd
}

func (m model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
    switch msg.Type {
    case tea.KeyEnter:
        raw := m.input.Value()
        before := m.tracker.Len()
        err := m.tracker.Add(raw)
        m.input.Blur()
        m.mode = modeList
        m.resize()
        if m.tracker.Len() == before && err == nil {
            m.statusMsg = "empty title ignored"
            return m, nil
        }
        clean, _ := habits.CleanTitle(raw)
        m.afterCommand(err, "added: "+clean)
        m.list.Select(len(m.list.Items()) - 1)
        return m, nil
    case tea.KeyEsc:
        m.input.Blur()
        m.mode = modeList
        m.resize()
        return m, nil
    }
    var cmd tea.Cmd
    m.input, cmd = m.input.Update(msg)
    return m, cmd
}

func (m model) updateSuggest(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
    n := len(m.suggestions)
    s := msg.String()
    switch s {
    case "esc", "q", "s":
        m.mode = modeList
        m.resize()
        return m, nil
    case "left", "h", "shift+tab":
        if n > 0 { m.suggestIdx = (m.suggestIdx - 1 + n) % n }
        return m, nil
    case "right", "l", "tab":
        if n > 0 { m.suggestIdx = (m.suggestIdx + 1) % n }
        return m, nil
    case "enter", " ":
        if n > 0 { m.addSuggestion(m.suggestions[m.suggestIdx]) }
        return m, nil
    }
    if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
        i := int(s[0] - '1')
        if i < n {
            m.suggestIdx = i
            m.addSuggestion(m.suggestions[i])
        }
    }
    return m, nil
}

func (m *model) addSuggestion(title string) {
    m.afterCommand(m.tracker.Add(title), "added: "+title)
}

func (m model) updateConfirmClear(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
    m.mode = modeList
    m.resize()
    if msg.String() != "y" && msg.String() != "Y" {
        m.statusMsg = "canceled"
        return m, nil
    }
    if b, ok := m.backend.(habits.Backuper); ok {
        if p, err := b.Backup(""); err != nil {
            log.Printf("[tui] backup before clear-all failed: %v", err)
        } else if m.cfg.Debug {
            log.Printf("[tui] backup before clear-all: %s", p)
        }
    }
    m.afterCommand(m.tracker.ClearAll(), "all habits deleted")
    return m, nil
}

func (m model) View() string {
    if m.loading {
        return fmt.Sprintf("%s Loading habits...", m.spin.View())
    }
    if m.tracker == nil {
        return "Could not open the habit store.\n" + footer(m.statusMsg)
    }
    if m.mode == modeReport {
        header := "(h/esc) back  (j/k) scroll  (e) export zip  (d) write report.md  (q) close"
        if m.topMsg != "" { header += "\n" + m.topMsg }
        return header + "\n\n" + m.vp.View()
    }
    return m.headerView() + "\n" + m.list.View() + m.bottomView()
}

func (m model) headerView() string {
    st := m.tracker.State()
    p := habits.ProgressOf(st.Habits)
    date := lipgloss.NewStyle().Bold(true).Render(time.Now().Format("Mon, 02 Jan 2006"))
    streak := lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true).Render(fmt.Sprintf("streak %d", st.Streak))
    line2 := fmt.Sprintf("%s %3d%%  %d/%d done  %s", progressBar(p.Percent, 20), p.Percent, p.Done, p.Total, streak)
    return date + "\n" + line2 + "\n"
}

func (m model) bottomView() string {
    switch m.mode {
    case modeAdd:
        return "\nNew habit: " + m.input.View() + "\n(enter) add  (esc) cancel\n"
    case modeSuggest:
        return "\n" + m.suggestionChips() + "\n(←/→) move  (enter/1-9) add  (esc) done\n" + footer(m.statusMsg)
    case modeConfirmClear:
        return "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true).Render("Delete ALL habits? y/N") + "\n"
    }
    return footer(m.statusMsg)
}

func (m model) suggestionChips() string {
    on := lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10")).Padding(0, 1)
    off := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
    var b strings.Builder
    lineW := 0
    for i, s := range m.suggestions {
        label := s
        if i < 9 { label = fmt.Sprintf("%d %s", i+1, s) }
        st := off
        if i == m.suggestIdx { st = on }
        chip := st.Render(label)
        w := lipgloss.Width(chip)
        if m.width > 0 && lineW > 0 && lineW+w+1 > m.width {
            b.WriteString("\n")
            lineW = 0
        } else if lineW > 0 {
            b.WriteString(" ")
            lineW++
        }
        b.WriteString(chip)
        lineW += w
    }
    return b.String()
}

func (m *model) quit() tea.Cmd {
    if m.watcher != nil {
        _ = m.watcher.Close()
        m.watcher = nil
    }
    return tea.Quit
}

// selectedIndex re-resolves the highlighted row against the tracker's current
// list by habit id, so a stale or filtered row never hits the wrong habit.
func (m model) selectedIndex() (int, bool) {
    it, ok := m.list.SelectedItem().(item)
    if !ok { return -1, false }
    idx := m.tracker.IndexOf(it.h.ID)
    return idx, idx >= 0
}

// afterCommand re-renders synchronously after every mutation.
func (m *model) afterCommand(err error, status string) {
    m.lastSave = time.Now()
    // commands apply a pending midnight rollover themselves
    m.pending = append(m.pending, m.tracker.TakeRollovers()...)
    m.notifyRollovers()
    if err != nil {
        m.statusMsg = "save failed: " + err.Error()
    } else if status != "" {
        m.statusMsg = status
    } else {
        m.statusMsg = m.summaryLine()
    }
    m.rebuildItems()
}

func (m *model) rebuildItems() {
    if m.tracker == nil { return }
    cur := m.list.Index()
    st := m.tracker.State()
    items := make([]list.Item, 0, len(st.Habits))
    for i, h := range st.Habits {
        title := h.Title
        desc := "pending"
        if h.Done { desc = "done today" }
        if t, d, ok := habits.RenderItemWithHooks(m.hooks, h, i); ok {
            if m.cfg.Debug { log.Printf("[hooks] renderHabitItem override for %s", h.ID) }
            if t != "" { title = sanitizeInline(t) }
            if d != "" { desc = sanitizeInline(d) }
        }
        items = append(items, item{h: h, title: title, desc: desc})
    }
    m.list.SetItems(items)
    if cur >= len(items) { cur = len(items) - 1 }
    if cur < 0 { cur = 0 }
    m.list.Select(cur)
}

func (m *model) notifyRollovers() {
    if !m.hooksLoaded || len(m.pending) == 0 { return }
    for _, ev := range m.pending { habits.NotifyRollover(m.hooks, ev) }
    m.pending = nil
}

func (m *model) resize() {
    if m.width == 0 && m.height == 0 { return }
    reserved := 3 + 2 // header + status
    switch m.mode {
    case modeAdd, modeConfirmClear:
        reserved += 2
    case modeSuggest:
        reserved += 2 + strings.Count(m.suggestionChips(), "\n")
    }
    m.list.SetSize(m.width, max(3, m.height-reserved))
    m.input.Width = max(10, m.width-14)
}

func (m *model) setMsg(s string) {
    if m.mode == modeReport { m.topMsg = s } else { m.statusMsg = s }
}

func (m model) summaryLine() string {
    p := m.tracker.Progress()
    if p.Total == 0 { return "No habits yet: press a to add one or s for suggestions" }
    return fmt.Sprintf("%d of %d habits done", p.Done, p.Total)
}

func footer(msg string) string {
    if msg == "" { return "" }
    return "\n" + msg + "\n"
}

func checkbox(done bool) string {
    if done { return lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("[✓] ") }
    return "[ ] "
}

func progressBar(pct, width int) string {
    if pct < 0 { pct = 0 }
    if pct > 100 { pct = 100 }
    filled := pct * width / 100
    on := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(strings.Repeat("█", filled))
    off := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(strings.Repeat("░", width-filled))
    return on + off
}

func sanitizeInline(s string) string {
    // replace newlines with spaces to keep a single-line description
    b := make([]rune, 0, len(s))
    for _, r := range s { if r == '\n' || r == '\r' { r = ' ' }; b = append(b, r) }
    return string(b)
}

func max(a, b int) int { if a > b { return a }; return b }
