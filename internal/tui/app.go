// Package tui provides the interactive Bubble Tea dashboard for salesdash.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/salesdash/internal/cli"
	"github.com/theirongolddev/salesdash/internal/config"
	"github.com/theirongolddev/salesdash/internal/model"
	"github.com/theirongolddev/salesdash/internal/pipeline"
	"github.com/theirongolddev/salesdash/internal/source"
	"github.com/theirongolddev/salesdash/internal/store"
	"github.com/theirongolddev/salesdash/internal/tui/components"
	"github.com/theirongolddev/salesdash/internal/tui/theme"
	"github.com/theirongolddev/salesdash/internal/watch"
)

// DataLoadedMsg is sent when the initial load finishes.
type DataLoadedMsg struct {
	Result   *pipeline.LoadResult
	Err      error
	LoadTime time.Duration
	CacheHit bool
}

// ProgressMsg reports loading progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background reload completes.
type RefreshDataMsg struct {
	Result   *pipeline.LoadResult
	Err      error
	LoadTime time.Duration
	CacheHit bool
}

type fileChangedMsg struct{}

type clearMessageMsg struct{ seq int }

// App is the root Bubble Tea model.
type App struct {
	cfg  config.Config
	path string
	opts pipeline.Options

	// Data
	data     *pipeline.LoadResult
	loaded   bool
	loadErr  error
	loadTime time.Duration
	cacheHit bool

	// Filter state. An empty month selection means every month; the range
	// is inclusive and spans minMonth..maxMonth when untouched.
	initial    pipeline.Query
	monthSel   map[string]bool
	channelSel map[string]bool
	rangeFrom  int
	rangeTo    int
	minMonth   int
	maxMonth   int

	// Pre-computed for current filter
	rows         []model.Row
	channels     []string
	stats        model.SummaryStats
	prevStats    model.SummaryStats
	hasPrev      bool
	months       []model.MonthStats
	allMonths    []model.MonthStats // every month, for the selector list
	channelStats []model.ChannelStats
	allChannels  []model.ChannelStats // every channel over the filtered rows, for the checkbox list
	dist         model.Distribution
	forecast     model.Forecast
	goals        model.GoalStats

	// Simulator
	simInput      textinput.Model
	simEditing    bool
	simInvestment float64
	simInvalid    bool
	sim           model.Simulation

	// UI state
	width         int
	height        int
	activeTab     int
	showHelp      bool
	channelCursor int
	monthCursor   int
	settings      settingsState
	message       string
	messageSeq    int

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues // shared with the form across model copies
	needSetup bool

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg

	// Auto reload
	autoReload bool
	reloading  bool
	watcher    *watch.FileWatcher
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5
	messageTTL       = 4 * time.Second
)

// loadConfigOrDefault loads config, returning defaults on error.
// This ensures the TUI can always start even if config is corrupted.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates the dashboard for the workbook at path. q seeds the
// month and channel selections from the command-line filters.
func NewApp(cfg config.Config, path string, opts pipeline.Options, q pipeline.Query) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		cfg:           cfg,
		path:          path,
		opts:          opts,
		initial:       q,
		needSetup:     !config.Exists(),
		autoReload:    cfg.TUI.AutoReload,
		simInvestment: cfg.Simulator.DefaultInvestment,
		simInput:      newSimInput(cfg.Simulator.DefaultInvestment),
		spinner:       sp,
		loadSub:       make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.path, a.opts, a.loadSub),
		a.spinner.Tick,
	)
}

// Close releases the file watcher. Call it after the program exits.
func (a App) Close() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
}

// setData installs a freshly loaded workbook. On reload the user's
// selections survive; channels new to the sheet start checked.
func (a *App) setData(res *pipeline.LoadResult) {
	first := a.data == nil
	a.data = res

	a.minMonth, a.maxMonth = 0, 0
	for _, r := range res.Rows {
		if r.MonthID == 0 {
			continue
		}
		if a.minMonth == 0 || r.MonthID < a.minMonth {
			a.minMonth = r.MonthID
		}
		if r.MonthID > a.maxMonth {
			a.maxMonth = r.MonthID
		}
	}

	if first {
		a.applyInitialQuery()
		return
	}

	sel := make(map[string]bool, len(res.Channels))
	for _, ch := range res.Channels {
		on, known := a.channelSel[ch]
		sel[ch] = on || !known
	}
	a.channelSel = sel
	if a.rangeFrom == 0 || a.rangeTo == 0 {
		a.rangeFrom, a.rangeTo = a.minMonth, a.maxMonth
	}
	a.rangeFrom = clampInt(a.rangeFrom, a.minMonth, a.maxMonth)
	a.rangeTo = clampInt(a.rangeTo, a.rangeFrom, a.maxMonth)
}

func (a *App) applyInitialQuery() {
	q := a.initial

	wanted, err := pipeline.SelectChannels(a.data.Channels, q.Channels)
	if err != nil {
		wanted = a.data.Channels
		a.message = err.Error()
	}
	a.channelSel = make(map[string]bool, len(a.data.Channels))
	for _, ch := range a.data.Channels {
		a.channelSel[ch] = false
	}
	for _, ch := range wanted {
		a.channelSel[ch] = true
	}

	a.monthSel = make(map[string]bool)
	if len(q.Months) > 0 {
		for _, m := range pipeline.AggregateMonths(pipeline.FilterByMonths(a.data.Rows, q.Months), nil) {
			a.monthSel[m.Month] = true
		}
	}

	from, to := q.From, q.To
	if from != 0 && to != 0 && from > to {
		from, to = to, from
	}
	if from == 0 {
		from = a.minMonth
	}
	if to == 0 {
		to = a.maxMonth
	}
	a.rangeFrom = clampInt(from, a.minMonth, a.maxMonth)
	a.rangeTo = clampInt(to, a.rangeFrom, a.maxMonth)
}

// selectedChannels returns the checked channels in sheet order.
func (a App) selectedChannels() []string {
	if a.data == nil {
		return nil
	}
	var out []string
	for _, ch := range a.data.Channels {
		if a.channelSel[ch] {
			out = append(out, ch)
		}
	}
	return out
}

// selectedMonths returns the checked month labels in chronological order.
func (a App) selectedMonths() []string {
	var out []string
	for _, m := range a.allMonths {
		if a.monthSel[m.Month] {
			out = append(out, m.Month)
		}
	}
	return out
}

// rangeBounds maps the slider to filter bounds. A slider at the full extent
// is open on that side so rows with unknown months stay visible.
func (a App) rangeBounds() (from, to int) {
	if a.rangeFrom > a.minMonth {
		from = a.rangeFrom
	}
	if a.rangeTo < a.maxMonth {
		to = a.rangeTo
	}
	return from, to
}

func (a *App) recompute() {
	if a.data == nil {
		return
	}
	a.channels = a.selectedChannels()
	a.allMonths = pipeline.AggregateMonths(a.data.Rows, a.channels)

	months := a.selectedMonths()
	from, to := a.rangeBounds()
	a.rows = pipeline.FilterByRange(pipeline.FilterByMonths(a.data.Rows, months), from, to)

	a.stats = pipeline.Aggregate(a.rows, a.channels)
	a.months = pipeline.AggregateMonths(a.rows, a.channels)
	a.channelStats = pipeline.AggregateChannels(a.rows, a.channels)
	a.allChannels = pipeline.AggregateChannels(a.rows, a.data.Channels)
	a.dist = pipeline.Describe(pipeline.MonthlyRevenue(a.months))
	a.forecast = pipeline.Forecast(a.months)
	a.goals = pipeline.Goals(a.months, a.stats, a.cfg.Goals)

	// Deltas compare against the window before a closed range.
	a.hasPrev = false
	a.prevStats = model.SummaryStats{}
	if len(months) == 0 && from != 0 && to != 0 {
		cmp := pipeline.Compare(a.data.Rows, a.channels, from, to)
		a.prevStats, a.hasPrev = cmp.Previous, cmp.HasPrevious
	}

	a.sim = pipeline.Project(a.rows, a.channels, a.simInvestment)

	a.channelCursor = clampInt(a.channelCursor, 0, len(a.data.Channels)-1)
	a.monthCursor = clampInt(a.monthCursor, 0, len(a.allMonths)-1)
}

// flash shows a transient note in the status bar.
func (a *App) flash(msg string) tea.Cmd {
	a.message = msg
	a.messageSeq++
	seq := a.messageSeq
	return tea.Tick(messageTTL, func(time.Time) tea.Msg {
		return clearMessageMsg{seq: seq}
	})
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.cacheHit = msg.CacheHit
		a.loadErr = msg.Err

		if msg.Err == nil {
			a.setData(msg.Result)
			a.recompute()
		}

		// First run: ask for the workbook and preferences. Shown even when
		// the default file is missing, since that is the usual reason.
		if a.needSetup {
			cmd := a.startSetup()
			return a, cmd
		}
		if msg.Err != nil {
			return a, nil
		}
		cmd := a.ensureWatcher()
		return a, cmd

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case RefreshDataMsg:
		a.reloading = false
		a.loadTime = msg.LoadTime
		a.cacheHit = msg.CacheHit
		if msg.Err != nil {
			// Keep showing the last good data; editors often save in steps.
			if a.data == nil {
				a.loadErr = msg.Err
				return a, nil
			}
			cmd := a.flash("reload failed: " + shortError(msg.Err))
			return a, cmd
		}
		a.loadErr = nil
		a.setData(msg.Result)
		a.recompute()
		cmd := tea.Batch(a.flash("reloaded"), a.ensureWatcher())
		return a, cmd

	case fileChangedMsg:
		if a.watcher == nil {
			return a, nil
		}
		next := waitForFileChange(a.watcher)
		if !a.autoReload || a.reloading {
			return a, next
		}
		a.reloading = true
		return a, tea.Batch(next, refreshDataCmd(a.path, a.opts))

	case clearMessageMsg:
		if msg.seq == a.messageSeq {
			a.message = ""
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages (cursor blinks) to whatever has focus.
	switch {
	case a.needSetup && a.setupForm != nil:
		return a.updateSetupForm(msg)
	case a.simEditing:
		var cmd tea.Cmd
		a.simInput, cmd = a.simInput.Update(msg)
		return a, cmd
	case a.settings.editing:
		var cmd tea.Cmd
		a.settings.input, cmd = a.settings.input.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global: quit
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if !a.loaded {
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	// Text inputs own the keyboard while focused
	if a.activeTab == components.TabSimulator && a.simEditing {
		return a.updateSimulatorInput(msg)
	}
	if a.activeTab == components.TabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	if key == "q" {
		return a, tea.Quit
	}

	if key == "r" && !a.reloading {
		a.reloading = true
		return a, refreshDataCmd(a.path, a.opts)
	}

	// Without data only the settings tab is useful.
	if a.data == nil {
		switch key {
		case "x":
			a.activeTab = components.TabSettings
			return a, nil
		case "esc":
			a.activeTab = components.TabOverview
			return a, nil
		}
		if a.activeTab == components.TabSettings {
			return a.updateSettingsKeys(key)
		}
		return a, nil
	}

	switch a.activeTab {
	case components.TabChannels:
		if m, cmd, ok := a.updateChannelsKeys(key); ok {
			return m, cmd
		}
	case components.TabMonths:
		if m, cmd, ok := a.updateMonthsKeys(key); ok {
			return m, cmd
		}
	case components.TabSimulator:
		if key == "enter" || key == "e" {
			return a.simStartEdit()
		}
	case components.TabSettings:
		switch key {
		case "j", "down", "k", "up", "enter":
			return a.updateSettingsKeys(key)
		}
	}

	// Tab navigation
	if r := []rune(key); len(r) == 1 {
		if idx := components.TabIdxByKey(r[0]); idx >= 0 {
			a.activeTab = idx
			return a, nil
		}
	}
	switch key {
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.loaded || a.showHelp || a.data == nil || (a.needSetup && a.setupForm != nil) {
		return a, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.moveCursor(-1)
	case tea.MouseButtonWheelDown:
		a.moveCursor(1)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return a, nil
		}
		// Tab bar is the first line
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

// moveCursor scrolls the list on the active tab.
func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case components.TabChannels:
		a.channelCursor = clampInt(a.channelCursor+delta, 0, len(a.data.Channels)-1)
	case components.TabMonths:
		a.monthCursor = clampInt(a.monthCursor+delta, 0, len(a.allMonths)-1)
	case components.TabSettings:
		if !a.settings.editing {
			a.settings.cursor = clampInt(a.settings.cursor+delta, 0, settingsFieldCount-1)
		}
	}
}

// startSetup opens the first-run wizard pre-filled from the current config.
func (a *App) startSetup() tea.Cmd {
	vals := SetupValuesFrom(a.cfg)
	vals.DataFile = a.path
	a.setupVals = &vals
	a.setupForm = NewSetupForm(a.setupVals)
	if a.width > 0 {
		a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
	}
	return a.setupForm.Init()
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.needSetup = false
		a.setupForm = nil

		cfg := loadConfigOrDefault()
		ApplySetup(&cfg, *a.setupVals)
		var note tea.Cmd
		if err := config.Save(cfg); err != nil {
			note = a.flash("saving config: " + err.Error())
		} else {
			note = a.flash("saved " + config.ConfigPath())
		}
		cmd := tea.Batch(note, a.applyConfig(cfg))
		return a, cmd

	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		if a.data != nil {
			cmd := a.ensureWatcher()
			return a, cmd
		}
		return a, nil
	}

	return a, cmd
}

// applyConfig switches to cfg, reloading when the data source changed.
// Command-line overrides of the file and sheet survive unless the user
// changed that setting.
func (a *App) applyConfig(cfg config.Config) tea.Cmd {
	prev := a.cfg
	a.cfg = cfg
	theme.SetActive(cfg.Appearance.Theme)
	cli.SetCurrency(config.ResolveCurrency(cfg.Currency))
	a.autoReload = cfg.TUI.AutoReload
	if prev.Simulator.DefaultInvestment != cfg.Simulator.DefaultInvestment {
		a.simInvestment = cfg.Simulator.DefaultInvestment
		a.simInput.SetValue(formatAmount(cfg.Simulator.DefaultInvestment))
	}
	a.recompute()

	fileChanged := prev.General.DataFile != cfg.General.DataFile
	sheetChanged := prev.General.Sheet != cfg.General.Sheet
	currencyChanged := prev.Currency != cfg.Currency

	if fileChanged {
		a.path = config.GetDataFile(cfg)
		a.stopWatcher()
	}
	if sheetChanged || currencyChanged {
		sheet := a.opts.Sheet
		a.opts = pipeline.OptionsFromConfig(cfg)
		if !sheetChanged {
			a.opts.Sheet = sheet
		}
	}
	if !fileChanged && !sheetChanged && !currencyChanged && a.data != nil {
		return a.ensureWatcher()
	}

	a.reloading = true
	return refreshDataCmd(a.path, a.opts)
}

// ensureWatcher starts watching the workbook when auto reload is on.
func (a *App) ensureWatcher() tea.Cmd {
	if !a.autoReload || a.watcher != nil {
		return nil
	}
	w, err := watch.New(a.path, watch.DefaultDebounce, nil)
	if err != nil {
		return a.flash("auto reload off: " + err.Error())
	}
	if err := w.Start(context.Background()); err != nil {
		return a.flash("auto reload off: " + err.Error())
	}
	a.watcher = w
	return waitForFileChange(w)
}

func (a *App) stopWatcher() {
	if a.watcher != nil {
		a.watcher.Stop()
		a.watcher = nil
	}
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	// First-run setup wizard
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	if a.data == nil && a.activeTab != components.TabSettings {
		return a.viewError()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  salesdash needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ salesdash"))
	b.WriteString(subtitleStyle.Render(" · Sales & Marketing KPIs"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(" Reading " + filepath.Base(a.path)))

	if a.progressMax > 0 {
		barW := clampInt(a.width-30, 20, 40)
		b.WriteString("\n\n")
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), barW))
	}

	card := cardStyle.Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// viewError is shown when there is no data to display.
func (a App) viewError() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Red).
		Background(t.Surface).
		Padding(1, 3).
		Width(clampInt(a.width-10, 40, 90))

	titleStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	bodyStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	if errors.Is(a.loadErr, source.ErrFileNotFound) {
		b.WriteString(titleStyle.Render("Workbook not found"))
		b.WriteString("\n\n")
		b.WriteString(bodyStyle.Render(fmt.Sprintf("file %q not found: check it is next to the binary or pass --file", a.path)))
	} else {
		b.WriteString(titleStyle.Render("Could not load the workbook"))
		b.WriteString("\n\n")
		msg := "no data loaded"
		if a.loadErr != nil {
			msg = a.loadErr.Error()
		}
		b.WriteString(bodyStyle.Render(msg))
	}
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("[r] retry  [x] settings  [q] quit"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

type binding struct{ key, desc string }

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []binding
	}{
		{"Navigation", []binding{
			{"o c m s x", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Move in lists"},
		}},
		{"Filters", []binding{
			{"space", "Toggle channel / month"},
			{"a", "All / no channels"},
			{"[ ]", "Move range start"},
			{"{ }", "Move range end"},
			{"0", "Reset month filters"},
		}},
		{"Actions", []binding{
			{"Enter", "Edit simulator / setting"},
			{"Esc", "Cancel edit"},
			{"r", "Reload workbook"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar + filter pill
	pill := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	filterStr := pill.Render(" ") + accent.Render(a.filterLabel()) +
		pill.Render(" │ ") + accent.Render(a.channelLabel()) + pill.Render(" ")
	header := components.RenderTabBar(a.activeTab, w) +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(filterStr)

	// 2. Status bar
	info := components.StatusInfo{
		File:      filepath.Base(a.path),
		LoadTime:  fmt.Sprintf("%.2fs", a.loadTime.Seconds()),
		Reloading: a.reloading,
		Watching:  a.watcher != nil && a.autoReload,
		Message:   a.message,
	}
	if a.data != nil {
		info.Rows = len(a.data.Rows)
	}
	if a.cacheHit {
		info.LoadTime += " cached"
	}
	statusBar := components.RenderStatusBar(w, info)

	// 3. Content zone height
	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case components.TabOverview:
		content = a.renderOverviewTab(cw)
	case components.TabChannels:
		content = a.renderChannelsTab(cw)
	case components.TabMonths:
		content = a.renderMonthsTab(cw)
	case components.TabSimulator:
		content = a.renderSimulatorTab(cw)
	case components.TabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// filterLabel describes the month filter for the header pill.
func (a App) filterLabel() string {
	if months := a.selectedMonths(); len(months) > 0 {
		if len(months) <= 3 {
			return strings.Join(months, ", ")
		}
		return fmt.Sprintf("%d months", len(months))
	}
	if a.minMonth == 0 || (a.rangeFrom == a.minMonth && a.rangeTo == a.maxMonth) {
		return "All months"
	}
	return source.MonthLabel(a.rangeFrom) + "–" + source.MonthLabel(a.rangeTo)
}

func (a App) channelLabel() string {
	if a.data == nil {
		return "no data"
	}
	n := len(a.selectedChannels())
	switch n {
	case 0:
		return "no channels"
	case len(a.data.Channels):
		return "all channels"
	default:
		return fmt.Sprintf("%d/%d channels", n, len(a.data.Channels))
	}
}

// ─── Loading ────────────────────────────────────────────────────

type loadOutcome struct {
	result   *pipeline.LoadResult
	err      error
	cacheHit bool
}

// loadWorkbook reads path through the SQLite cache, falling back to a full
// parse when the cache is unavailable.
func loadWorkbook(path string, opts pipeline.Options, progressFn pipeline.ProgressFunc) loadOutcome {
	cache, err := store.Open(pipeline.CachePath())
	if err == nil {
		cr, loadErr := pipeline.LoadWithCache(path, opts, cache, progressFn)
		_ = cache.Close()
		if loadErr == nil {
			return loadOutcome{result: &cr.LoadResult, cacheHit: cr.CacheHit}
		}
		if errors.Is(loadErr, source.ErrFileNotFound) {
			return loadOutcome{err: loadErr}
		}
	}

	result, err := pipeline.Load(path, opts, progressFn)
	return loadOutcome{result: result, err: err}
}

// loadDataCmd starts the data loading pipeline in a background goroutine.
// It streams ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(path string, opts pipeline.Options, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send: a skipped update is caught up by the next one.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			out := loadWorkbook(path, opts, progressFn)
			sub <- DataLoadedMsg{
				Result:   out.result,
				Err:      out.err,
				LoadTime: time.Since(start),
				CacheHit: out.cacheHit,
			}
		}()

		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads the workbook in the background (no progress UI).
func refreshDataCmd(path string, opts pipeline.Options) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		out := loadWorkbook(path, opts, nil)
		return RefreshDataMsg{
			Result:   out.result,
			Err:      out.err,
			LoadTime: time.Since(start),
			CacheHit: out.cacheHit,
		}
	}
}

// waitForFileChange blocks until the watcher reports a settled change.
func waitForFileChange(w *watch.FileWatcher) tea.Cmd {
	ch := w.Changes()
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func shortError(err error) string {
	if errors.Is(err, source.ErrFileNotFound) {
		return "file not found"
	}
	return err.Error()
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
// This ensures gaps between cards and empty lines have proper background fill.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
