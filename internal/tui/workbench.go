package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trx/internal/asset"
	"trx/internal/domaintree"
	"trx/internal/filter"
	"trx/internal/selection"
	"trx/internal/triage"
)

// searchDebounce is how long typing in the search box must pause before
// the term is applied to the view.
const searchDebounce = 300 * time.Millisecond

// Styles for the workbench.
var (
	wbTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	wbPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	wbActivePaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("212")).
				Padding(0, 1)

	wbHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	wbCursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("212")).
			Bold(true)

	wbSelectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	wbHostStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	wbWorkbenchStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("141"))

	wbErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	wbSuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("40"))

	wbCriticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	wbHighStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	wbMediumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	wbLowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	wbInfoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// WorkbenchState tracks which interaction layer has the keyboard.
type WorkbenchState int

const (
	StateTriage        WorkbenchState = iota // main two-pane view
	StateMoveFolder                          // picking a destination folder
	StateAddFolder                           // naming a new folder
	StatePurgeConfirm                        // confirming asset deletion
	StateFolderConfirm                       // confirming folder deletion
)

// String returns the string representation of the state.
func (s WorkbenchState) String() string {
	switch s {
	case StateTriage:
		return "Triage"
	case StateMoveFolder:
		return "Move To Folder"
	case StateAddFolder:
		return "Add Folder"
	case StatePurgeConfirm:
		return "Purge Confirm"
	case StateFolderConfirm:
		return "Folder Confirm"
	default:
		return "Unknown"
	}
}

// WorkbenchPane represents which pane is focused.
type WorkbenchPane int

const (
	PaneTree WorkbenchPane = iota
	PaneAssets
)

// searchDebounceMsg fires after a pause in search typing. The sequence
// number lets stale timers from earlier keystrokes be ignored.
type searchDebounceMsg struct {
	seq int
}

// smartCycle is the order the smart-filter key steps through.
var smartCycle = []string{filter.All, filter.SmartCritical, filter.SmartPII, filter.SmartSecrets, filter.SmartShadow}

// WorkbenchModel is the main model for the triage workbench.
type WorkbenchModel struct {
	ctrl *triage.Controller

	state      WorkbenchState
	activePane WorkbenchPane
	width      int
	height     int

	// Domain tree pane state. Expansion is keyed by node path and
	// survives collection refreshes.
	expanded   map[string]bool
	treeCursor int
	treeScroll int

	// Asset pane state.
	assetCursor int
	assetScroll int

	// Search state
	searchActive bool
	searchInput  textinput.Model
	searchSeq    int

	// Folder picker / prompt state
	folderCursor int
	folderInput  textinput.Model

	// Confirm state
	confirmYes     bool
	confirmTargets []int64
	confirmFolder  int64

	message        string
	messageIsError bool
}

// NewWorkbench creates the workbench model around a refreshed controller.
func NewWorkbench(ctrl *triage.Controller) WorkbenchModel {
	searchInput := textinput.New()
	searchInput.Placeholder = "search url or findings..."
	searchInput.CharLimit = 128
	searchInput.Width = 40

	folderInput := textinput.New()
	folderInput.Placeholder = "folder name"
	folderInput.CharLimit = 64
	folderInput.Width = 30

	return WorkbenchModel{
		ctrl:        ctrl,
		state:       StateTriage,
		activePane:  PaneAssets,
		expanded:    make(map[string]bool),
		searchInput: searchInput,
		folderInput: folderInput,
	}
}

// Init implements tea.Model.
func (m WorkbenchModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m WorkbenchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case searchDebounceMsg:
		// Only the timer from the latest keystroke applies the term.
		if msg.seq == m.searchSeq {
			m.ctrl.SetSearchTerm(m.searchInput.Value())
			m.assetCursor = 0
			m.assetScroll = 0
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// handleKeyPress handles keyboard input based on current state.
func (m WorkbenchModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StateTriage:
		return m.handleTriageKeys(msg)
	case StateMoveFolder:
		return m.handleMoveFolderKeys(msg)
	case StateAddFolder:
		return m.handleAddFolderKeys(msg)
	case StatePurgeConfirm, StateFolderConfirm:
		return m.handleConfirmKeys(msg)
	default:
		return m, nil
	}
}

// handleTriageKeys handles keyboard input in the main two-pane view.
func (m WorkbenchModel) handleTriageKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchActive {
		return m.handleSearchKeys(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "/":
		m.searchActive = true
		m.searchInput.SetValue(m.ctrl.Criteria().SearchTerm)
		return m, m.searchInput.Focus()

	case "esc":
		// Peel back one layer: message, then selection, then filters.
		switch {
		case m.message != "":
			m.message = ""
		case m.ctrl.Selection().Count() > 0:
			m.ctrl.Selection().Clear()
		default:
			m.ctrl.SetCriteria(filter.DefaultCriteria())
			m.searchInput.SetValue("")
			m.clampCursors()
		}
		return m, nil

	case "tab":
		if m.activePane == PaneTree {
			m.activePane = PaneAssets
		} else {
			m.activePane = PaneTree
		}
		return m, nil

	case "j", "down":
		m.moveCursor(1)
		return m, nil

	case "k", "up":
		m.moveCursor(-1)
		return m, nil

	case "g":
		m.moveCursorTo(0)
		return m, nil

	case "G":
		m.moveCursorTo(1 << 30)
		return m, nil

	case "l", "right":
		if m.activePane == PaneTree {
			if row := m.treeRowAtCursor(); row != nil && len(row.Node.Children) > 0 {
				m.expanded[row.Node.Path] = true
			}
		}
		return m, nil

	case "h", "left":
		if m.activePane == PaneTree {
			if row := m.treeRowAtCursor(); row != nil {
				delete(m.expanded, row.Node.Path)
				m.clampCursors()
			}
		}
		return m, nil

	case "enter":
		if m.activePane == PaneTree {
			return m.handleTreeActivate()
		}
		if a := m.assetAtCursor(); a != nil {
			m.ctrl.OnPrimaryInteraction(a.ID, selection.Modifiers{})
		}
		return m, nil

	case " ", "x":
		if m.activePane == PaneAssets {
			if a := m.assetAtCursor(); a != nil {
				m.ctrl.OnPrimaryInteraction(a.ID, selection.Modifiers{Toggle: true})
			}
		}
		return m, nil

	case "V":
		if m.activePane == PaneAssets {
			if a := m.assetAtCursor(); a != nil {
				m.ctrl.OnPrimaryInteraction(a.ID, selection.Modifiers{Range: true})
			}
		}
		return m, nil

	case "w":
		if m.ctrl.Scope() == triage.ScopeAssets {
			m.ctrl.SetScope(triage.ScopeWorkbench)
		} else {
			m.ctrl.SetScope(triage.ScopeAssets)
		}
		m.assetCursor = 0
		m.assetScroll = 0
		return m, nil

	case "c":
		m.cycleSmartFilter()
		return m, nil

	case "1":
		m.ctrl.HandleSort("risk_score")
		return m, nil
	case "2":
		m.ctrl.HandleSort("url")
		return m, nil
	case "3":
		m.ctrl.HandleSort("method")
		return m, nil
	case "4":
		m.ctrl.HandleSort("status_code")
		return m, nil
	case "5":
		m.ctrl.HandleSort("created_at")
		return m, nil

	case "p":
		return m.runAction("promoted", func(ctx context.Context, ids []int64) error {
			return m.ctrl.Promote(ctx, ids, asset.SourceWorkbench)
		})

	case "u":
		return m.runAction("demoted", func(ctx context.Context, ids []int64) error {
			return m.ctrl.Promote(ctx, ids, asset.SourceImport)
		})

	case "r":
		return m.runAction("rescanned", m.ctrl.Rescan)

	case "R":
		if err := m.ctrl.Refresh(context.Background()); err != nil {
			m.message = fmt.Sprintf("refresh failed: %v", err)
			m.messageIsError = true
		} else {
			m.message = "refreshed"
			m.messageIsError = false
		}
		m.clampCursors()
		return m, nil

	case "d":
		ids := m.targetIDs()
		if len(ids) == 0 {
			return m, nil
		}
		m.confirmTargets = ids
		m.confirmYes = false
		m.state = StatePurgeConfirm
		return m, nil

	case "m":
		if len(m.targetIDs()) == 0 {
			return m, nil
		}
		m.folderCursor = 0
		m.state = StateMoveFolder
		return m, nil

	case "n":
		m.folderInput.SetValue("")
		m.state = StateAddFolder
		return m, m.folderInput.Focus()

	case "D":
		// Delete the folder the view is scoped to.
		id := m.ctrl.Criteria().FolderID
		if id == 0 || id == asset.DefaultFolderID {
			return m, nil
		}
		m.confirmFolder = id
		m.confirmYes = false
		m.state = StateFolderConfirm
		return m, nil
	}

	return m, nil
}

// handleTreeActivate toggles the tree-path filter at the cursor. A
// second activation of the same node clears the scope.
func (m WorkbenchModel) handleTreeActivate() (tea.Model, tea.Cmd) {
	row := m.treeRowAtCursor()
	if row == nil {
		return m, nil
	}

	cr := m.ctrl.Criteria()
	if cr.TreePath == row.Node.Path {
		cr.TreePath = ""
	} else {
		cr.TreePath = row.Node.Path
	}
	m.ctrl.SetCriteria(cr)
	m.assetCursor = 0
	m.assetScroll = 0
	return m, nil
}

// handleSearchKeys handles keyboard input while the search box is focused.
func (m WorkbenchModel) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchActive = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchSeq++
		m.ctrl.SetSearchTerm("")
		m.clampCursors()
		return m, nil

	case "enter":
		// Apply immediately, skipping the debounce.
		m.searchActive = false
		m.searchInput.Blur()
		m.searchSeq++
		m.ctrl.SetSearchTerm(m.searchInput.Value())
		m.assetCursor = 0
		m.assetScroll = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Restart the debounce timer on every keystroke.
	m.searchSeq++
	seq := m.searchSeq
	debounce := tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{seq: seq}
	})
	return m, tea.Batch(cmd, debounce)
}

// handleMoveFolderKeys handles keyboard input in the folder picker.
func (m WorkbenchModel) handleMoveFolderKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	folders := m.ctrl.Folders()

	switch msg.String() {
	case "ctrl+c", "esc":
		m.state = StateTriage
		return m, nil

	case "j", "down":
		if m.folderCursor < len(folders)-1 {
			m.folderCursor++
		}
		return m, nil

	case "k", "up":
		if m.folderCursor > 0 {
			m.folderCursor--
		}
		return m, nil

	case "enter":
		if m.folderCursor >= len(folders) {
			return m, nil
		}
		target := folders[m.folderCursor]
		ids := m.targetIDs()
		if err := m.ctrl.MoveToFolder(context.Background(), ids, target.ID); err != nil {
			m.message = fmt.Sprintf("move failed: %v", err)
			m.messageIsError = true
		} else {
			m.message = fmt.Sprintf("moved %d asset(s) to %s", len(ids), target.Name)
			m.messageIsError = false
		}
		m.state = StateTriage
		m.clampCursors()
		return m, nil
	}

	return m, nil
}

// handleAddFolderKeys handles keyboard input in the new-folder prompt.
func (m WorkbenchModel) handleAddFolderKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.state = StateTriage
		m.folderInput.Blur()
		return m, nil

	case "enter":
		name := strings.TrimSpace(m.folderInput.Value())
		if name == "" {
			return m, nil
		}
		if _, err := m.ctrl.AddFolder(context.Background(), name, 0); err != nil {
			m.message = fmt.Sprintf("add folder failed: %v", err)
			m.messageIsError = true
		} else {
			m.message = fmt.Sprintf("created folder %s", name)
			m.messageIsError = false
		}
		m.state = StateTriage
		m.folderInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.folderInput, cmd = m.folderInput.Update(msg)
	return m, cmd
}

// handleConfirmKeys handles the yes/no confirmation for destructive
// operations. The default answer is No.
func (m WorkbenchModel) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "n", "N":
		m.state = StateTriage
		m.confirmTargets = nil
		m.confirmFolder = 0
		return m, nil

	case "left", "right", "tab", "h", "l":
		m.confirmYes = !m.confirmYes
		return m, nil

	case "y", "Y":
		return m.executeConfirm()

	case "enter":
		if !m.confirmYes {
			m.state = StateTriage
			m.confirmTargets = nil
			m.confirmFolder = 0
			return m, nil
		}
		return m.executeConfirm()
	}

	return m, nil
}

// executeConfirm runs the confirmed destructive operation.
func (m WorkbenchModel) executeConfirm() (tea.Model, tea.Cmd) {
	ctx := context.Background()

	switch m.state {
	case StatePurgeConfirm:
		n := len(m.confirmTargets)
		if err := m.ctrl.Purge(ctx, m.confirmTargets); err != nil {
			m.message = fmt.Sprintf("purge failed: %v", err)
			m.messageIsError = true
		} else {
			m.message = fmt.Sprintf("purged %d asset(s)", n)
			m.messageIsError = false
		}

	case StateFolderConfirm:
		if err := m.ctrl.DeleteFolder(ctx, m.confirmFolder); err != nil {
			m.message = fmt.Sprintf("delete folder failed: %v", err)
			m.messageIsError = true
		} else {
			m.message = "folder deleted"
			m.messageIsError = false
		}
	}

	m.state = StateTriage
	m.confirmTargets = nil
	m.confirmFolder = 0
	m.clampCursors()
	return m, nil
}

// runAction applies a bulk operation to the current targets.
func (m WorkbenchModel) runAction(verb string, fn func(context.Context, []int64) error) (tea.Model, tea.Cmd) {
	ids := m.targetIDs()
	if len(ids) == 0 {
		return m, nil
	}

	if err := fn(context.Background(), ids); err != nil {
		m.message = fmt.Sprintf("%s failed: %v", verb, err)
		m.messageIsError = true
	} else {
		m.message = fmt.Sprintf("%s %d asset(s)", verb, len(ids))
		m.messageIsError = false
	}
	m.clampCursors()
	return m, nil
}

// targetIDs returns the operation targets: the selection when one
// exists, otherwise the asset under the cursor.
func (m WorkbenchModel) targetIDs() []int64 {
	if m.ctrl.Selection().Count() > 0 {
		return m.ctrl.Selection().IDs(m.ctrl.ViewIDs())
	}
	if a := m.assetAtCursor(); a != nil {
		return []int64{a.ID}
	}
	return nil
}

// cycleSmartFilter advances the smart filter to the next tag.
func (m *WorkbenchModel) cycleSmartFilter() {
	cr := m.ctrl.Criteria()
	next := 0
	for i, tag := range smartCycle {
		if cr.Smart == tag {
			next = (i + 1) % len(smartCycle)
			break
		}
	}
	cr.Smart = smartCycle[next]
	m.ctrl.SetCriteria(cr)
	m.assetCursor = 0
	m.assetScroll = 0
}

// treeRows returns the current flattened tree display list.
func (m WorkbenchModel) treeRows() []domaintree.Row {
	return domaintree.Flatten(m.ctrl.DomainTree(), m.expanded)
}

// treeRowAtCursor returns the tree row under the cursor, or nil.
func (m WorkbenchModel) treeRowAtCursor() *domaintree.Row {
	rows := m.treeRows()
	if m.treeCursor >= 0 && m.treeCursor < len(rows) {
		return &rows[m.treeCursor]
	}
	return nil
}

// assetAtCursor returns the asset under the cursor, or nil.
func (m WorkbenchModel) assetAtCursor() *asset.Asset {
	view := m.ctrl.FilteredAssets()
	if m.assetCursor >= 0 && m.assetCursor < len(view) {
		return &view[m.assetCursor]
	}
	return nil
}

// moveCursor moves the active pane's cursor by delta.
func (m *WorkbenchModel) moveCursor(delta int) {
	if m.activePane == PaneTree {
		m.treeCursor = clamp(m.treeCursor+delta, len(m.treeRows()))
		m.treeScroll = scrollFor(m.treeCursor, m.treeScroll, m.paneHeight())
	} else {
		m.assetCursor = clamp(m.assetCursor+delta, len(m.ctrl.FilteredAssets()))
		m.assetScroll = scrollFor(m.assetCursor, m.assetScroll, m.paneHeight())
	}
}

// moveCursorTo jumps the active pane's cursor to an absolute position.
func (m *WorkbenchModel) moveCursorTo(pos int) {
	if m.activePane == PaneTree {
		m.treeCursor = clamp(pos, len(m.treeRows()))
		m.treeScroll = scrollFor(m.treeCursor, m.treeScroll, m.paneHeight())
	} else {
		m.assetCursor = clamp(pos, len(m.ctrl.FilteredAssets()))
		m.assetScroll = scrollFor(m.assetCursor, m.assetScroll, m.paneHeight())
	}
}

// clampCursors fits both cursors to the current view sizes.
func (m *WorkbenchModel) clampCursors() {
	m.treeCursor = clamp(m.treeCursor, len(m.treeRows()))
	m.treeScroll = scrollFor(m.treeCursor, m.treeScroll, m.paneHeight())
	m.assetCursor = clamp(m.assetCursor, len(m.ctrl.FilteredAssets()))
	m.assetScroll = scrollFor(m.assetCursor, m.assetScroll, m.paneHeight())
}

// paneHeight is the number of content lines a pane can show.
func (m WorkbenchModel) paneHeight() int {
	h := m.height - 7
	if h < 5 {
		h = 5
	}
	return h
}

func clamp(v, n int) int {
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

func scrollFor(cursor, scroll, height int) int {
	if height <= 0 {
		return scroll
	}
	if cursor < scroll {
		return cursor
	}
	if cursor >= scroll+height {
		return cursor - height + 1
	}
	return scroll
}

// View implements tea.Model.
func (m WorkbenchModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.state {
	case StateMoveFolder:
		return m.renderMoveFolderView()
	case StateAddFolder:
		return m.renderAddFolderView()
	case StatePurgeConfirm:
		return m.renderConfirmView(fmt.Sprintf("Permanently delete %d asset(s)?", len(m.confirmTargets)))
	case StateFolderConfirm:
		return m.renderConfirmView("Delete this folder? Assets move to the default folder.")
	default:
		return m.renderTriageView()
	}
}

// renderTriageView renders the main two-pane view.
func (m WorkbenchModel) renderTriageView() string {
	leftWidth := m.width/3 - 2
	rightWidth := m.width - leftWidth - 6
	paneHeight := m.paneHeight()

	leftPane := wbPaneStyle.Width(leftWidth).Height(paneHeight)
	if m.activePane == PaneTree {
		leftPane = wbActivePaneStyle.Width(leftWidth).Height(paneHeight)
	}
	rightPane := wbPaneStyle.Width(rightWidth).Height(paneHeight)
	if m.activePane == PaneAssets {
		rightPane = wbActivePaneStyle.Width(rightWidth).Height(paneHeight)
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		leftPane.Render(m.renderTreePane(paneHeight)),
		rightPane.Render(m.renderAssetPane(rightWidth, paneHeight)),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		main,
		m.renderStatusLine(),
		m.renderHelp(),
	)
}

// renderHeader renders the title line with scope and filter summary.
func (m WorkbenchModel) renderHeader() string {
	var sb strings.Builder

	scope := "Assets"
	if m.ctrl.Scope() == triage.ScopeWorkbench {
		scope = "Workbench"
	}
	sb.WriteString(wbTitleStyle.Render("trx"))
	sb.WriteString("  " + scope)
	sb.WriteString(fmt.Sprintf("  %d shown", len(m.ctrl.FilteredAssets())))

	if n := m.ctrl.Selection().Count(); n > 0 {
		sb.WriteString(fmt.Sprintf("  %d selected", n))
	}

	cr := m.ctrl.Criteria()
	if cr.Smart != filter.All {
		sb.WriteString("  [" + cr.Smart + "]")
	}
	if cr.TreePath != "" {
		sb.WriteString("  @" + cr.TreePath)
	}
	if spec := m.ctrl.SortConfig(); spec.Key != "" {
		sb.WriteString(fmt.Sprintf("  sort:%s/%s", spec.Key, spec.Direction))
	}

	if m.searchActive {
		sb.WriteString("  /" + m.searchInput.View())
	} else if cr.SearchTerm != "" {
		sb.WriteString("  /" + cr.SearchTerm)
	}

	return sb.String()
}

// renderTreePane renders the host/path hierarchy.
func (m WorkbenchModel) renderTreePane(height int) string {
	rows := m.treeRows()
	if len(rows) == 0 {
		return wbHelpStyle.Render("no hosts")
	}

	var sb strings.Builder
	end := m.treeScroll + height
	if end > len(rows) {
		end = len(rows)
	}

	scopePath := m.ctrl.Criteria().TreePath

	for i := m.treeScroll; i < end; i++ {
		row := rows[i]
		indent := strings.Repeat("  ", row.Node.Depth)

		marker := "  "
		if len(row.Node.Children) > 0 {
			marker = "▸ "
			if row.Expanded {
				marker = "▾ "
			}
		}

		label := row.Node.Name
		if row.Node.Depth == 0 {
			label = wbHostStyle.Render(label)
		}
		line := fmt.Sprintf("%s%s%s (%d)", indent, marker, label, len(row.Node.AssetIDs))

		if row.Node.Path == scopePath {
			line += " *"
		}
		if i == m.treeCursor && m.activePane == PaneTree {
			line = wbCursorStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// renderAssetPane renders the filtered asset table.
func (m WorkbenchModel) renderAssetPane(width, height int) string {
	view := m.ctrl.FilteredAssets()
	if len(view) == 0 {
		return wbHelpStyle.Render("no assets match the current view")
	}

	var sb strings.Builder
	end := m.assetScroll + height
	if end > len(view) {
		end = len(view)
	}

	sel := m.ctrl.Selection()
	wb := m.ctrl.WorkbenchIDs()

	for i := m.assetScroll; i < end; i++ {
		a := view[i]

		mark := " "
		if sel.IsSelected(a.ID) {
			mark = wbSelectedStyle.Render("✓")
		}
		bench := " "
		if wb[a.ID] {
			bench = wbWorkbenchStyle.Render("◆")
		}

		status := "  -"
		if a.StatusCode > 0 {
			status = fmt.Sprintf("%3d", a.StatusCode)
		}

		urlWidth := width - 28
		if urlWidth < 20 {
			urlWidth = 20
		}
		line := fmt.Sprintf("%s%s %-7s %s %s %s",
			mark, bench, a.Method, status, riskCell(a.RiskScore), truncate(a.URL, urlWidth))

		if n := len(a.Findings); n > 0 {
			line += wbHelpStyle.Render(fmt.Sprintf(" +%d", n))
		}
		if i == m.assetCursor && m.activePane == PaneAssets {
			line = wbCursorStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// renderStatusLine renders the transient message line.
func (m WorkbenchModel) renderStatusLine() string {
	if m.message == "" {
		return ""
	}
	if m.messageIsError {
		return wbErrorStyle.Render(m.message)
	}
	return wbSuccessStyle.Render(m.message)
}

// renderHelp renders the key hint bar.
func (m WorkbenchModel) renderHelp() string {
	return wbHelpStyle.Render(
		"j/k: move • tab: pane • enter: select/scope • space: toggle • V: range • " +
			"/: search • c: smart • 1-5: sort • w: workbench • p/u: promote/demote • " +
			"r: rescan • m: move • d: purge • q: quit")
}

// renderMoveFolderView renders the destination folder picker.
func (m WorkbenchModel) renderMoveFolderView() string {
	var sb strings.Builder

	sb.WriteString(wbTitleStyle.Render("Move to folder") + "\n\n")
	for i, f := range m.ctrl.Folders() {
		line := "  " + f.Name
		if i == m.folderCursor {
			line = wbCursorStyle.Render("> " + f.Name)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n" + wbHelpStyle.Render("j/k: move • enter: confirm • esc: cancel"))

	return sb.String()
}

// renderAddFolderView renders the new-folder prompt.
func (m WorkbenchModel) renderAddFolderView() string {
	var sb strings.Builder

	sb.WriteString(wbTitleStyle.Render("New folder") + "\n\n")
	sb.WriteString("Name: " + m.folderInput.View() + "\n")
	sb.WriteString("\n" + wbHelpStyle.Render("enter: create • esc: cancel"))

	return sb.String()
}

// renderConfirmView renders the yes/no prompt for destructive actions.
func (m WorkbenchModel) renderConfirmView(message string) string {
	var sb strings.Builder

	sb.WriteString(wbTitleStyle.Render(message) + "\n\n")

	yesStyle := lipgloss.NewStyle().Padding(0, 2)
	noStyle := lipgloss.NewStyle().Padding(0, 2)
	if m.confirmYes {
		yesStyle = yesStyle.Background(lipgloss.Color("196")).Foreground(lipgloss.Color("0"))
	} else {
		noStyle = noStyle.Background(lipgloss.Color("212")).Foreground(lipgloss.Color("0"))
	}

	sb.WriteString(fmt.Sprintf("  %s  %s\n", yesStyle.Render("Yes"), noStyle.Render("No")))
	sb.WriteString("\n" + wbHelpStyle.Render("←/→: select • enter: confirm • y/n: quick select • esc: cancel"))

	return sb.String()
}

// riskCell formats a risk score colored by its level.
func riskCell(score int) string {
	text := fmt.Sprintf("%3d", score)
	switch {
	case score >= 80:
		return wbCriticalStyle.Render(text)
	case score >= 50:
		return wbHighStyle.Render(text)
	case score >= 30:
		return wbMediumStyle.Render(text)
	case score > 0:
		return wbLowStyle.Render(text)
	default:
		return wbInfoStyle.Render(text)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}

// RunWorkbench refreshes the controller and runs the workbench until
// the user quits.
func RunWorkbench(ctrl *triage.Controller) error {
	if err := ctrl.Refresh(context.Background()); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	m := NewWorkbench(ctrl)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
