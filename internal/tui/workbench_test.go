package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"trx/internal/asset"
	"trx/internal/logging"
	"trx/internal/repo"
	"trx/internal/triage"
)

// stubRepo is a minimal in-memory repository for driving the workbench
// model in tests.
type stubRepo struct {
	assets  []asset.Asset
	folders []asset.Folder
	deleted []int64
	nextID  int64
}

func newStubRepo(assets ...asset.Asset) *stubRepo {
	return &stubRepo{
		assets:  assets,
		folders: []asset.Folder{{ID: asset.DefaultFolderID, Name: "Default"}},
		nextID:  int64(len(assets)) + 1,
	}
}

func (r *stubRepo) ListAssets(ctx context.Context) ([]asset.Asset, error) {
	out := make([]asset.Asset, len(r.assets))
	copy(out, r.assets)
	return out, nil
}

func (r *stubRepo) ListFolders(ctx context.Context) ([]asset.Folder, error) {
	out := make([]asset.Folder, len(r.folders))
	copy(out, r.folders)
	return out, nil
}

func (r *stubRepo) ImportBatch(ctx context.Context, items []repo.ImportItem, source asset.Source, opts repo.ImportOptions) (repo.BatchResult, error) {
	var res repo.BatchResult
	for _, item := range items {
		a := asset.Asset{
			ID:          r.nextID,
			URL:         item.URL,
			Method:      item.Method,
			FolderID:    asset.DefaultFolderID,
			Source:      source,
			IsWorkbench: opts.Workbench,
		}
		r.nextID++
		r.assets = append(r.assets, a)
		res.IDs = append(res.IDs, a.ID)
	}
	return res, nil
}

func (r *stubRepo) UpdateAssetSource(ctx context.Context, id int64, source asset.Source) error {
	for i := range r.assets {
		if r.assets[i].ID == id {
			r.assets[i].Source = source
			r.assets[i].IsWorkbench = source == asset.SourceWorkbench
			return nil
		}
	}
	return fmt.Errorf("asset %d not found", id)
}

func (r *stubRepo) UpdateAssetTriage(ctx context.Context, id int64, status, notes string) error {
	return nil
}

func (r *stubRepo) MoveAssetsToFolder(ctx context.Context, ids []int64, folderID int64) error {
	for _, id := range ids {
		for i := range r.assets {
			if r.assets[i].ID == id {
				r.assets[i].FolderID = folderID
			}
		}
	}
	return nil
}

func (r *stubRepo) RescanAsset(ctx context.Context, id int64) error { return nil }

func (r *stubRepo) DeleteAssets(ctx context.Context, ids []int64) error {
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
		r.deleted = append(r.deleted, id)
	}
	kept := r.assets[:0]
	for _, a := range r.assets {
		if !drop[a.ID] {
			kept = append(kept, a)
		}
	}
	r.assets = kept
	return nil
}

func (r *stubRepo) AddFolder(ctx context.Context, name string, parentID int64) (int64, error) {
	id := r.nextID
	r.nextID++
	r.folders = append(r.folders, asset.Folder{ID: id, Name: name, ParentID: parentID})
	return id, nil
}

func (r *stubRepo) DeleteFolder(ctx context.Context, id int64) error {
	kept := r.folders[:0]
	for _, f := range r.folders {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	r.folders = kept
	return nil
}

func (r *stubRepo) RecordImportRun(ctx context.Context, run repo.ImportRun) error { return nil }

func testAssets() []asset.Asset {
	return []asset.Asset{
		{ID: 1, URL: "https://a.com/api/users", Method: "GET", RiskScore: 15, FolderID: 1, Source: asset.SourceImport},
		{ID: 2, URL: "https://a.com/api/orders", Method: "POST", RiskScore: 35, FolderID: 1, Source: asset.SourceImport},
		{ID: 3, URL: "https://b.com/admin", Method: "GET", RiskScore: 60, FolderID: 1, Source: asset.SourceImport},
	}
}

func newTestWorkbench(t *testing.T, assets []asset.Asset) (WorkbenchModel, *stubRepo) {
	t.Helper()

	r := newStubRepo(assets...)
	ctrl := triage.New(r, logging.NewNop())
	if err := ctrl.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	m := NewWorkbench(ctrl)
	m.width = 120
	m.height = 40
	return m, r
}

func keyPress(t *testing.T, m WorkbenchModel, keys ...string) WorkbenchModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.Msg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEscape}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(WorkbenchModel)
	}
	return m
}

func TestWorkbenchCursorNavigation(t *testing.T) {
	m, _ := newTestWorkbench(t, testAssets())

	if m.assetCursor != 0 {
		t.Fatalf("initial cursor = %d, want 0", m.assetCursor)
	}

	m = keyPress(t, m, "j", "j")
	if m.assetCursor != 2 {
		t.Errorf("cursor after jj = %d, want 2", m.assetCursor)
	}

	// Cursor clamps at the end of the view.
	m = keyPress(t, m, "j")
	if m.assetCursor != 2 {
		t.Errorf("cursor should clamp at 2, got %d", m.assetCursor)
	}

	m = keyPress(t, m, "g")
	if m.assetCursor != 0 {
		t.Errorf("cursor after g = %d, want 0", m.assetCursor)
	}

	m = keyPress(t, m, "G")
	if m.assetCursor != 2 {
		t.Errorf("cursor after G = %d, want 2", m.assetCursor)
	}
}

func TestWorkbenchToggleSelection(t *testing.T) {
	m, _ := newTestWorkbench(t, testAssets())

	m = keyPress(t, m, " ", "j", " ")

	sel := m.ctrl.Selection()
	if sel.Count() != 2 {
		t.Fatalf("selection count = %d, want 2", sel.Count())
	}
	view := m.ctrl.FilteredAssets()
	if !sel.IsSelected(view[0].ID) || !sel.IsSelected(view[1].ID) {
		t.Error("first two view assets should be selected")
	}

	// Toggling again removes from the selection.
	m = keyPress(t, m, " ")
	if sel.Count() != 1 {
		t.Errorf("selection count after re-toggle = %d, want 1", sel.Count())
	}
}

func TestWorkbenchRangeSelection(t *testing.T) {
	m, _ := newTestWorkbench(t, testAssets())

	// Anchor on the first row, then range-select to the third.
	m = keyPress(t, m, "enter", "j", "j", "V")

	if got := m.ctrl.Selection().Count(); got != 3 {
		t.Errorf("range selection count = %d, want 3", got)
	}
}

func TestWorkbenchSearchDebounce(t *testing.T) {
	m, _ := newTestWorkbench(t, testAssets())

	m = keyPress(t, m, "/")
	if !m.searchActive {
		t.Fatal("search should be active after /")
	}

	m = keyPress(t, m, "a", "d", "m", "i", "n")

	// The term is not applied until the debounce timer fires.
	if got := m.ctrl.Criteria().SearchTerm; got != "" {
		t.Errorf("search term applied before debounce: %q", got)
	}

	// A stale timer from an earlier keystroke is ignored.
	next, _ := m.Update(searchDebounceMsg{seq: m.searchSeq - 1})
	m = next.(WorkbenchModel)
	if got := m.ctrl.Criteria().SearchTerm; got != "" {
		t.Errorf("stale debounce applied the term: %q", got)
	}

	// The current timer applies it.
	next, _ = m.Update(searchDebounceMsg{seq: m.searchSeq})
	m = next.(WorkbenchModel)
	if got := m.ctrl.Criteria().SearchTerm; got != "admin" {
		t.Errorf("search term = %q, want %q", got, "admin")
	}
	if got := len(m.ctrl.FilteredAssets()); got != 1 {
		t.Errorf("filtered view size = %d, want 1", got)
	}
}

func TestWorkbenchSearchEnterAppliesImmediately(t *testing.T) {
	m, _ := newTestWorkbench(t, testAssets())

	m = keyPress(t, m, "/", "a", "d", "m", "i", "n", "enter")

	if m.searchActive {
		t.Error("search input should be closed after enter")
	}
	if got := m.ctrl.Criteria().SearchTerm; got != "admin" {
		t.Errorf("search term = %q, want %q", got, "admin")
	}
}

func TestWorkbenchSmartFilterCycle(t *testing.T) {
	m, _ := newTestWorkbench(t, testAssets())

	m = keyPress(t, m, "c")
	if got := m.ctrl.Criteria().Smart; got != "Critical" {
		t.Errorf("smart after one cycle = %q, want Critical", got)
	}

	// Cycling through all tags wraps back to All.
	m = keyPress(t, m, "c", "c", "c", "c")
	if got := m.ctrl.Criteria().Smart; got != "All" {
		t.Errorf("smart after full cycle = %q, want All", got)
	}
}

func TestWorkbenchTreeScopeToggle(t *testing.T) {
	m, _ := newTestWorkbench(t, testAssets())

	m.activePane = PaneTree
	m = keyPress(t, m, "j", "enter") // second host (b.com)

	if got := m.ctrl.Criteria().TreePath; got != "b.com" {
		t.Fatalf("tree path = %q, want b.com", got)
	}
	if got := len(m.ctrl.FilteredAssets()); got != 1 {
		t.Errorf("scoped view size = %d, want 1", got)
	}

	// Activating the same node again clears the scope.
	m = keyPress(t, m, "enter")
	if got := m.ctrl.Criteria().TreePath; got != "" {
		t.Errorf("tree path after toggle = %q, want empty", got)
	}
}

func TestWorkbenchTreeExpand(t *testing.T) {
	m, _ := newTestWorkbench(t, testAssets())

	m.activePane = PaneTree
	before := len(m.treeRows())

	m = keyPress(t, m, "l")
	if got := len(m.treeRows()); got <= before {
		t.Errorf("rows after expand = %d, want > %d", got, before)
	}

	m = keyPress(t, m, "h")
	if got := len(m.treeRows()); got != before {
		t.Errorf("rows after collapse = %d, want %d", got, before)
	}
}

func TestWorkbenchPurgeConfirm(t *testing.T) {
	m, r := newTestWorkbench(t, testAssets())

	m = keyPress(t, m, " ", "d")
	if m.state != StatePurgeConfirm {
		t.Fatalf("state = %v, want %v", m.state, StatePurgeConfirm)
	}

	// Default answer is No: enter cancels.
	m = keyPress(t, m, "enter")
	if m.state != StateTriage {
		t.Fatalf("state after cancel = %v, want %v", m.state, StateTriage)
	}
	if len(r.deleted) != 0 {
		t.Fatalf("cancel deleted %v", r.deleted)
	}

	// Confirm with y.
	m = keyPress(t, m, " ", "d", "y")
	if len(r.deleted) != 1 {
		t.Fatalf("deleted = %v, want one id", r.deleted)
	}
	if got := len(m.ctrl.Assets()); got != 2 {
		t.Errorf("assets after purge = %d, want 2", got)
	}
	if m.ctrl.Selection().Count() != 0 {
		t.Error("selection should be pruned after purge")
	}
}

func TestWorkbenchPromoteAndScope(t *testing.T) {
	m, _ := newTestWorkbench(t, testAssets())

	// Promote the asset under the cursor, then switch to workbench scope.
	m = keyPress(t, m, "p", "w")

	if m.ctrl.Scope() != triage.ScopeWorkbench {
		t.Fatalf("scope = %v, want workbench", m.ctrl.Scope())
	}
	view := m.ctrl.FilteredAssets()
	if len(view) != 1 {
		t.Fatalf("workbench view size = %d, want 1", len(view))
	}
	if view[0].Source != asset.SourceWorkbench {
		t.Errorf("promoted source = %q, want Workbench", view[0].Source)
	}

	// Demote empties the workbench view.
	m = keyPress(t, m, "u")
	if got := len(m.ctrl.FilteredAssets()); got != 0 {
		t.Errorf("workbench view after demote = %d, want 0", got)
	}
}

func TestWorkbenchMoveToFolder(t *testing.T) {
	m, r := newTestWorkbench(t, testAssets())

	// Create a folder, then move the cursor asset into it.
	m = keyPress(t, m, "n")
	if m.state != StateAddFolder {
		t.Fatalf("state = %v, want %v", m.state, StateAddFolder)
	}
	m = keyPress(t, m, "s", "t", "a", "g", "i", "n", "g", "enter")
	if len(r.folders) != 2 {
		t.Fatalf("folders = %d, want 2", len(r.folders))
	}

	m = keyPress(t, m, "m")
	if m.state != StateMoveFolder {
		t.Fatalf("state = %v, want %v", m.state, StateMoveFolder)
	}
	m = keyPress(t, m, "j", "enter")

	moved := r.assets[0]
	if moved.FolderID != r.folders[1].ID {
		t.Errorf("asset folder = %d, want %d", moved.FolderID, r.folders[1].ID)
	}
	if m.state != StateTriage {
		t.Errorf("state after move = %v, want %v", m.state, StateTriage)
	}
}

func TestWorkbenchEscPeelsLayers(t *testing.T) {
	m, _ := newTestWorkbench(t, testAssets())

	m = keyPress(t, m, " ", "c")
	// SetCriteria cleared the selection; re-select under the new filter
	// set and give the model a message.
	m = keyPress(t, m, "c", "c", "c", "c") // back to All
	m = keyPress(t, m, " ")
	m.message = "done"

	m = keyPress(t, m, "esc")
	if m.message != "" {
		t.Fatal("first esc should clear the message")
	}
	if m.ctrl.Selection().Count() == 0 {
		t.Fatal("first esc should not touch the selection")
	}

	m = keyPress(t, m, "esc")
	if m.ctrl.Selection().Count() != 0 {
		t.Fatal("second esc should clear the selection")
	}

	m = keyPress(t, m, "c", "esc")
	if got := m.ctrl.Criteria().Smart; got != "All" {
		t.Errorf("third esc should reset criteria, smart = %q", got)
	}
}

func TestWorkbenchViewRendersAssets(t *testing.T) {
	m, _ := newTestWorkbench(t, testAssets())

	out := m.View()
	for _, want := range []string{"a.com", "b.com", "admin"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
