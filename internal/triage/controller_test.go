package triage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"trx/internal/asset"
	"trx/internal/filter"
	"trx/internal/importer"
	"trx/internal/logging"
	"trx/internal/repo"
	"trx/internal/selection"
)

// memRepo is an in-memory Repository for controller tests.
type memRepo struct {
	assets      map[int64]*asset.Asset
	folders     map[int64]*asset.Folder
	nextID      int64
	failBatch   map[int]error // 1-based ImportBatch call number -> error
	batchCalls  int
	listCalls   int
	failListing bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		assets:    make(map[int64]*asset.Asset),
		folders:   map[int64]*asset.Folder{1: {ID: 1, Name: "Default"}},
		failBatch: make(map[int]error),
	}
}

func (m *memRepo) seed(urls ...string) {
	for _, u := range urls {
		m.nextID++
		m.assets[m.nextID] = &asset.Asset{
			ID: m.nextID, URL: u, Method: "GET", FolderID: 1,
			Source: asset.SourceUser, IsDocumented: true,
		}
	}
}

func (m *memRepo) ListAssets(context.Context) ([]asset.Asset, error) {
	m.listCalls++
	if m.failListing {
		return nil, errors.New("repository unavailable")
	}
	out := make([]asset.Asset, 0, len(m.assets))
	for id := int64(1); id <= m.nextID; id++ {
		if a, ok := m.assets[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memRepo) ListFolders(context.Context) ([]asset.Folder, error) {
	out := make([]asset.Folder, 0, len(m.folders))
	for _, f := range m.folders {
		out = append(out, *f)
	}
	return out, nil
}

func (m *memRepo) ImportBatch(_ context.Context, items []repo.ImportItem, source asset.Source, opts repo.ImportOptions) (repo.BatchResult, error) {
	m.batchCalls++
	if err := m.failBatch[m.batchCalls]; err != nil {
		return repo.BatchResult{}, err
	}
	var res repo.BatchResult
	for _, item := range items {
		m.nextID++
		m.assets[m.nextID] = &asset.Asset{
			ID: m.nextID, URL: item.URL, Method: item.Method, FolderID: 1,
			Source: source, IsWorkbench: opts.Workbench, IsDocumented: true,
		}
		res.IDs = append(res.IDs, m.nextID)
	}
	return res, nil
}

func (m *memRepo) UpdateAssetSource(_ context.Context, id int64, source asset.Source) error {
	a, ok := m.assets[id]
	if !ok {
		return fmt.Errorf("asset %d not found", id)
	}
	a.Source = source
	a.IsWorkbench = source == asset.SourceWorkbench
	return nil
}

func (m *memRepo) UpdateAssetTriage(_ context.Context, id int64, status, notes string) error {
	a, ok := m.assets[id]
	if !ok {
		return fmt.Errorf("asset %d not found", id)
	}
	a.TriageStatus = status
	a.Notes = notes
	return nil
}

func (m *memRepo) MoveAssetsToFolder(_ context.Context, ids []int64, folderID int64) error {
	for _, id := range ids {
		if a, ok := m.assets[id]; ok {
			a.FolderID = folderID
		}
	}
	return nil
}

func (m *memRepo) RescanAsset(_ context.Context, id int64) error {
	a, ok := m.assets[id]
	if !ok {
		return fmt.Errorf("asset %d not found", id)
	}
	a.RiskScore = asset.AssessRisk(a.URL, a.Method).Score
	return nil
}

func (m *memRepo) DeleteAssets(_ context.Context, ids []int64) error {
	for _, id := range ids {
		delete(m.assets, id)
	}
	return nil
}

func (m *memRepo) AddFolder(_ context.Context, name string, parentID int64) (int64, error) {
	m.nextID++
	m.folders[m.nextID] = &asset.Folder{ID: m.nextID, Name: name, ParentID: parentID}
	return m.nextID, nil
}

func (m *memRepo) DeleteFolder(_ context.Context, id int64) error {
	for _, a := range m.assets {
		if a.FolderID == id {
			a.FolderID = asset.DefaultFolderID
		}
	}
	delete(m.folders, id)
	return nil
}

func (m *memRepo) RecordImportRun(context.Context, repo.ImportRun) error { return nil }

type instantSleeper struct{}

func (instantSleeper) Sleep(context.Context, time.Duration) {}

func newTestController(r *memRepo) *Controller {
	coord := importer.NewWithSleeper(r, logging.NewNop(), instantSleeper{})
	return NewWithCoordinator(r, coord, logging.NewNop())
}

func TestRefreshPrunesStaleSelection(t *testing.T) {
	r := newMemRepo()
	r.seed("https://a.com/1", "https://a.com/2", "https://a.com/3")
	c := newTestController(r)
	ctx := context.Background()

	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	c.OnPrimaryInteraction(1, selection.Modifiers{})
	c.OnPrimaryInteraction(3, selection.Modifiers{Range: true})
	if c.Selection().Count() != 3 {
		t.Fatalf("expected full range selected, got %v", c.Selection().Selected)
	}

	// Asset 2 deleted elsewhere.
	if err := r.DeleteAssets(ctx, []int64{2}); err != nil {
		t.Fatal(err)
	}
	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if c.Selection().IsSelected(2) {
		t.Error("stale id must be pruned on refresh")
	}
	if !c.Selection().IsSelected(1) || !c.Selection().IsSelected(3) {
		t.Errorf("live ids must survive, got %v", c.Selection().Selected)
	}
}

func TestRefreshFailureDegradesToEmpty(t *testing.T) {
	r := newMemRepo()
	r.seed("https://a.com/1")
	c := newTestController(r)
	ctx := context.Background()

	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	r.failListing = true
	if err := c.Refresh(ctx); err == nil {
		t.Fatal("expected refresh error")
	}
	if len(c.Assets()) != 0 {
		t.Errorf("outage should degrade to empty snapshot, got %d assets", len(c.Assets()))
	}
	if got := c.FilteredAssets(); len(got) != 0 {
		t.Errorf("filtered view should be empty, got %d", len(got))
	}
}

func TestRangeSelectionAgainstSortedView(t *testing.T) {
	r := newMemRepo()
	r.seed("https://a.com/1", "https://a.com/2", "https://a.com/3")
	r.assets[1].RiskScore = 10
	r.assets[2].RiskScore = 90
	r.assets[3].RiskScore = 50
	c := newTestController(r)
	ctx := context.Background()

	if err := c.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	c.HandleSort("risk_score") // ascending: 1, 3, 2

	c.OnPrimaryInteraction(1, selection.Modifiers{})
	c.OnPrimaryInteraction(3, selection.Modifiers{Range: true})

	if c.Selection().IsSelected(2) {
		t.Error("2 sorts after 3, range 1..3 must not include it")
	}
	if !c.Selection().IsSelected(1) || !c.Selection().IsSelected(3) {
		t.Errorf("expected 1 and 3, got %v", c.Selection().Selected)
	}
}

func TestHandleSortToggles(t *testing.T) {
	c := newTestController(newMemRepo())
	c.HandleSort("risk_score")
	if c.SortConfig().Direction != filter.Ascending {
		t.Errorf("first sort should ascend")
	}
	c.HandleSort("risk_score")
	if c.SortConfig().Direction != filter.Descending {
		t.Errorf("second sort should descend")
	}
	c.HandleSort("url")
	if c.SortConfig().Key != "url" || c.SortConfig().Direction != filter.Ascending {
		t.Errorf("new key resets to asc, got %+v", c.SortConfig())
	}
}

func TestRunImportToWorkbench(t *testing.T) {
	r := newMemRepo()
	c := newTestController(r)
	ctx := context.Background()

	items := []repo.ImportItem{
		{URL: "https://a.com/1", Method: "GET"},
		{URL: "https://a.com/2", Method: "GET"},
	}
	res, err := c.RunImport(ctx, items, importer.DestWorkbench, importer.Options{})
	if err != nil {
		t.Fatalf("RunImport: %v", err)
	}
	if len(res.NewIDs) != 2 || res.ErrorCount != 0 {
		t.Fatalf("result = %+v", res)
	}

	if c.Scope() != ScopeWorkbench {
		t.Error("workbench import should switch scope")
	}
	for _, id := range res.NewIDs {
		if !c.WorkbenchIDs()[id] {
			t.Errorf("id %d missing from workbench set", id)
		}
	}
	if got := c.Criteria(); got != filter.DefaultCriteria() {
		t.Errorf("transient filters must reset, got %+v", got)
	}
	if len(c.Assets()) != 2 {
		t.Errorf("post-import refresh should load the collection, got %d", len(c.Assets()))
	}
	view := c.FilteredAssets()
	if len(view) != 2 {
		t.Errorf("workbench view should show imported assets, got %d", len(view))
	}
}

func TestRunImportPartialFailureStillRefetches(t *testing.T) {
	r := newMemRepo()
	r.failBatch[2] = errors.New("backend flake")
	c := newTestController(r)
	ctx := context.Background()

	items := make([]repo.ImportItem, 12)
	for i := range items {
		items[i] = repo.ImportItem{URL: fmt.Sprintf("https://a.com/%d", i), Method: "GET"}
	}
	res, err := c.RunImport(ctx, items, importer.DestAssetManager, importer.Options{BatchMode: true, BatchSize: 5})
	if err != nil {
		t.Fatalf("RunImport: %v", err)
	}

	if len(res.NewIDs) != 7 || res.ErrorCount != 5 {
		t.Errorf("expected 7 imported / 5 errors, got %+v", res)
	}
	if c.Scope() != ScopeAssets {
		t.Error("asset manager import resets scope")
	}
	if r.listCalls == 0 {
		t.Error("re-fetch must happen even after a failed batch")
	}
	if len(c.Assets()) != 7 {
		t.Errorf("snapshot should hold the 7 landed assets, got %d", len(c.Assets()))
	}
}

func TestPromoteAndScope(t *testing.T) {
	r := newMemRepo()
	r.seed("https://a.com/1", "https://a.com/2")
	c := newTestController(r)
	ctx := context.Background()
	if err := c.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	if err := c.Promote(ctx, []int64{1}, asset.SourceWorkbench); err != nil {
		t.Fatalf("Promote: %v", err)
	}
	c.SetScope(ScopeWorkbench)
	view := c.FilteredAssets()
	if len(view) != 1 || view[0].ID != 1 {
		t.Errorf("workbench view = %v", view)
	}

	if err := c.Promote(ctx, []int64{1}, asset.SourceUser); err != nil {
		t.Fatalf("demote: %v", err)
	}
	if c.WorkbenchIDs()[1] {
		t.Error("demoted asset should leave the workbench set")
	}
}

func TestPurgeClearsSelection(t *testing.T) {
	r := newMemRepo()
	r.seed("https://a.com/1", "https://a.com/2")
	c := newTestController(r)
	ctx := context.Background()
	if err := c.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	c.OnPrimaryInteraction(1, selection.Modifiers{})
	if err := c.Purge(ctx, []int64{1}); err != nil {
		t.Fatalf("Purge: %v", err)
	}

	if c.Selection().IsSelected(1) {
		t.Error("purged asset must leave the selection")
	}
	if len(c.Assets()) != 1 {
		t.Errorf("expected 1 asset left, got %d", len(c.Assets()))
	}
}

func TestDeleteFolderClearsFolderScope(t *testing.T) {
	r := newMemRepo()
	r.seed("https://a.com/1")
	c := newTestController(r)
	ctx := context.Background()
	if err := c.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	folderID, err := c.AddFolder(ctx, "Targets", 0)
	if err != nil {
		t.Fatalf("AddFolder: %v", err)
	}
	if err := c.MoveToFolder(ctx, []int64{1}, folderID); err != nil {
		t.Fatalf("MoveToFolder: %v", err)
	}

	cr := c.Criteria()
	cr.FolderID = folderID
	c.SetCriteria(cr)

	if err := c.DeleteFolder(ctx, folderID); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	if c.Criteria().FolderID != 0 {
		t.Error("deleting the scoped folder should drop the scope")
	}
	if c.Assets()[0].FolderID != asset.DefaultFolderID {
		t.Errorf("asset should fall back to default folder, got %d", c.Assets()[0].FolderID)
	}
}

func TestDomainTreeFromSnapshot(t *testing.T) {
	r := newMemRepo()
	r.seed("https://a.com/x/y", "https://a.com/x/z", "https://b.com/")
	c := newTestController(r)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	tree := c.DomainTree()
	if len(tree) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(tree))
	}
	if got := len(tree["a.com"].AssetIDs); got != 2 {
		t.Errorf("a.com should hold 2 ids, got %d", got)
	}
}
