// Package triage wires the filter, selection, tree and import machinery
// to the asset repository and exposes the single mutation surface the
// view layer talks to.
package triage

import (
	"context"

	"trx/internal/asset"
	"trx/internal/domaintree"
	"trx/internal/filter"
	"trx/internal/importer"
	"trx/internal/logging"
	"trx/internal/repo"
	"trx/internal/selection"
)

// Scope names which collection slice the view is looking at.
type Scope string

const (
	ScopeAssets    Scope = "assets"    // folder-based asset manager
	ScopeWorkbench Scope = "workbench" // session workbench set
)

// Controller owns the session state of one triage sitting: the current
// collection snapshot, the derived view configuration, the selection,
// and the workbench id set. All mutations go through the repository
// followed by a full re-fetch; the snapshot itself is never edited in
// place.
type Controller struct {
	repo  repo.Repository
	coord *importer.Coordinator
	log   logging.Logger

	assets  []asset.Asset
	folders []asset.Folder

	criteria  filter.Criteria
	sort      filter.SortSpec
	selection *selection.State
	workbench map[int64]bool
	scope     Scope
}

// New returns a controller with an empty snapshot and identity view.
func New(r repo.Repository, log logging.Logger) *Controller {
	return &Controller{
		repo:      r,
		coord:     importer.New(r, log),
		log:       log,
		criteria:  filter.DefaultCriteria(),
		selection: selection.New(),
		workbench: make(map[int64]bool),
		scope:     ScopeAssets,
	}
}

// NewWithCoordinator injects a custom coordinator, for tests that need
// a deterministic sleeper.
func NewWithCoordinator(r repo.Repository, c *importer.Coordinator, log logging.Logger) *Controller {
	ctrl := New(r, log)
	ctrl.coord = c
	return ctrl
}

// Refresh re-fetches the collection and folders from the repository,
// prunes stale selection entries, and rebuilds the workbench set from
// persisted flags. A repository outage degrades to an empty snapshot.
func (c *Controller) Refresh(ctx context.Context) error {
	assets, err := c.repo.ListAssets(ctx)
	if err != nil {
		c.log.Error("refresh failed", "error", err)
		c.assets = nil
		c.selection.Clear()
		return err
	}
	c.assets = assets

	if folders, err := c.repo.ListFolders(ctx); err == nil {
		c.folders = folders
	} else {
		c.log.Warn("listing folders failed", "error", err)
	}

	live := make(map[int64]bool, len(assets))
	for i := range assets {
		live[assets[i].ID] = true
		if assets[i].IsWorkbench {
			c.workbench[assets[i].ID] = true
		}
	}
	c.selection.Prune(live)
	for id := range c.workbench {
		if !live[id] {
			delete(c.workbench, id)
		}
	}
	return nil
}

// Assets returns the raw snapshot.
func (c *Controller) Assets() []asset.Asset { return c.assets }

// Folders returns the folder list from the last refresh.
func (c *Controller) Folders() []asset.Folder { return c.folders }

// Scope returns the active view scope.
func (c *Controller) Scope() Scope { return c.scope }

// SetScope switches between the asset manager and the workbench,
// clearing the selection (the view changes under it).
func (c *Controller) SetScope(s Scope) {
	c.scope = s
	c.selection.Clear()
}

// Criteria returns the active filter criteria.
func (c *Controller) Criteria() filter.Criteria { return c.criteria }

// SetCriteria replaces the filter criteria and clears the selection.
func (c *Controller) SetCriteria(cr filter.Criteria) {
	c.criteria = cr
	c.selection.Clear()
}

// SetSearchTerm updates only the search term. The caller is expected
// to debounce; the controller applies it immediately.
func (c *Controller) SetSearchTerm(term string) {
	c.criteria.SearchTerm = term
}

// SortConfig returns the active sort.
func (c *Controller) SortConfig() filter.SortSpec { return c.sort }

// SetSort replaces the sort spec outright.
func (c *Controller) SetSort(spec filter.SortSpec) { c.sort = spec }

// HandleSort toggles sorting on key: same key flips direction, a new
// key resets to ascending.
func (c *Controller) HandleSort(key string) {
	c.sort = c.sort.Toggle(key)
}

// FilteredAssets derives the current view: scope slice, then filter,
// then sort. The snapshot is never mutated.
func (c *Controller) FilteredAssets() []asset.Asset {
	in := c.assets
	if c.scope == ScopeWorkbench {
		scoped := make([]asset.Asset, 0, len(c.workbench))
		for i := range in {
			if c.workbench[in[i].ID] {
				scoped = append(scoped, in[i])
			}
		}
		in = scoped
	}
	return filter.Apply(in, c.criteria, c.sort)
}

// ViewIDs returns the ordered ids of the current view, the sequence
// selection ranges are computed against.
func (c *Controller) ViewIDs() []int64 {
	view := c.FilteredAssets()
	ids := make([]int64, len(view))
	for i := range view {
		ids[i] = view[i].ID
	}
	return ids
}

// DomainTree rebuilds the host/path hierarchy from the raw collection.
func (c *Controller) DomainTree() map[string]*domaintree.Node {
	return domaintree.Build(c.assets)
}

// Selection exposes the selection state to the view layer.
func (c *Controller) Selection() *selection.State { return c.selection }

// OnPrimaryInteraction applies a click to the selection against the
// currently displayed view order.
func (c *Controller) OnPrimaryInteraction(id int64, mods selection.Modifiers) {
	c.selection.OnPrimaryInteraction(id, mods, c.ViewIDs())
}

// OnContextInteraction applies a right-click to the selection.
func (c *Controller) OnContextInteraction(id int64) {
	c.selection.OnContextInteraction(id)
}

// RunImport stages items through the batch coordinator, merges the
// result into the destination, and re-fetches the collection so the
// view reflects ground truth regardless of how many batches failed.
func (c *Controller) RunImport(ctx context.Context, items []repo.ImportItem, dest importer.Destination, opts importer.Options) (importer.Result, error) {
	result, runErr := c.coord.Run(ctx, items, dest, opts)

	// Merge once, after all batches.
	switch dest {
	case importer.DestWorkbench:
		for _, id := range result.NewIDs {
			c.workbench[id] = true
		}
		c.scope = ScopeWorkbench
	default:
		c.scope = ScopeAssets
	}
	c.criteria = filter.DefaultCriteria()
	c.selection.Clear()

	// The re-fetch is unconditional; partial failure still changed
	// ground truth.
	if err := c.Refresh(ctx); err != nil {
		c.log.Warn("post-import refresh failed", "error", err)
	}
	return result, runErr
}

// Promote moves the selected assets' source label (Workbench/User) and
// refreshes.
func (c *Controller) Promote(ctx context.Context, ids []int64, source asset.Source) error {
	for _, id := range ids {
		if err := c.repo.UpdateAssetSource(ctx, id, source); err != nil {
			return err
		}
		if source == asset.SourceWorkbench {
			c.workbench[id] = true
		} else {
			delete(c.workbench, id)
		}
	}
	return c.Refresh(ctx)
}

// MoveToFolder reassigns assets and refreshes.
func (c *Controller) MoveToFolder(ctx context.Context, ids []int64, folderID int64) error {
	if err := c.repo.MoveAssetsToFolder(ctx, ids, folderID); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// Rescan refreshes assets' derived columns and re-fetches.
func (c *Controller) Rescan(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if err := c.repo.RescanAsset(ctx, id); err != nil {
			return err
		}
	}
	return c.Refresh(ctx)
}

// Purge deletes assets and refreshes; the selection prune on refresh
// clears any deleted ids.
func (c *Controller) Purge(ctx context.Context, ids []int64) error {
	if err := c.repo.DeleteAssets(ctx, ids); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// UpdateTriage sets an asset's triage status and notes.
func (c *Controller) UpdateTriage(ctx context.Context, id int64, status, notes string) error {
	if err := c.repo.UpdateAssetTriage(ctx, id, status, notes); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// AddFolder creates a folder and refreshes the folder list.
func (c *Controller) AddFolder(ctx context.Context, name string, parentID int64) (int64, error) {
	id, err := c.repo.AddFolder(ctx, name, parentID)
	if err != nil {
		return 0, err
	}
	return id, c.Refresh(ctx)
}

// DeleteFolder removes a folder (assets fall back to the default) and
// refreshes.
func (c *Controller) DeleteFolder(ctx context.Context, id int64) error {
	if err := c.repo.DeleteFolder(ctx, id); err != nil {
		return err
	}
	if c.criteria.FolderID == id {
		c.criteria.FolderID = 0
	}
	return c.Refresh(ctx)
}

// WorkbenchIDs returns the session workbench set.
func (c *Controller) WorkbenchIDs() map[int64]bool { return c.workbench }
