// Package repo defines the asset repository contract the workbench
// works against, with explicit request/response types per operation.
package repo

import (
	"context"
	"time"

	"trx/internal/asset"
)

// ImportItem is one endpoint staged for import. It has no id yet; the
// repository assigns identity on creation.
type ImportItem struct {
	URL       string       `json:"url"`
	Method    string       `json:"method"`
	Recursive bool         `json:"recursive,omitempty"`
	Source    asset.Source `json:"source,omitempty"` // per-item override of the run's destination tag, used for recursive discovery
}

// ImportOptions tunes a bulk import call.
type ImportOptions struct {
	// SkipDuplicates asks the repository to ignore items whose
	// url+method already exists. Enforcement is the repository's
	// responsibility; callers treat the flag as a hint.
	SkipDuplicates bool
	// Workbench marks imported (and pre-existing duplicate) assets as
	// members of the session workbench.
	Workbench bool
}

// BatchResult reports one bulk-import call. Partial success is normal:
// Errors describes the items that failed, IDs the ones that landed.
type BatchResult struct {
	IDs    []int64
	Errors []string
}

// ImportRun is the audit record of one coordinator run.
type ImportRun struct {
	ImportID   string // uuid
	Source     asset.Source
	Total      int
	Succeeded  int
	Failed     int
	Duplicates int
	Status     string // "completed", "completed_with_errors"
	StartedAt  time.Time
	DurationMS int64
}

// Repository is the persistent asset store. Every call is a
// request/response unit of work; implementations must keep each item
// import atomic (a failed item never half-applies).
type Repository interface {
	ListAssets(ctx context.Context) ([]asset.Asset, error)
	ListFolders(ctx context.Context) ([]asset.Folder, error)

	// ImportBatch imports one contiguous batch and reports per-item
	// outcomes for that batch only.
	ImportBatch(ctx context.Context, items []ImportItem, source asset.Source, opts ImportOptions) (BatchResult, error)

	UpdateAssetSource(ctx context.Context, id int64, source asset.Source) error
	UpdateAssetTriage(ctx context.Context, id int64, status, notes string) error
	MoveAssetsToFolder(ctx context.Context, ids []int64, folderID int64) error
	RescanAsset(ctx context.Context, id int64) error
	DeleteAssets(ctx context.Context, ids []int64) error

	AddFolder(ctx context.Context, name string, parentID int64) (int64, error)
	DeleteFolder(ctx context.Context, id int64) error

	RecordImportRun(ctx context.Context, run ImportRun) error
}
