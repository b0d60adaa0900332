// Package store implements the asset repository on SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"trx/internal/asset"
	"trx/internal/repo"
	"trx/internal/store/migrations"
	"trx/internal/urlutil"
)

// Store is a SQLite-backed repo.Repository.
type Store struct {
	conn *sql.DB
	path string
}

var _ repo.Repository = (*Store)(nil)

// Open opens or creates the asset database at dbPath and migrates it to
// the latest schema.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL keeps reads from blocking during imports.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if err := migrations.Up(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &Store{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

const assetColumns = `id, url, method, status_code, risk_score, findings, folder_id,
	source, recursive, is_workbench, is_documented, notes, triage_status,
	created_at, updated_at`

// ListAssets returns the full asset snapshot, newest first.
func (s *Store) ListAssets(ctx context.Context) ([]asset.Asset, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	var assets []asset.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func scanAsset(rows *sql.Rows) (asset.Asset, error) {
	var a asset.Asset
	var findingsJSON string
	if err := rows.Scan(&a.ID, &a.URL, &a.Method, &a.StatusCode, &a.RiskScore,
		&findingsJSON, &a.FolderID, &a.Source, &a.Recursive, &a.IsWorkbench,
		&a.IsDocumented, &a.Notes, &a.TriageStatus, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return a, fmt.Errorf("scanning asset: %w", err)
	}
	// Corrupt findings degrade to none rather than failing the listing.
	if err := json.Unmarshal([]byte(findingsJSON), &a.Findings); err != nil {
		a.Findings = nil
	}
	return a, nil
}

// ListFolders returns all folders in id order.
func (s *Store) ListFolders(ctx context.Context) ([]asset.Folder, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, name, COALESCE(parent_id, 0) FROM folders ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	defer rows.Close()

	var folders []asset.Folder
	for rows.Next() {
		var f asset.Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.ParentID); err != nil {
			return nil, fmt.Errorf("scanning folder: %w", err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

var allowedMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "HEAD": true, "OPTIONS": true,
}

// ImportBatch imports one batch of staged items. Each item is atomic:
// a failing item is reported in Errors and never half-applies, and the
// remaining items in the batch still proceed.
func (s *Store) ImportBatch(ctx context.Context, items []repo.ImportItem, source asset.Source, opts repo.ImportOptions) (repo.BatchResult, error) {
	var res repo.BatchResult

	for _, item := range items {
		id, err := s.importItem(ctx, item, source, opts)
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
			continue
		}
		if id != 0 {
			res.IDs = append(res.IDs, id)
		}
	}
	return res, nil
}

// importItem applies one staged item. A zero id with nil error means
// the item was skipped as a duplicate.
func (s *Store) importItem(ctx context.Context, item repo.ImportItem, source asset.Source, opts repo.ImportOptions) (int64, error) {
	raw := strings.TrimSpace(item.URL)
	if raw == "" {
		return 0, fmt.Errorf("empty url")
	}

	method := strings.ToUpper(strings.TrimSpace(item.Method))
	if method == "" {
		method = "GET"
	}
	if !allowedMethods[method] {
		return 0, fmt.Errorf("disallowed method %q for %s", item.Method, raw)
	}

	url := urlutil.EnsureScheme(raw)
	if normalized, ok := urlutil.Normalize(url); ok {
		url = normalized
	}

	// Workbench imports must reach existing rows so their workbench
	// flag gets set; duplicates are only skipped for other destinations.
	if opts.SkipDuplicates && !opts.Workbench {
		exists, err := s.assetExists(ctx, url, method)
		if err != nil {
			return 0, err
		}
		if exists {
			return 0, nil
		}
	}

	itemSource := source
	if item.Source != "" {
		itemSource = item.Source
	}
	risk := asset.AssessRisk(url, method)

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning import tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO assets (url, method, source, recursive, is_workbench, risk_score)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		url, method, string(itemSource), item.Recursive, opts.Workbench, risk.Score); err != nil {
		return 0, fmt.Errorf("inserting %s: %w", url, err)
	}

	var id int64
	var currentSource string
	var currentRecursive bool
	if err := tx.QueryRowContext(ctx,
		`SELECT id, source, recursive FROM assets WHERE url = ? AND method = ?`,
		url, method).Scan(&id, &currentSource, &currentRecursive); err != nil {
		return 0, fmt.Errorf("reading back %s: %w", url, err)
	}

	if item.Recursive && !currentRecursive {
		if _, err := tx.ExecContext(ctx, `UPDATE assets SET recursive = 1 WHERE id = ?`, id); err != nil {
			return 0, fmt.Errorf("updating recursive flag: %w", err)
		}
	}

	// An existing asset's source upgrades to the incoming one unless the
	// incoming source is Recursive; recursive discovery never demotes an
	// explicit import.
	if itemSource != asset.SourceRecursive && string(itemSource) != currentSource {
		if _, err := tx.ExecContext(ctx, `UPDATE assets SET source = ? WHERE id = ?`, string(itemSource), id); err != nil {
			return 0, fmt.Errorf("updating source: %w", err)
		}
	}

	if opts.Workbench {
		if _, err := tx.ExecContext(ctx, `UPDATE assets SET is_workbench = 1 WHERE id = ?`, id); err != nil {
			return 0, fmt.Errorf("updating workbench flag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing %s: %w", url, err)
	}
	return id, nil
}

func (s *Store) assetExists(ctx context.Context, url, method string) (bool, error) {
	var exists bool
	err := s.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM assets WHERE url = ? AND method = ?)`,
		url, method).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking duplicate: %w", err)
	}
	return exists, nil
}

// UpdateAssetSource changes an asset's source label, used to promote or
// demote between Workbench and User.
func (s *Store) UpdateAssetSource(ctx context.Context, id int64, source asset.Source) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE assets SET source = ?, is_workbench = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(source), source == asset.SourceWorkbench, id)
	if err != nil {
		return fmt.Errorf("updating source for asset %d: %w", id, err)
	}
	return requireRow(res, id)
}

// UpdateAssetTriage sets the analyst-facing triage status and notes.
func (s *Store) UpdateAssetTriage(ctx context.Context, id int64, status, notes string) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE assets SET triage_status = ?, notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, notes, id)
	if err != nil {
		return fmt.Errorf("updating triage for asset %d: %w", id, err)
	}
	return requireRow(res, id)
}

// MoveAssetsToFolder reassigns assets to a folder.
func (s *Store) MoveAssetsToFolder(ctx context.Context, ids []int64, folderID int64) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning move tx: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`UPDATE assets SET folder_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			folderID, id); err != nil {
			return fmt.Errorf("moving asset %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// RescanAsset re-derives the passive risk assessment for an asset and
// refreshes its timestamp. Active probing belongs to an external
// scanner; this keeps the heuristic columns current.
func (s *Store) RescanAsset(ctx context.Context, id int64) error {
	var url, method string
	err := s.conn.QueryRowContext(ctx, `SELECT url, method FROM assets WHERE id = ?`, id).Scan(&url, &method)
	if err == sql.ErrNoRows {
		return fmt.Errorf("asset %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("loading asset %d: %w", id, err)
	}

	risk := asset.AssessRisk(url, method)
	if _, err := s.conn.ExecContext(ctx,
		`UPDATE assets SET risk_score = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		risk.Score, id); err != nil {
		return fmt.Errorf("updating risk for asset %d: %w", id, err)
	}
	return nil
}

// DeleteAssets removes assets by id.
func (s *Store) DeleteAssets(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := s.conn.ExecContext(ctx,
		`DELETE FROM assets WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("deleting assets: %w", err)
	}
	return nil
}

// AddFolder creates a folder; parentID 0 means a root folder.
func (s *Store) AddFolder(ctx context.Context, name string, parentID int64) (int64, error) {
	var parent any
	if parentID != 0 {
		parent = parentID
	}
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO folders (name, parent_id) VALUES (?, ?)`, name, parent)
	if err != nil {
		return 0, fmt.Errorf("adding folder %q: %w", name, err)
	}
	return res.LastInsertId()
}

// DeleteFolder removes a folder, reassigning its assets to the default
// folder first. The default folder itself cannot be deleted.
func (s *Store) DeleteFolder(ctx context.Context, id int64) error {
	if id == asset.DefaultFolderID {
		return fmt.Errorf("folder %d is reserved", id)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE assets SET folder_id = ? WHERE folder_id = ?`, asset.DefaultFolderID, id); err != nil {
		return fmt.Errorf("reassigning assets from folder %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting folder %d: %w", id, err)
	}
	return tx.Commit()
}

// RecordImportRun persists the audit record of one import run.
func (s *Store) RecordImportRun(ctx context.Context, run repo.ImportRun) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO import_runs (import_id, source, total_assets, successful_assets,
		 failed_assets, duplicate_assets, status, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ImportID, string(run.Source), run.Total, run.Succeeded, run.Failed,
		run.Duplicates, run.Status, run.StartedAt, run.DurationMS)
	if err != nil {
		return fmt.Errorf("recording import run %s: %w", run.ImportID, err)
	}
	return nil
}

// SetFindings replaces an asset's findings, as delivered by an external
// detector, and refreshes updated_at.
func (s *Store) SetFindings(ctx context.Context, id int64, findings []asset.Finding, statusCode int) error {
	data, err := json.Marshal(findings)
	if err != nil {
		return fmt.Errorf("encoding findings: %w", err)
	}
	res, err := s.conn.ExecContext(ctx,
		`UPDATE assets SET findings = ?, status_code = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(data), statusCode, id)
	if err != nil {
		return fmt.Errorf("updating findings for asset %d: %w", id, err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("asset %d not found", id)
	}
	return nil
}
