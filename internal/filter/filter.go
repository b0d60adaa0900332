// Package filter derives the displayed asset view: compound criteria
// ANDed together, followed by an optional stable sort.
package filter

import (
	"sort"
	"strings"

	"trx/internal/asset"
	"trx/internal/urlutil"
)

// Pass-through sentinel for the categorical criteria fields.
const All = "All"

// Smart filter tags matched against finding categories.
const (
	SmartCritical = "Critical"
	SmartPII      = "PII"
	SmartSecrets  = "Secrets"
	SmartShadow   = "Shadow"
)

// Criteria is the compound filter. The zero value (with Method,
// StatusBucket and Smart set to All) is the identity: every asset
// passes. Unknown or missing fields fail only their own criterion;
// Apply never returns an error.
type Criteria struct {
	SearchTerm   string // case-insensitive substring over url + finding short/description
	Method       string // exact method, or All
	StatusBucket string // 2xx/3xx/4xx/5xx, "0" for unreachable, or All
	MinRisk      int    // risk_score >= MinRisk
	Smart        string // finding category tag, or All
	TreePath     string // host or host/path-prefix scope, empty for none
	FolderID     int64  // folder scope, 0 for none
}

// DefaultCriteria returns the identity criteria.
func DefaultCriteria() Criteria {
	return Criteria{Method: All, StatusBucket: All, Smart: All}
}

// SortDirection orders a sorted view ascending or descending.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// SortSpec names the column to sort by and the direction. A zero Key
// means no sort: filtered assets keep their relative input order.
type SortSpec struct {
	Key       string
	Direction SortDirection
}

// Toggle flips direction when the same key is clicked again and resets
// to ascending when a new key is chosen.
func (s SortSpec) Toggle(key string) SortSpec {
	if s.Key == key && s.Direction == Ascending {
		return SortSpec{Key: key, Direction: Descending}
	}
	return SortSpec{Key: key, Direction: Ascending}
}

// Apply filters assets by criteria, then sorts if spec names a key.
// The result is always a subset of the input; without a sort, relative
// order is preserved.
func Apply(assets []asset.Asset, c Criteria, spec SortSpec) []asset.Asset {
	out := make([]asset.Asset, 0, len(assets))
	for i := range assets {
		if matches(&assets[i], c) {
			out = append(out, assets[i])
		}
	}

	if spec.Key != "" {
		sortAssets(out, spec)
	}
	return out
}

func matches(a *asset.Asset, c Criteria) bool {
	if !matchesSearch(a, c.SearchTerm) {
		return false
	}
	if c.Method != "" && c.Method != All && a.Method != c.Method {
		return false
	}
	if !matchesStatusBucket(a.StatusCode, c.StatusBucket) {
		return false
	}
	if a.RiskScore < c.MinRisk {
		return false
	}
	if !matchesSmart(a, c.Smart) {
		return false
	}
	if c.TreePath != "" && !matchesTreePath(a, c.TreePath) {
		return false
	}
	if c.FolderID != 0 && a.FolderID != c.FolderID {
		return false
	}
	return true
}

func matchesSearch(a *asset.Asset, term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	if strings.Contains(strings.ToLower(a.URL), needle) {
		return true
	}
	for _, f := range a.Findings {
		if strings.Contains(strings.ToLower(f.Short), needle) ||
			strings.Contains(strings.ToLower(f.Description), needle) {
			return true
		}
	}
	return false
}

func matchesStatusBucket(code int, bucket string) bool {
	switch bucket {
	case "", All:
		return true
	case "0":
		return code == 0
	case "2xx":
		return code >= 200 && code < 300
	case "3xx":
		return code >= 300 && code < 400
	case "4xx":
		return code >= 400 && code < 500
	case "5xx":
		return code >= 500 && code < 600
	default:
		// Unknown bucket matches nothing rather than erroring.
		return false
	}
}

func matchesSmart(a *asset.Asset, smart string) bool {
	switch smart {
	case "", All:
		return true
	case SmartShadow:
		return !a.IsDocumented
	default:
		return a.HasCategory(smart)
	}
}

// matchesTreePath scopes to a host (exact) or a host+path prefix. The
// path component must prefix the asset's own path on a segment boundary.
func matchesTreePath(a *asset.Asset, treePath string) bool {
	host, path, _ := strings.Cut(treePath, "/")
	if urlutil.Host(a.URL) != host {
		return false
	}
	if path == "" {
		return true
	}
	assetPath := strings.TrimPrefix(urlutil.Path(a.URL), "/")
	if assetPath == path {
		return true
	}
	return strings.HasPrefix(assetPath, path+"/")
}

func sortAssets(assets []asset.Asset, spec SortSpec) {
	less := lessFunc(spec.Key)
	if less == nil {
		// Unknown key: leave the view untouched.
		return
	}
	sort.SliceStable(assets, func(i, j int) bool {
		if spec.Direction == Descending {
			return less(&assets[j], &assets[i])
		}
		return less(&assets[i], &assets[j])
	})
}

func lessFunc(key string) func(a, b *asset.Asset) bool {
	switch key {
	case "id":
		return func(a, b *asset.Asset) bool { return a.ID < b.ID }
	case "url":
		return func(a, b *asset.Asset) bool { return a.URL < b.URL }
	case "method":
		return func(a, b *asset.Asset) bool { return a.Method < b.Method }
	case "status_code":
		return func(a, b *asset.Asset) bool { return a.StatusCode < b.StatusCode }
	case "risk_score":
		return func(a, b *asset.Asset) bool { return a.RiskScore < b.RiskScore }
	case "severity":
		return func(a, b *asset.Asset) bool { return a.MaxSeverity().Rank() < b.MaxSeverity().Rank() }
	case "created_at":
		return func(a, b *asset.Asset) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "updated_at":
		return func(a, b *asset.Asset) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	default:
		return nil
	}
}
