package asset

import (
	"strings"
	"time"
)

// Severity ranks a finding from informational to critical.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
	SeverityInfo     Severity = "Info"
)

// Rank returns a numeric weight for ordering, higher is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Source records how an asset entered the system.
type Source string

const (
	SourceImport    Source = "Import"
	SourceWorkbench Source = "Workbench"
	SourceUser      Source = "User"
	SourceRecursive Source = "Recursive"
)

// Finding is a security observation attached to an asset by a detector.
// The workbench only reads and aggregates findings; it never produces them.
type Finding struct {
	Short       string   `json:"short"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Category    string   `json:"category,omitempty"`
	Evidence    string   `json:"evidence,omitempty"`
	IsFP        bool     `json:"is_fp,omitempty"`
}

// Asset is a discovered HTTP endpoint. Identity is ID, assigned by the
// repository on creation; URL is not unique on its own (url+method is).
type Asset struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url"`
	Method       string    `json:"method"`
	StatusCode   int       `json:"status_code"`
	RiskScore    int       `json:"risk_score"`
	Findings     []Finding `json:"findings"`
	FolderID     int64     `json:"folder_id"`
	Source       Source    `json:"source"`
	Recursive    bool      `json:"recursive"`
	IsWorkbench  bool      `json:"is_workbench"`
	IsDocumented bool      `json:"is_documented"`
	Notes        string    `json:"notes,omitempty"`
	TriageStatus string    `json:"triage_status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MaxSeverity returns the highest severity among non-false-positive
// findings, or empty string if the asset has none.
func (a *Asset) MaxSeverity() Severity {
	var max Severity
	for _, f := range a.Findings {
		if f.IsFP {
			continue
		}
		if max == "" || f.Severity.Rank() > max.Rank() {
			max = f.Severity
		}
	}
	return max
}

// HasCategory reports whether any live finding carries the given
// category tag (case-insensitive).
func (a *Asset) HasCategory(category string) bool {
	for _, f := range a.Findings {
		if f.IsFP {
			continue
		}
		if strings.EqualFold(f.Category, category) {
			return true
		}
	}
	return false
}

// Folder groups assets. Folders form a tree via ParentID; root folders
// have ParentID == 0. Folder 1 is the reserved default and always exists.
type Folder struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID int64  `json:"parent_id,omitempty"`
}

// DefaultFolderID is the reserved folder every asset lands in unless
// moved. It cannot be deleted.
const DefaultFolderID int64 = 1
