// Package v1 defines the request and response payloads of the HTTP API.
package v1

import "github.com/MisterMushn/bilanzieren/pkg/contracts/domain"

// SearchRequest narrows a workspace's row selection: the untagged rows
// are always the base, a non-empty keyword restricts them further.
type SearchRequest struct {
	Column  string `json:"column" validate:"required,max=256"`
	Keyword string `json:"keyword" validate:"max=256"`
}

// SearchResponse reports the updated selection.
type SearchResponse struct {
	SelectedRows int    `json:"selected_rows"`
	UntaggedRows int    `json:"untagged_rows"`
	Keyword      string `json:"keyword,omitempty"`
}

// TagRequest assigns a category/subcategory pair to every row the
// current mask selects.
type TagRequest struct {
	Category    string `json:"category" validate:"required,max=128"`
	Subcategory string `json:"subcategory" validate:"required,max=128"`
}

// TagResponse wraps the tagging outcome.
type TagResponse struct {
	domain.TagResult
}

// KeywordsResponse carries the frequency ranking for one column.
type KeywordsResponse struct {
	Column   string                `json:"column"`
	K        int                   `json:"k"`
	MinLen   int                   `json:"min_len"`
	Keywords []domain.FrequencyRow `json:"keywords"`
}

// WorkspaceResponse wraps a workspace summary.
type WorkspaceResponse struct {
	Workspace domain.WorkspaceSummary `json:"workspace"`
}
