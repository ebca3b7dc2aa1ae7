package domain

import "time"

// WorkspaceSummary describes one tagging workspace: a single uploaded
// table plus the mask driving the current filter view.
type WorkspaceSummary struct {
	ID            string    `json:"id"`
	FileName      string    `json:"file_name"`
	Dialect       Dialect   `json:"dialect"`
	Rows          int       `json:"rows"`
	Columns       []string  `json:"columns"`
	TextColumns   []string  `json:"text_columns"`
	UntaggedRows  int       `json:"untagged_rows"`
	SelectedRows  int       `json:"selected_rows"`
	SearchColumn  string    `json:"search_column,omitempty"`
	SearchKeyword string    `json:"search_keyword,omitempty"`
	Revision      int64     `json:"revision"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RowsPage is one window of the rows currently selected by a
// workspace's mask. Cells are null, string, or number.
type RowsPage struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
	Offset  int             `json:"offset"`
	Total   int             `json:"total"`
}

// TagResult reports the outcome of a bulk tag operation. A zero
// TaggedRows with a Reason is the soft "nothing to tag" outcome, not
// an error.
type TagResult struct {
	TaggedRows   int    `json:"tagged_rows"`
	UntaggedRows int    `json:"untagged_rows"`
	Reason       string `json:"reason,omitempty"`
}
