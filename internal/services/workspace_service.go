package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MisterMushn/bilanzieren/internal/analysis"
	"github.com/MisterMushn/bilanzieren/internal/exporter"
	"github.com/MisterMushn/bilanzieren/internal/infrastructure"
	"github.com/MisterMushn/bilanzieren/internal/ingest"
	"github.com/MisterMushn/bilanzieren/internal/tabular"
	"github.com/MisterMushn/bilanzieren/internal/validation"
	"github.com/MisterMushn/bilanzieren/pkg/contracts/domain"
	"github.com/MisterMushn/bilanzieren/pkg/contracts/events"
)

// Broadcaster pushes workspace events to connected UI clients. The
// websocket hub implements it; a nil broadcaster disables events.
type Broadcaster interface {
	Broadcast(event events.Event)
}

// Workspace is one tagging session: a single table, the mask driving
// the current view, and the search criteria that produced it.
type Workspace struct {
	ID            string
	FileName      string
	Dialect       domain.Dialect
	Table         *tabular.Table
	Mask          tabular.Mask
	SearchColumn  string
	SearchKeyword string
	Revision      int64
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// fingerprint caches the table content hash for the current
	// revision; cleared on every mutation.
	fingerprint string
	mu          sync.Mutex
}

// contentFingerprint returns the cached table hash, computing it once
// per revision. Caller holds ws.mu.
func (ws *Workspace) contentFingerprint() string {
	if ws.fingerprint == "" {
		ws.fingerprint = tabular.Fingerprint(ws.Table)
	}
	return ws.fingerprint
}

// bump marks a table mutation: new revision, stale fingerprint.
// Caller holds ws.mu.
func (ws *Workspace) bump() {
	ws.Revision++
	ws.fingerprint = ""
	ws.UpdatedAt = time.Now().UTC()
}

// WorkspaceService owns all live workspaces and orchestrates the
// discrete user actions: upload, search, preview, tag, keyword
// analysis, export.
type WorkspaceService struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace

	maxWorkspaces int
	previewCap    int
	keywordCap    int

	memo        *keywordMemo
	logger      *slog.Logger
	metrics     *infrastructure.AppMetrics
	broadcaster Broadcaster
}

// WorkspaceServiceOptions configures a WorkspaceService.
type WorkspaceServiceOptions struct {
	MaxWorkspaces int
	PreviewRowCap int
	KeywordCap    int
	Logger        *slog.Logger
	Metrics       *infrastructure.AppMetrics
	Broadcaster   Broadcaster
}

// NewWorkspaceService creates the workspace store.
func NewWorkspaceService(opts WorkspaceServiceOptions) *WorkspaceService {
	if opts.MaxWorkspaces <= 0 {
		opts.MaxWorkspaces = 64
	}
	if opts.PreviewRowCap <= 0 {
		opts.PreviewRowCap = 500
	}
	if opts.KeywordCap <= 0 {
		opts.KeywordCap = 200
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkspaceService{
		workspaces:    make(map[string]*Workspace),
		maxWorkspaces: opts.MaxWorkspaces,
		previewCap:    opts.PreviewRowCap,
		keywordCap:    opts.KeywordCap,
		memo:          newKeywordMemo(128),
		logger:        logger.With(slog.String("component", "workspace_service")),
		metrics:       opts.Metrics,
		broadcaster:   opts.Broadcaster,
	}
}

// Count returns the number of live workspaces.
func (s *WorkspaceService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workspaces)
}

// CreateFromUpload ingests an uploaded file into a new workspace with
// a fresh untagged mask and returns its summary.
func (s *WorkspaceService) CreateFromUpload(ctx context.Context, filename string, data []byte, kind validation.UploadKind) (domain.WorkspaceSummary, error) {
	table, dialect, err := s.ingestUpload(data, kind)
	if err != nil {
		return domain.WorkspaceSummary{}, err
	}

	now := time.Now().UTC()
	ws := &Workspace{
		ID:        uuid.New().String(),
		FileName:  filename,
		Dialect:   dialect,
		Table:     table,
		Mask:      tabular.UntaggedMask(table),
		Revision:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.evictOldestLocked()
	s.workspaces[ws.ID] = ws
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.WorkspacesCreated.Add(ctx, 1)
	}
	s.logger.InfoContext(ctx, "workspace created",
		slog.String("workspace_id", ws.ID),
		slog.String("file_name", filename),
		slog.String("dialect", string(dialect)),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumColumns()))
	s.publish(events.New(events.TypeWorkspaceLoaded, ws.ID, map[string]any{
		"rows": table.NumRows(),
	}))

	ws.mu.Lock()
	defer ws.mu.Unlock()
	return s.summaryLocked(ws), nil
}

// ReplaceUpload swaps a workspace's table wholesale for a new upload.
// The mask resets to the fresh untagged mask; the old table survives
// untouched when ingestion fails.
func (s *WorkspaceService) ReplaceUpload(ctx context.Context, id, filename string, data []byte, kind validation.UploadKind) (domain.WorkspaceSummary, error) {
	ws, err := s.get(id)
	if err != nil {
		return domain.WorkspaceSummary{}, err
	}

	table, dialect, err := s.ingestUpload(data, kind)
	if err != nil {
		return domain.WorkspaceSummary{}, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.FileName = filename
	ws.Dialect = dialect
	ws.Table = table
	ws.Mask = tabular.UntaggedMask(table)
	ws.SearchColumn = ""
	ws.SearchKeyword = ""
	ws.bump()

	s.logger.InfoContext(ctx, "workspace table replaced",
		slog.String("workspace_id", ws.ID),
		slog.String("file_name", filename),
		slog.Int("rows", table.NumRows()))
	s.publish(events.New(events.TypeWorkspaceLoaded, ws.ID, map[string]any{
		"rows": table.NumRows(),
	}))
	return s.summaryLocked(ws), nil
}

// Describe returns the workspace summary.
func (s *WorkspaceService) Describe(ctx context.Context, id string) (domain.WorkspaceSummary, error) {
	ws, err := s.get(id)
	if err != nil {
		return domain.WorkspaceSummary{}, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return s.summaryLocked(ws), nil
}

// Search rebuilds the workspace mask: the untagged rows are always the
// base, and a non-empty keyword narrows them to rows whose column
// contains it case-insensitively. An empty keyword means the untagged
// mask alone.
func (s *WorkspaceService) Search(ctx context.Context, id, column, keyword string) (selected, untagged int, err error) {
	ws, err := s.get(id)
	if err != nil {
		return 0, 0, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	base := tabular.UntaggedMask(ws.Table)
	mask := base
	if keyword != "" {
		keywordMask, err := tabular.KeywordMask(ws.Table, column, keyword)
		if err != nil {
			return 0, 0, err
		}
		mask = base.And(keywordMask)
	} else if !ws.Table.HasColumn(column) {
		return 0, 0, fmt.Errorf("%w: %q", tabular.ErrColumnNotFound, column)
	}

	ws.Mask = mask
	ws.SearchColumn = column
	ws.SearchKeyword = keyword
	ws.UpdatedAt = time.Now().UTC()

	s.logger.InfoContext(ctx, "workspace searched",
		slog.String("workspace_id", ws.ID),
		slog.String("column", column),
		slog.String("keyword", keyword),
		slog.Int("selected_rows", mask.Count()))
	s.publish(events.New(events.TypeWorkspaceSearched, ws.ID, map[string]any{
		"selected_rows": mask.Count(),
	}))
	return mask.Count(), base.Count(), nil
}

// Rows returns one window of the rows the current mask selects.
func (s *WorkspaceService) Rows(ctx context.Context, id string, offset, limit int) (domain.RowsPage, error) {
	ws, err := s.get(id)
	if err != nil {
		return domain.RowsPage{}, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > s.previewCap {
		limit = s.previewCap
	}

	indices := ws.Mask.Indices()
	page := domain.RowsPage{
		Columns: ws.Table.Columns(),
		Rows:    [][]interface{}{},
		Offset:  offset,
		Total:   len(indices),
	}
	for i := offset; i < len(indices) && len(page.Rows) < limit; i++ {
		page.Rows = append(page.Rows, ws.Table.Row(indices[i]))
	}
	return page, nil
}

// Tag assigns the category/subcategory pair to every row the current
// mask selects. The nothing-to-tag outcome (blank labels or an empty
// selection) is a soft decline carried in the result, not an error.
// After a successful tag the mask resets to the fresh untagged mask —
// the previous keyword is deliberately not re-applied, so the view
// shows every row still left to tag.
func (s *WorkspaceService) Tag(ctx context.Context, id, category, subcategory string) (domain.TagResult, error) {
	ws, err := s.get(id)
	if err != nil {
		return domain.TagResult{}, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	tagged, err := tabular.ApplyTag(ws.Table, ws.Mask, category, subcategory)
	if err != nil {
		if errors.Is(err, tabular.ErrNothingToTag) {
			return domain.TagResult{
				TaggedRows:   0,
				UntaggedRows: tabular.UntaggedMask(ws.Table).Count(),
				Reason:       "nothing to tag",
			}, nil
		}
		return domain.TagResult{}, err
	}

	ws.Mask = tabular.UntaggedMask(ws.Table)
	ws.SearchKeyword = ""
	ws.bump()

	if s.metrics != nil {
		s.metrics.RowsTagged.Add(ctx, int64(tagged))
	}
	s.logger.InfoContext(ctx, "rows tagged",
		slog.String("workspace_id", ws.ID),
		slog.String("category", strings.TrimSpace(category)),
		slog.String("subcategory", strings.TrimSpace(subcategory)),
		slog.Int("tagged_rows", tagged),
		slog.Int("untagged_rows", ws.Mask.Count()))
	s.publish(events.New(events.TypeWorkspaceTagged, ws.ID, map[string]any{
		"tagged_rows":   tagged,
		"untagged_rows": ws.Mask.Count(),
	}))

	return domain.TagResult{
		TaggedRows:   tagged,
		UntaggedRows: ws.Mask.Count(),
	}, nil
}

// Keywords returns the top-k keyword frequencies for a column,
// memoized on the table content fingerprint plus the arguments. Any
// mutation bumps the revision and thereby the fingerprint, so stale
// entries can never be served.
func (s *WorkspaceService) Keywords(ctx context.Context, id, column string, k, minLen int) ([]domain.FrequencyRow, error) {
	ws, err := s.get(id)
	if err != nil {
		return nil, err
	}

	if k <= 0 || k > s.keywordCap {
		k = s.keywordCap
	}
	if minLen <= 0 {
		minLen = analysis.DefaultMinTokenLen
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	key := memoKey(ws.contentFingerprint(), column, k, minLen)
	if rows, ok := s.memo.get(key); ok {
		return rows, nil
	}

	rows, err := analysis.MostCommon(ws.Table, column, k, minLen)
	if err != nil {
		return nil, err
	}
	s.memo.put(key, rows)
	return rows, nil
}

// Export serializes the workspace table as default-dialect CSV and
// suggests a download filename.
func (s *WorkspaceService) Export(ctx context.Context, id string) ([]byte, string, error) {
	ws, err := s.get(id)
	if err != nil {
		return nil, "", err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	data, err := exporter.CSV(ws.Table)
	if err != nil {
		return nil, "", err
	}

	if s.metrics != nil {
		s.metrics.ExportsTotal.Add(ctx, 1)
	}
	s.logger.InfoContext(ctx, "workspace exported",
		slog.String("workspace_id", ws.ID),
		slog.Int("bytes", len(data)))
	s.publish(events.New(events.TypeWorkspaceExported, ws.ID, map[string]any{
		"bytes": len(data),
	}))
	return data, exportFileName(ws.FileName), nil
}

func (s *WorkspaceService) ingestUpload(data []byte, kind validation.UploadKind) (*tabular.Table, domain.Dialect, error) {
	switch kind {
	case validation.UploadXLSX:
		table, err := ingest.XLSX(data)
		if err != nil {
			return nil, "", err
		}
		return table, domain.DialectDefault, nil
	default:
		dialect, err := ingest.SniffDialect(data)
		if err != nil {
			return nil, "", err
		}
		table, err := ingest.CSVWithDialect(data, dialect)
		if err != nil {
			return nil, "", err
		}
		return table, dialect, nil
	}
}

func (s *WorkspaceService) get(id string) (*Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.workspaces[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}
	return ws, nil
}

// evictOldestLocked drops the oldest workspaces until there is room
// for one more. Caller holds s.mu.
func (s *WorkspaceService) evictOldestLocked() {
	for len(s.workspaces) >= s.maxWorkspaces {
		ids := make([]string, 0, len(s.workspaces))
		for id := range s.workspaces {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			return s.workspaces[ids[i]].CreatedAt.Before(s.workspaces[ids[j]].CreatedAt)
		})
		evicted := ids[0]
		delete(s.workspaces, evicted)
		s.logger.Warn("workspace evicted",
			slog.String("workspace_id", evicted),
			slog.Int("max_workspaces", s.maxWorkspaces))
	}
}

// summaryLocked builds the wire summary. Caller holds ws.mu.
func (s *WorkspaceService) summaryLocked(ws *Workspace) domain.WorkspaceSummary {
	return domain.WorkspaceSummary{
		ID:            ws.ID,
		FileName:      ws.FileName,
		Dialect:       ws.Dialect,
		Rows:          ws.Table.NumRows(),
		Columns:       ws.Table.Columns(),
		TextColumns:   ws.Table.TextColumns(),
		UntaggedRows:  tabular.UntaggedMask(ws.Table).Count(),
		SelectedRows:  ws.Mask.Count(),
		SearchColumn:  ws.SearchColumn,
		SearchKeyword: ws.SearchKeyword,
		Revision:      ws.Revision,
		CreatedAt:     ws.CreatedAt,
		UpdatedAt:     ws.UpdatedAt,
	}
}

func (s *WorkspaceService) publish(event events.Event) {
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(event)
	}
}

func exportFileName(uploadName string) string {
	base := strings.TrimSuffix(uploadName, filepath.Ext(uploadName))
	if base == "" {
		base = "export"
	}
	return base + "_tagged.csv"
}
