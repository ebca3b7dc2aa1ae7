package http

import (
	"context"

	"github.com/MisterMushn/bilanzieren/internal/validation"
	"github.com/MisterMushn/bilanzieren/pkg/contracts/domain"
)

// WorkspaceService is the service surface the workspace handler needs.
type WorkspaceService interface {
	CreateFromUpload(ctx context.Context, filename string, data []byte, kind validation.UploadKind) (domain.WorkspaceSummary, error)
	ReplaceUpload(ctx context.Context, id, filename string, data []byte, kind validation.UploadKind) (domain.WorkspaceSummary, error)
	Describe(ctx context.Context, id string) (domain.WorkspaceSummary, error)
	Search(ctx context.Context, id, column, keyword string) (selected, untagged int, err error)
	Rows(ctx context.Context, id string, offset, limit int) (domain.RowsPage, error)
	Tag(ctx context.Context, id, category, subcategory string) (domain.TagResult, error)
	Keywords(ctx context.Context, id, column string, k, minLen int) ([]domain.FrequencyRow, error)
	Export(ctx context.Context, id string) ([]byte, string, error)
}
