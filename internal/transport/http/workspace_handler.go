package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/MisterMushn/bilanzieren/internal/errors"
	"github.com/MisterMushn/bilanzieren/internal/services"
	"github.com/MisterMushn/bilanzieren/internal/tabular"
	"github.com/MisterMushn/bilanzieren/internal/validation"
	v1 "github.com/MisterMushn/bilanzieren/pkg/contracts/api/v1"
)

// multipartOverhead pads the body limit to leave room for the
// multipart framing around the file payload.
const multipartOverhead = 16 * 1024

// WorkspaceHandler handles the workspace HTTP routes.
type WorkspaceHandler struct {
	service       WorkspaceService
	fileValidator *validation.FileValidator
	validate      *validator.Validate
	errorHandler  *apierrors.ErrorHandler
	maxUpload     int64
	logger        *slog.Logger
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(service WorkspaceService, maxUpload int64, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *WorkspaceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkspaceHandler{
		service:       service,
		fileValidator: validation.NewFileValidator(maxUpload),
		validate:      validator.New(),
		errorHandler:  errorHandler,
		maxUpload:     maxUpload,
		logger:        logger.With(slog.String("handler", "workspace")),
	}
}

// Routes mounts the workspace routes.
func (h *WorkspaceHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/file", h.Replace)
		r.Post("/search", h.Search)
		r.Get("/rows", h.Rows)
		r.Post("/tags", h.Tag)
		r.Get("/keywords", h.Keywords)
		r.Get("/export", h.Export)
	})
	return r
}

// Create handles POST /api/workspaces
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	filename, data, kind, err := h.readUpload(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.CreateFromUpload(r.Context(), filename, data, kind)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.IngestFailedError(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, v1.WorkspaceResponse{Workspace: summary})
}

// Get handles GET /api/workspaces/{id}
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Describe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}
	render.JSON(w, r, v1.WorkspaceResponse{Workspace: summary})
}

// Replace handles PUT /api/workspaces/{id}/file
func (h *WorkspaceHandler) Replace(w http.ResponseWriter, r *http.Request) {
	filename, data, kind, err := h.readUpload(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.ReplaceUpload(r.Context(), chi.URLParam(r, "id"), filename, data, kind)
	if err != nil {
		if errors.Is(err, services.ErrWorkspaceNotFound) {
			h.errorHandler.HandleError(w, r, h.mapServiceError(err))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.IngestFailedError(err))
		return
	}
	render.JSON(w, r, v1.WorkspaceResponse{Workspace: summary})
}

// Search handles POST /api/workspaces/{id}/search
func (h *WorkspaceHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req v1.SearchRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	selected, untagged, err := h.service.Search(r.Context(), chi.URLParam(r, "id"), req.Column, req.Keyword)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}
	render.JSON(w, r, v1.SearchResponse{
		SelectedRows: selected,
		UntaggedRows: untagged,
		Keyword:      req.Keyword,
	})
}

// Rows handles GET /api/workspaces/{id}/rows?offset&limit
func (h *WorkspaceHandler) Rows(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 0)

	page, err := h.service.Rows(r.Context(), chi.URLParam(r, "id"), offset, limit)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}
	render.JSON(w, r, page)
}

// Tag handles POST /api/workspaces/{id}/tags
func (h *WorkspaceHandler) Tag(w http.ResponseWriter, r *http.Request) {
	var req v1.TagRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Tag(r.Context(), chi.URLParam(r, "id"), req.Category, req.Subcategory)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}
	render.JSON(w, r, v1.TagResponse{TagResult: result})
}

// Keywords handles GET /api/workspaces/{id}/keywords?column&k&min_len
func (h *WorkspaceHandler) Keywords(w http.ResponseWriter, r *http.Request) {
	column := r.URL.Query().Get("column")
	if column == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("column", "is required"))
		return
	}
	k := queryInt(r, "k", 30)
	minLen := queryInt(r, "min_len", 2)

	rows, err := h.service.Keywords(r.Context(), chi.URLParam(r, "id"), column, k, minLen)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}
	render.JSON(w, r, v1.KeywordsResponse{
		Column:   column,
		K:        k,
		MinLen:   minLen,
		Keywords: rows,
	})
}

// Export handles GET /api/workspaces/{id}/export
func (h *WorkspaceHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.service.Export(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// readUpload extracts the "file" part of a multipart upload, enforcing
// the configured size limit at the transport level before any bytes
// are buffered.
func (h *WorkspaceHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, validation.UploadKind, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUpload + multipartOverhead); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return "", nil, "", apierrors.ErrPayloadTooLarge
		}
		return "", nil, "", apierrors.InvalidRequestWithError(err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, "", apierrors.ErrValidation("file", "multipart field is required")
	}
	defer file.Close()

	kind, err := h.fileValidator.Validate(header.Filename, header.Size)
	if err != nil {
		return "", nil, "", apierrors.ErrValidation("file", err.Error())
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, "", apierrors.InvalidRequestWithError(err)
	}
	return header.Filename, data, kind, nil
}

// decodeAndValidate parses a JSON body into req and runs struct
// validation.
func (h *WorkspaceHandler) decodeAndValidate(r *http.Request, req any) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return apierrors.InvalidRequestWithError(err)
	}
	if err := h.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return apierrors.ErrValidation(fieldErrs[0].Field(), fieldErrs[0].Tag())
		}
		return apierrors.ErrValidationFailed
	}
	return nil
}

// mapServiceError converts service sentinels into API errors.
func (h *WorkspaceHandler) mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrWorkspaceNotFound):
		return apierrors.NewWithDetails(http.StatusNotFound, "WORKSPACE_NOT_FOUND", "Workspace not found", err.Error())
	case errors.Is(err, tabular.ErrColumnNotFound):
		return apierrors.NewWithDetails(http.StatusNotFound, "COLUMN_NOT_FOUND", "Column not found", err.Error())
	default:
		return err
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
