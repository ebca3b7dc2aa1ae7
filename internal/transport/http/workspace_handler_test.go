package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/MisterMushn/bilanzieren/internal/errors"
	"github.com/MisterMushn/bilanzieren/internal/services"
	"github.com/MisterMushn/bilanzieren/internal/tabular"
	"github.com/MisterMushn/bilanzieren/internal/validation"
	"github.com/MisterMushn/bilanzieren/pkg/contracts/domain"
)

type stubService struct {
	summary   domain.WorkspaceSummary
	page      domain.RowsPage
	tagResult domain.TagResult
	keywords  []domain.FrequencyRow
	export    []byte
	exportFn  string
	err       error

	lastColumn  string
	lastKeyword string
	lastKind    validation.UploadKind
}

func (s *stubService) CreateFromUpload(ctx context.Context, filename string, data []byte, kind validation.UploadKind) (domain.WorkspaceSummary, error) {
	s.lastKind = kind
	return s.summary, s.err
}

func (s *stubService) ReplaceUpload(ctx context.Context, id, filename string, data []byte, kind validation.UploadKind) (domain.WorkspaceSummary, error) {
	return s.summary, s.err
}

func (s *stubService) Describe(ctx context.Context, id string) (domain.WorkspaceSummary, error) {
	return s.summary, s.err
}

func (s *stubService) Search(ctx context.Context, id, column, keyword string) (int, int, error) {
	s.lastColumn, s.lastKeyword = column, keyword
	return s.summary.SelectedRows, s.summary.UntaggedRows, s.err
}

func (s *stubService) Rows(ctx context.Context, id string, offset, limit int) (domain.RowsPage, error) {
	return s.page, s.err
}

func (s *stubService) Tag(ctx context.Context, id, category, subcategory string) (domain.TagResult, error) {
	return s.tagResult, s.err
}

func (s *stubService) Keywords(ctx context.Context, id, column string, k, minLen int) ([]domain.FrequencyRow, error) {
	s.lastColumn = column
	return s.keywords, s.err
}

func (s *stubService) Export(ctx context.Context, id string) ([]byte, string, error) {
	return s.export, s.exportFn, s.err
}

func newHandler(service *stubService) *WorkspaceHandler {
	return NewWorkspaceHandler(service, 1<<20, apierrors.NewErrorHandler(nil), nil)
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func doRequest(h *WorkspaceHandler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestCreateUploadsCSV(t *testing.T) {
	service := &stubService{summary: domain.WorkspaceSummary{ID: "ws-1", Rows: 3}}
	h := newHandler(service)

	body, contentType := multipartBody(t, "umsatz.csv", "Buchungstag;Betrag\n01.02.2024;-12,50\n")
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)

	rec := doRequest(h, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, validation.UploadCSV, service.lastKind)
	assert.Contains(t, rec.Body.String(), `"id":"ws-1"`)
}

func TestCreateRejectsUnsupportedExtension(t *testing.T) {
	h := newHandler(&stubService{})

	body, contentType := multipartBody(t, "umsatz.pdf", "%PDF-1.4")
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)

	rec := doRequest(h, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestCreateRequiresFileField(t *testing.T) {
	h := newHandler(&stubService{})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("name", "umsatz"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := doRequest(h, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateMapsIngestFailure(t *testing.T) {
	service := &stubService{err: fmt.Errorf("can't detect delimiter")}
	h := newHandler(service)

	body, contentType := multipartBody(t, "plain.csv", "no separators here")
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)

	rec := doRequest(h, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "can't detect delimiter")
}

func TestGetUnknownWorkspaceIs404(t *testing.T) {
	service := &stubService{err: services.ErrWorkspaceNotFound}
	h := newHandler(service)

	rec := doRequest(h, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchValidatesColumn(t *testing.T) {
	h := newHandler(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/ws-1/search", strings.NewReader(`{"keyword":"rewe"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := doRequest(h, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestSearchUnknownColumnIs404(t *testing.T) {
	service := &stubService{err: fmt.Errorf("search: %w", tabular.ErrColumnNotFound)}
	h := newHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/ws-1/search", strings.NewReader(`{"column":"Verwendungszweck","keyword":"rewe"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := doRequest(h, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "COLUMN_NOT_FOUND")
}

func TestSearchReportsSelection(t *testing.T) {
	service := &stubService{summary: domain.WorkspaceSummary{SelectedRows: 2, UntaggedRows: 4}}
	h := newHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/ws-1/search", strings.NewReader(`{"column":"Verwendungszweck","keyword":"rewe"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := doRequest(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Verwendungszweck", service.lastColumn)
	assert.Equal(t, "rewe", service.lastKeyword)
	assert.JSONEq(t, `{"selected_rows":2,"untagged_rows":4,"keyword":"rewe"}`, rec.Body.String())
}

func TestTagNothingToTagIsSoftSuccess(t *testing.T) {
	service := &stubService{tagResult: domain.TagResult{TaggedRows: 0, UntaggedRows: 2, Reason: "nothing to tag"}}
	h := newHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/ws-1/tags", strings.NewReader(`{"category":"Lebensmittel","subcategory":"Supermarkt"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := doRequest(h, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.TagResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Zero(t, result.TaggedRows)
	assert.Equal(t, "nothing to tag", result.Reason)
}

func TestTagValidatesLabels(t *testing.T) {
	h := newHandler(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/ws-1/tags", strings.NewReader(`{"category":"Lebensmittel"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := doRequest(h, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKeywordsRequiresColumn(t *testing.T) {
	h := newHandler(&stubService{})

	rec := doRequest(h, httptest.NewRequest(http.MethodGet, "/ws-1/keywords", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKeywordsPassesDefaults(t *testing.T) {
	service := &stubService{keywords: []domain.FrequencyRow{{Keyword: "REWE", Count: 2, Share: 0.5}}}
	h := newHandler(service)

	rec := doRequest(h, httptest.NewRequest(http.MethodGet, "/ws-1/keywords?column=Verwendungszweck", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Verwendungszweck", service.lastColumn)
	assert.Contains(t, rec.Body.String(), `"k":30`)
	assert.Contains(t, rec.Body.String(), `"REWE"`)
}

func TestExportSetsDownloadHeaders(t *testing.T) {
	service := &stubService{export: []byte("a,b\n1,2\n"), exportFn: "umsatz_tagged.csv"}
	h := newHandler(service)

	rec := doRequest(h, httptest.NewRequest(http.MethodGet, "/ws-1/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `umsatz_tagged.csv`)
	assert.Equal(t, "a,b\n1,2\n", rec.Body.String())
}

func TestRowsPassesWindow(t *testing.T) {
	service := &stubService{page: domain.RowsPage{
		Columns: []string{"Betrag"},
		Rows:    [][]interface{}{{-12.5}},
		Offset:  0,
		Total:   1,
	}}
	h := newHandler(service)

	rec := doRequest(h, httptest.NewRequest(http.MethodGet, "/ws-1/rows?offset=0&limit=50", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `-12.5`)
}
