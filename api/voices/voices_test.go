package voices

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/voicenote-api/api/types"
	"github.com/killallgit/voicenote-api/internal/models"
	"github.com/killallgit/voicenote-api/internal/services/pipeline"
	"github.com/killallgit/voicenote-api/internal/services/recordings"
	"github.com/killallgit/voicenote-api/pkg/config"
	apperrors "github.com/killallgit/voicenote-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRecordings struct {
	mock.Mock
}

func (m *MockRecordings) Store(ctx context.Context, upload recordings.Upload) (*models.Recording, error) {
	body, _ := io.ReadAll(upload.Body)
	args := m.Called(ctx, upload.Filename, upload.ContentType, string(body))
	if rec := args.Get(0); rec != nil {
		return rec.(*models.Recording), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecordings) Get(ctx context.Context, id string) (*models.Recording, error) {
	args := m.Called(ctx, id)
	if rec := args.Get(0); rec != nil {
		return rec.(*models.Recording), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecordings) GetWithNotes(ctx context.Context, id string) (*models.Recording, error) {
	args := m.Called(ctx, id)
	if rec := args.Get(0); rec != nil {
		return rec.(*models.Recording), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecordings) List(ctx context.Context, limit, offset int) ([]models.Recording, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Recording), args.Error(1)
}

func (m *MockRecordings) Transition(ctx context.Context, id string, next models.RecordingStatus) (*models.Recording, error) {
	args := m.Called(ctx, id, next)
	return nil, args.Error(1)
}

func (m *MockRecordings) Reclaim(ctx context.Context, id string, staleBefore time.Time) (*models.Recording, error) {
	args := m.Called(ctx, id, staleBefore)
	return nil, args.Error(1)
}

func (m *MockRecordings) SetDuration(ctx context.Context, id string, seconds int) error {
	return m.Called(ctx, id, seconds).Error(0)
}

type stubPipeline struct {
	err   error
	calls []string
}

func (p *stubPipeline) Process(_ context.Context, id string) (*pipeline.Handoff, error) {
	p.calls = append(p.calls, id)
	return &pipeline.Handoff{RecordingID: id, Status: models.RecordingStatusDone}, p.err
}

func testLimits() Limits {
	return Limits{MaxSize: 30 << 20, AllowedTypes: config.DefaultMimeTypes}
}

func newRouter(deps *types.Dependencies, limits Limits) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router.Group("/api/voices"), deps, limits)
	return router
}

func multipartBody(t *testing.T, field, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestPost_Success(t *testing.T) {
	recs := &MockRecordings{}
	recs.On("Store", mock.Anything, "lecture.m4a", "audio/m4a", "fake audio").
		Return(&models.Recording{ID: "rec-1", Status: models.RecordingStatusUploaded}, nil)
	pipe := &stubPipeline{}
	router := newRouter(&types.Dependencies{Recordings: recs, Pipeline: pipe}, testLimits())

	body, ct := multipartBody(t, "audio", "lecture.m4a", "audio/m4a", []byte("fake audio"))
	req := httptest.NewRequest(http.MethodPost, "/api/voices/", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/voices/rec-1", w.Header().Get("Location"))
	assert.Empty(t, w.Body.String())
	assert.Equal(t, []string{"rec-1"}, pipe.calls)
	recs.AssertExpectations(t)
}

func TestPost_ValidationFailures(t *testing.T) {
	tests := []struct {
		name         string
		field        string
		contentType  string
		content      []byte
		limits       Limits
		expectedCode int
		expectedErr  apperrors.ErrorCode
	}{
		{
			name:         "missing file field",
			field:        "file",
			contentType:  "audio/m4a",
			content:      []byte("x"),
			limits:       testLimits(),
			expectedCode: http.StatusBadRequest,
			expectedErr:  apperrors.ErrCodeMissingField,
		},
		{
			name:         "unsupported mime type",
			field:        "audio",
			contentType:  "video/mp4",
			content:      []byte("x"),
			limits:       testLimits(),
			expectedCode: http.StatusBadRequest,
			expectedErr:  apperrors.ErrCodeInvalidMime,
		},
		{
			name:         "file over the size limit",
			field:        "audio",
			contentType:  "audio/wav",
			content:      bytes.Repeat([]byte("a"), 200),
			limits:       Limits{MaxSize: 100, AllowedTypes: config.DefaultMimeTypes},
			expectedCode: http.StatusRequestEntityTooLarge,
			expectedErr:  apperrors.ErrCodeTooLarge,
		},
		{
			name:         "body over the multipart allowance",
			field:        "audio",
			contentType:  "audio/wav",
			content:      bytes.Repeat([]byte("a"), 2<<20),
			limits:       Limits{MaxSize: 100, AllowedTypes: config.DefaultMimeTypes},
			expectedCode: http.StatusRequestEntityTooLarge,
			expectedErr:  apperrors.ErrCodeTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := &MockRecordings{}
			pipe := &stubPipeline{}
			router := newRouter(&types.Dependencies{Recordings: recs, Pipeline: pipe}, tt.limits)

			body, ct := multipartBody(t, tt.field, "voice.m4a", tt.contentType, tt.content)
			req := httptest.NewRequest(http.MethodPost, "/api/voices/", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, string(tt.expectedErr), decodeError(t, w).Error)
			recs.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			assert.Empty(t, pipe.calls)
		})
	}
}

func TestPost_NotMultipart(t *testing.T) {
	router := newRouter(&types.Dependencies{Recordings: &MockRecordings{}, Pipeline: &stubPipeline{}}, testLimits())

	req := httptest.NewRequest(http.MethodPost, "/api/voices/", strings.NewReader(`{"audio":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPost_ContentTypeParameters(t *testing.T) {
	recs := &MockRecordings{}
	recs.On("Store", mock.Anything, "memo.ogg", "audio/ogg", "ogg").
		Return(&models.Recording{ID: "rec-2"}, nil)
	router := newRouter(&types.Dependencies{Recordings: recs, Pipeline: &stubPipeline{}}, testLimits())

	body, ct := multipartBody(t, "audio", "memo.ogg", "audio/ogg; codecs=opus", []byte("ogg"))
	req := httptest.NewRequest(http.MethodPost, "/api/voices/", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	recs.AssertExpectations(t)
}

func TestPost_ProcessingFailure(t *testing.T) {
	recs := &MockRecordings{}
	recs.On("Store", mock.Anything, "lecture.m4a", "audio/m4a", "fake audio").
		Return(&models.Recording{ID: "rec-3"}, nil)
	pipe := &stubPipeline{err: apperrors.New(apperrors.ErrCodeSegmentationFailed, "audio segmentation failed")}
	router := newRouter(&types.Dependencies{Recordings: recs, Pipeline: pipe}, testLimits())

	body, ct := multipartBody(t, "audio", "lecture.m4a", "audio/m4a", []byte("fake audio"))
	req := httptest.NewRequest(http.MethodPost, "/api/voices/", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
	resp := decodeError(t, w)
	assert.Equal(t, "PROCESSING_ERROR", resp.Error)
	assert.Equal(t, "rec-3", resp.Details["recording_id"])
	assert.Equal(t, "SEGMENTATION_FAILED", resp.Details["cause"])
}

func TestPost_StoreFailure(t *testing.T) {
	recs := &MockRecordings{}
	recs.On("Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.New(apperrors.ErrCodeInternal, "failed to store audio"))
	pipe := &stubPipeline{}
	router := newRouter(&types.Dependencies{Recordings: recs, Pipeline: pipe}, testLimits())

	body, ct := multipartBody(t, "audio", "lecture.m4a", "audio/m4a", []byte("fake audio"))
	req := httptest.NewRequest(http.MethodPost, "/api/voices/", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, pipe.calls)
}

func TestGetByID(t *testing.T) {
	duration := 300
	created := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	recordingID := "rec-1"
	recs := &MockRecordings{}
	recs.On("GetWithNotes", mock.Anything, "rec-1").Return(&models.Recording{
		ID:           recordingID,
		OriginalName: "lecture.m4a",
		MimeType:     "audio/m4a",
		DurationSec:  &duration,
		Status:       models.RecordingStatusDone,
		CreatedAt:    created,
		UpdatedAt:    created,
		Notes: []models.Note{{
			ID:          "note-1",
			RecordingID: &recordingID,
			Format:      models.NoteFormatText,
			FileName:    "lecture_note.txt",
			SizeBytes:   42,
			CreatedAt:   created,
		}},
	}, nil)
	recs.On("GetWithNotes", mock.Anything, "missing").Return(nil, apperrors.NotFound("recording", "missing"))
	router := newRouter(&types.Dependencies{Recordings: recs}, testLimits())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/voices/rec-1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.RecordingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "done", resp.Status)
	require.NotNil(t, resp.DurationSec)
	assert.Equal(t, 300, *resp.DurationSec)
	require.Len(t, resp.Notes, 1)
	assert.Equal(t, "/api/notes/note-1/content", resp.Notes[0].ContentPath)
	assert.Equal(t, "2026-10-17T09:00:00Z", resp.CreatedAt)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/voices/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Error)
}

func TestList(t *testing.T) {
	recs := &MockRecordings{}
	recs.On("List", mock.Anything, 10, 5).Return([]models.Recording{
		{ID: "a", Status: models.RecordingStatusDone},
		{ID: "b", Status: models.RecordingStatusFailed},
	}, nil)
	router := newRouter(&types.Dependencies{Recordings: recs}, testLimits())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/voices/?limit=10&offset=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Recordings []types.RecordingResponse `json:"recordings"`
		Count      int                       `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "failed", resp.Recordings[1].Status)
}

func TestList_InvalidPaging(t *testing.T) {
	for _, query := range []string{"?limit=abc", "?offset=-1", "?limit=1.5"} {
		t.Run(query, func(t *testing.T) {
			recs := &MockRecordings{}
			router := newRouter(&types.Dependencies{Recordings: recs}, testLimits())

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/voices/"+query, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VALIDATION", decodeError(t, w).Error)
			recs.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
	}{
		{name: "reprocessed", expectedCode: http.StatusOK},
		{name: "unknown recording", err: apperrors.NotFound("recording", "x"), expectedCode: http.StatusNotFound},
		{name: "already processing", err: apperrors.New(apperrors.ErrCodeConflict, "busy"), expectedCode: http.StatusConflict},
		{name: "tools missing", err: apperrors.New(apperrors.ErrCodeToolUnavailable, "no ffmpeg"), expectedCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipe := &stubPipeline{err: tt.err}
			router := newRouter(&types.Dependencies{Recordings: &MockRecordings{}, Pipeline: pipe}, testLimits())

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/voices/rec-9/process", nil))

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, []string{"rec-9"}, pipe.calls)
			if tt.err == nil {
				assert.Contains(t, w.Body.String(), `"recording_id":"rec-9"`)
			}
		})
	}
}
