package voices

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/voicenote-api/api/types"
	"github.com/killallgit/voicenote-api/internal/services/recordings"
	apperrors "github.com/killallgit/voicenote-api/pkg/errors"
	"github.com/rs/zerolog/log"
)

// multipartOverhead is allowed on top of the file size for boundaries and headers
const multipartOverhead = 1 << 20

// Upload limits for the voice endpoint
type Limits struct {
	MaxSize      int64
	AllowedTypes []string
}

func (l Limits) allows(contentType string) bool {
	for _, t := range l.AllowedTypes {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}

// Post stores an uploaded recording and processes it before responding
// @Summary Upload a voice recording
// @Description Stores the audio, splits it, transcribes every segment and saves the merged transcript as a note.
// @Description Processing happens inside the request; a 201 means the note exists.
// @Tags voices
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file true "Audio file (m4a, mp4, aac, ogg, wav, mpeg)"
// @Success 201 "Created; Location header points at the recording"
// @Failure 400 {object} types.ErrorResponse "Missing file or unsupported MIME type"
// @Failure 413 {object} types.ErrorResponse "File too large"
// @Failure 500 {object} types.ErrorResponse "Processing failed"
// @Router /api/voices/ [post]
func Post(deps *types.Dependencies, limits Limits) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limits.MaxSize > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limits.MaxSize+multipartOverhead)
		}

		file, header, err := c.Request.FormFile("audio")
		if err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				types.ErrorWithCode(c, http.StatusRequestEntityTooLarge, apperrors.ErrCodeTooLarge, "audio file exceeds the upload limit")
			case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
				types.ErrorWithCode(c, http.StatusBadRequest, apperrors.ErrCodeMissingField, "audio file is required")
			default:
				types.ErrorWithCode(c, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, "malformed multipart body")
			}
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
			contentType = parsed
		}
		if !limits.allows(contentType) {
			types.Error(c, apperrors.New(apperrors.ErrCodeInvalidMime, "unsupported audio type").
				WithDetail("content_type", contentType))
			return
		}
		if limits.MaxSize > 0 && header.Size > limits.MaxSize {
			types.Error(c, apperrors.New(apperrors.ErrCodeTooLarge, "audio file exceeds the upload limit").
				WithDetail("size_bytes", header.Size).
				WithDetail("max_bytes", limits.MaxSize))
			return
		}

		ctx := c.Request.Context()
		recording, err := deps.Recordings.Store(ctx, recordings.Upload{
			Filename:    header.Filename,
			ContentType: contentType,
			Size:        header.Size,
			Body:        file,
		})
		if err != nil {
			log.Error().Err(err).Str("file", header.Filename).Msg("failed to store upload")
			types.Error(c, err)
			return
		}

		if _, err := deps.Pipeline.Process(ctx, recording.ID); err != nil {
			log.Error().Err(err).Str("recording_id", recording.ID).Msg("processing failed")
			c.JSON(http.StatusInternalServerError, types.ErrorResponse{
				Status:  types.StatusError,
				Message: "recording was stored but could not be processed",
				Error:   string(apperrors.ErrCodeProcessingError),
				Details: map[string]interface{}{
					"recording_id": recording.ID,
					"cause":        string(apperrors.GetCode(err)),
				},
			})
			return
		}

		c.Header("Location", "/api/voices/"+recording.ID)
		c.Status(http.StatusCreated)
	}
}
