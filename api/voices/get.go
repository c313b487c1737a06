package voices

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/voicenote-api/api/types"
	apperrors "github.com/killallgit/voicenote-api/pkg/errors"
)

// GetByID returns a recording with its notes
// @Summary Get a recording
// @Tags voices
// @Produce json
// @Param id path string true "Recording ID"
// @Success 200 {object} types.RecordingResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /api/voices/{id} [get]
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		recording, err := deps.Recordings.GetWithNotes(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, types.NewRecordingResponse(recording))
	}
}

// List returns recordings newest first
// @Summary List recordings
// @Tags voices
// @Produce json
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} types.ErrorResponse
// @Router /api/voices/ [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := queryInt(c, "limit", 50)
		if err != nil {
			types.Error(c, err)
			return
		}
		offset, err := queryInt(c, "offset", 0)
		if err != nil {
			types.Error(c, err)
			return
		}

		list, err := deps.Recordings.List(c.Request.Context(), limit, offset)
		if err != nil {
			types.Error(c, err)
			return
		}

		out := make([]types.RecordingResponse, 0, len(list))
		for i := range list {
			out = append(out, types.NewRecordingResponse(&list[i]))
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     types.StatusOK,
			"recordings": out,
			"count":      len(out),
			"offset":     offset,
		})
	}
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.ValidationError(name, "must be a non-negative integer")
	}
	return n, nil
}

// Process runs the pipeline again for a stored recording
// @Summary Reprocess a recording
// @Description Runs the pipeline for a recording in uploaded, done or failed state and returns the hand-off record.
// @Tags voices
// @Produce json
// @Param id path string true "Recording ID"
// @Success 200 {object} pipeline.Handoff
// @Failure 404 {object} types.ErrorResponse
// @Failure 409 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /api/voices/{id}/process [post]
func Process(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		handoff, err := deps.Pipeline.Process(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, handoff)
	}
}
