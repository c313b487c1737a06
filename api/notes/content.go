package notes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/voicenote-api/api/types"
)

// GetContent serves the stored transcript text of a note
// @Summary Download a transcript note
// @Tags notes
// @Produce plain
// @Param id path string true "Note ID"
// @Success 200 {string} string "Transcript text"
// @Failure 404 {object} types.ErrorResponse
// @Router /api/notes/{id}/content [get]
func GetContent(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		note, content, err := deps.Notes.Content(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", note.FileName))
		c.Data(http.StatusOK, note.Format.ContentType(), content)
	}
}

// GetByID returns note metadata
// @Summary Get a note
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} types.NoteResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /api/notes/{id} [get]
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		note, err := deps.Notes.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, types.NewNoteResponse(*note))
	}
}
