package sessions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/editor"
)

func writeEditorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, editor.ErrSessionNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
	case errors.Is(err, editor.ErrBusy):
		respond.Error(c, http.StatusConflict, "enhancement_in_progress", err.Error(), nil)
	case errors.Is(err, editor.ErrAwaitingReview):
		respond.Error(c, http.StatusConflict, "awaiting_review", err.Error(), nil)
	case errors.Is(err, editor.ErrNotEditable):
		respond.Error(c, http.StatusConflict, "not_editable", err.Error(), nil)
	case errors.Is(err, editor.ErrNotReviewing):
		respond.Error(c, http.StatusConflict, "not_reviewing", err.Error(), nil)
	case errors.Is(err, editor.ErrIndexOutOfRange),
		errors.Is(err, editor.ErrUnknownField),
		errors.Is(err, editor.ErrUnknownSection):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update session", nil)
	}
}
