package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/enhance"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/util"
	"resume-builder/resume/editor"
	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

const (
	contentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	maxBodyBytes    = 1 << 20
)

// PDFRenderer prints a document to PDF.
type PDFRenderer interface {
	Render(ctx context.Context, doc model.Document) ([]byte, error)
}

// Handler exposes editing sessions over HTTP.
type Handler struct {
	Store    *editor.Store
	Enhancer editor.Enhancer
	PDF      PDFRenderer
}

// NewHandler constructs a Handler.
func NewHandler(store *editor.Store, enhancer editor.Enhancer, pdf PDFRenderer) *Handler {
	return &Handler{Store: store, Enhancer: enhancer, PDF: pdf}
}

// RegisterRoutes attaches session routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.create)
	rg.GET("/sessions/:id", h.get)
	rg.DELETE("/sessions/:id", h.remove)
	rg.PUT("/sessions/:id/personal", h.setPersonal)
	rg.POST("/sessions/:id/entries/:section", h.addEntry)
	rg.PUT("/sessions/:id/entries/:section/:index", h.setEntry)
	rg.DELETE("/sessions/:id/entries/:section/:index", h.removeEntry)
	rg.POST("/sessions/:id/sample", h.loadSample)
	rg.POST("/sessions/:id/submit", h.submit)
	rg.POST("/sessions/:id/apply", h.apply)
	rg.POST("/sessions/:id/reject", h.reject)
	rg.GET("/sessions/:id/preview", h.preview)
}

func (h *Handler) create(c *gin.Context) {
	req := createRequest{}
	if err := decodeOptionalJSON(c.Request.Body, &req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	doc := model.Blank()
	switch {
	case len(req.Document) > 0:
		decoded, err := model.Decode(req.Document)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid document", schemaDetails(err))
			return
		}
		doc = decoded
	case req.Sample:
		doc = model.Sample()
	}

	sess := h.Store.Create(doc)
	metrics.SetSessionsActive(h.Store.Len())
	c.Set(middleware.SessionIDKey, sess.ID())
	respond.JSON(c, http.StatusCreated, sess.Snapshot())
}

func (h *Handler) get(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	respond.OK(c, sess.Snapshot())
}

func (h *Handler) remove(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.SessionIDKey, id)
	if err := h.Store.Delete(id); err != nil {
		writeEditorError(c, err)
		return
	}
	metrics.SetSessionsActive(h.Store.Len())
	c.Status(http.StatusNoContent)
}

func (h *Handler) setPersonal(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	req, ok := bindFieldUpdate(c)
	if !ok {
		return
	}
	if err := sess.SetPersonal(editor.PersonalField(req.Field), *req.Value); err != nil {
		writeEditorError(c, err)
		return
	}
	respond.OK(c, sess.Snapshot())
}

func (h *Handler) setEntry(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	section, index, ok := sectionAndIndex(c)
	if !ok {
		return
	}

	var err error
	if section == editor.SectionSkills {
		req := skillUpdateRequest{}
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
		if vErr := req.Validate(); vErr != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", vErr.Error(), nil)
			return
		}
		err = sess.SetSkill(index, *req.Value)
	} else {
		req, bound := bindFieldUpdate(c)
		if !bound {
			return
		}
		switch section {
		case editor.SectionExperience:
			err = sess.SetExperience(index, editor.ExperienceField(req.Field), *req.Value)
		case editor.SectionEducation:
			err = sess.SetEducation(index, editor.EducationField(req.Field), *req.Value)
		case editor.SectionExtraCurriculars:
			err = sess.SetActivity(index, editor.ActivityField(req.Field), *req.Value)
		}
	}
	if err != nil {
		writeEditorError(c, err)
		return
	}
	respond.OK(c, sess.Snapshot())
}

func (h *Handler) addEntry(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	section, ok := editor.ParseSection(c.Param("section"))
	if !ok {
		writeEditorError(c, editor.ErrUnknownSection)
		return
	}
	if err := sess.AddEntry(section); err != nil {
		writeEditorError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, sess.Snapshot())
}

func (h *Handler) removeEntry(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	section, index, ok := sectionAndIndex(c)
	if !ok {
		return
	}
	if err := sess.RemoveEntry(section, index); err != nil {
		writeEditorError(c, err)
		return
	}
	respond.OK(c, sess.Snapshot())
}

func (h *Handler) loadSample(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.LoadSample(); err != nil {
		writeEditorError(c, err)
		return
	}
	respond.OK(c, sess.Snapshot())
}

func (h *Handler) submit(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var runID string
	ctx := enhance.WithSessionID(c.Request.Context(), sess.ID())
	ctx = enhance.WithRequestID(ctx, middleware.RequestIDFromContext(c))
	ctx = enhance.WithRunIDSink(ctx, &runID)

	_, err := sess.Submit(ctx, h.Enhancer)
	if runID != "" {
		c.Set(middleware.RunIDKey, runID)
	}
	if err != nil {
		if errors.Is(err, editor.ErrBusy) || errors.Is(err, editor.ErrAwaitingReview) {
			writeEditorError(c, err)
			return
		}
		enhance.WriteFailure(c, err)
		return
	}
	respond.Success(c, sess.Snapshot())
}

func (h *Handler) apply(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Apply(); err != nil {
		writeEditorError(c, err)
		return
	}
	respond.OK(c, sess.Snapshot())
}

func (h *Handler) reject(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Reject(); err != nil {
		writeEditorError(c, err)
		return
	}
	respond.OK(c, sess.Snapshot())
}

func (h *Handler) preview(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	doc := sess.Active()

	switch format := c.DefaultQuery("format", "json"); format {
	case "json":
		respond.OK(c, render.Project(doc))
	case "text":
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(render.Text(doc)))
	case "html":
		out, err := render.HTML(doc)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "render_failed", "failed to render preview", nil)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", out)
	case "docx":
		out, err := render.DOCX(doc)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "render_failed", "failed to render document", nil)
			return
		}
		attachment(c, contentTypeDOCX, util.DownloadName(doc.PersonalInfo.Name, "docx"), out)
	case "pdf":
		if h.PDF == nil {
			respond.Error(c, http.StatusNotImplemented, "pdf_unavailable", "pdf rendering is not configured", nil)
			return
		}
		out, err := h.PDF.Render(c.Request.Context(), doc)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "render_failed", "failed to render pdf", nil)
			return
		}
		attachment(c, "application/pdf", util.DownloadName(doc.PersonalInfo.Name, "pdf"), out)
	default:
		respond.Error(c, http.StatusBadRequest, "validation_error", fmt.Sprintf("unsupported format %q", format), nil)
	}
}

func (h *Handler) session(c *gin.Context) (*editor.Session, bool) {
	id := c.Param("id")
	c.Set(middleware.SessionIDKey, id)
	sess, err := h.Store.Get(id)
	if err != nil {
		writeEditorError(c, err)
		return nil, false
	}
	return sess, true
}

func bindFieldUpdate(c *gin.Context) (fieldUpdateRequest, bool) {
	req := fieldUpdateRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return req, false
	}
	if err := req.Validate(); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return req, false
	}
	return req, true
}

func sectionAndIndex(c *gin.Context) (editor.Section, int, bool) {
	section, ok := editor.ParseSection(c.Param("section"))
	if !ok {
		writeEditorError(c, editor.ErrUnknownSection)
		return "", 0, false
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "index must be an integer", nil)
		return "", 0, false
	}
	return section, index, true
}

func attachment(c *gin.Context, contentType, name string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, body)
}

func schemaDetails(err error) any {
	var schemaErr *model.SchemaError
	if errors.As(err, &schemaErr) {
		return schemaErr.Errors
	}
	return nil
}

func decodeOptionalJSON(body io.ReadCloser, out any) error {
	if body == nil {
		return nil
	}
	errInvalidJSON := errors.New("invalid json body")
	decoder := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	if err := decoder.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errInvalidJSON
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errInvalidJSON
	}
	return nil
}
