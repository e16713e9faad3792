package documents

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"slidesage-backend/internal/shared/server/middleware"
	"slidesage-backend/internal/shared/server/respond"
	"slidesage-backend/internal/shared/util"
)

const defaultMaxUploadBytes = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler. A non-positive maxUploadBytes uses 10MB.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/files", h.upload)
	rg.GET("/files", h.list)
	rg.GET("/files/:id", h.detail)
	rg.GET("/files/:id/content", h.content)
	rg.POST("/files/:id/extract-text", h.extractText)
	rg.POST("/files/:id/summary", h.summarize)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeTooLarge, fmt.Sprintf("file exceeds %d bytes", h.MaxUploadBytes), nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "no file uploaded", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeUploadRead, "unable to read file", nil)
		return
	}
	defer file.Close()

	detail, err := h.Svc.Ingest(c.Request.Context(), Upload{
		Body:        file,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		FileName:    fileHeader.Filename,
		UserID:      userID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.Set("documentId", detail.ID)
	respond.JSON(c, http.StatusCreated, detail)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 0
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 100 {
		limit = 100
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	items, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, items)
}

func (h *Handler) detail(c *gin.Context) {
	detail, err := h.Svc.Get(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, detail)
}

func (h *Handler) content(c *gin.Context) {
	doc, err := h.Svc.Content(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}

	name, err := util.SanitizeFileName(doc.FileName)
	if err != nil {
		name = doc.ID + ".pdf"
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = contentTypePDF
	}
	c.DataFromReader(http.StatusOK, doc.SizeBytes, contentType, bytes.NewReader(doc.Content), map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", name),
	})
}

func (h *Handler) extractText(c *gin.Context) {
	id := c.Param("id")
	userID := middleware.UserIDFromContext(c)
	c.Set("documentId", id)

	before, err := h.Svc.Get(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	detail, err := h.Svc.Reprocess(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, ErrExtractionFailed) {
			c.Set("statusTransition", string(before.TextStatus)+"->"+string(TextStatusError))
		}
		writeError(c, err)
		return
	}
	c.Set("statusTransition", string(before.TextStatus)+"->"+string(detail.TextStatus))
	respond.JSON(c, http.StatusOK, detail)
}

func (h *Handler) summarize(c *gin.Context) {
	c.Set("documentId", c.Param("id"))
	detail, err := h.Svc.Summarize(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, detail)
}

// isTooLarge matches MaxBytesReader failures, including ones the multipart
// reader has flattened to text.
func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}

func writeError(c *gin.Context, err error) {
	switch {
	case isTooLarge(err):
		respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeTooLarge, "file too large", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "file not found", nil)
	case errors.Is(err, ErrExtractionFailed):
		respond.Error(c, http.StatusUnprocessableEntity, ErrorCodeExtraction, "could not extract text from PDF", gin.H{"reason": err.Error()})
	case errors.Is(err, ErrPreconditionFailed):
		respond.Error(c, http.StatusConflict, ErrorCodePrecondition, "no extracted text", nil)
	case errors.Is(err, ErrIO):
		respond.Error(c, http.StatusBadRequest, ErrorCodeUploadRead, "unable to read file", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "internal error", nil)
	}
}
