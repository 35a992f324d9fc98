package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/projectsanctuary/sanctuary/internal/projects/domain"
)

func (h *Handler) role(c *gin.Context, given string) string {
	if r := strings.TrimSpace(given); r != "" {
		return r
	}
	if h.roles == nil {
		return ""
	}
	r, err := h.roles.Role(c.Request.Context())
	if err != nil {
		return ""
	}
	return r
}

// respond writes p or maps err onto a status code.
func respond(c *gin.Context, status int, p domain.Project, err error) {
	if err != nil {
		c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(status, gin.H{"ok": true, "project": p})
}

func statusFor(err error) int {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrArchiveRecordRequired),
		errors.Is(err, domain.ErrNotArchived),
		errors.Is(err, domain.ErrDuplicateID):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) list(c *gin.Context) {
	items := h.svc.List()
	if status := c.Query("status"); status != "" {
		filtered := items[:0]
		for _, p := range items {
			if string(p.Status) == status {
				filtered = append(filtered, p)
			}
		}
		items = filtered
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "backend": h.svc.Backend(), "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Param("id"))
	respond(c, http.StatusOK, p, err)
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	p, err := h.svc.Create(c.Request.Context(), domain.NewProject{
		Title:       req.Title,
		Type:        req.Type,
		Description: req.Description,
		Notes:       req.Notes,
		Role:        h.role(c, req.Role),
	})
	respond(c, http.StatusCreated, p, err)
}

func (h *Handler) quickCapture(c *gin.Context) {
	var req quickCaptureReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	p, err := h.svc.QuickCapture(c.Request.Context(), req.Text, h.role(c, req.Role))
	respond(c, http.StatusCreated, p, err)
}

func (h *Handler) fromTemplate(c *gin.Context) {
	var req templateReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Template) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	p, err := h.svc.ApplyTemplate(c.Request.Context(), h.role(c, req.Role), req.Template)
	respond(c, http.StatusCreated, p, err)
}

func (h *Handler) edit(c *gin.Context) {
	var req domain.Edit
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	p, err := h.svc.Edit(c.Request.Context(), c.Param("id"), req)
	respond(c, http.StatusOK, p, err)
}

func (h *Handler) appendNote(c *gin.Context) {
	var req noteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	p, err := h.svc.AppendNote(c.Request.Context(), c.Param("id"), req.Text)
	respond(c, http.StatusOK, p, err)
}

func (h *Handler) changeStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	p, err := h.svc.ChangeStatus(c.Request.Context(), c.Param("id"), domain.Status(req.Status))
	respond(c, http.StatusOK, p, err)
}

func (h *Handler) archive(c *gin.Context) {
	var req domain.ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	p, err := h.svc.Archive(c.Request.Context(), c.Param("id"), req)
	respond(c, http.StatusOK, p, err)
}

func (h *Handler) revive(c *gin.Context) {
	p, err := h.svc.Revive(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, p, err)
}

func (h *Handler) touch(c *gin.Context) {
	p, err := h.svc.Touch(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, p, err)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
