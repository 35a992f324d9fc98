package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/projectsanctuary/sanctuary/internal/projects/service"
	"github.com/projectsanctuary/sanctuary/internal/transfer"
)

// maxImportBytes bounds the accepted import body.
const maxImportBytes = 10 << 20

type RoleSource interface {
	Role(ctx context.Context) (string, error)
}

type Handler struct {
	projects *service.ProjectService
	roles    RoleSource
}

func New(projects *service.ProjectService, roles RoleSource) *Handler {
	return &Handler{projects: projects, roles: roles}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/export", h.export)
	rg.POST("/import", h.importProjects)
}

func boolQuery(c *gin.Context, key string, def bool) bool {
	v, err := strconv.ParseBool(c.DefaultQuery(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}

func (h *Handler) export(c *gin.Context) {
	format, err := transfer.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	opts := transfer.Options{
		Format:          format,
		IncludeArchived: boolQuery(c, "include_archived", true),
		IncludeNotes:    boolQuery(c, "include_notes", true),
		Now:             time.Now().UTC(),
	}
	if h.roles != nil {
		if role, err := h.roles.Role(c.Request.Context()); err == nil {
			opts.UserRole = role
		}
	}

	payload, err := transfer.Export(h.projects.List(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", payload.Filename))
	c.Data(http.StatusOK, payload.ContentType, payload.Data)
}

func (h *Handler) importProjects(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unreadable body"})
		return
	}

	items, err := transfer.Import(body, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid import data. Please check the format and try again."})
		return
	}

	res, err := h.projects.Import(c.Request.Context(), items)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error(), "result": res})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": res})
}
