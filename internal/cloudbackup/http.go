package cloudbackup

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/projectsanctuary/sanctuary/internal/logging"
	"github.com/projectsanctuary/sanctuary/internal/projects/domain"
	"github.com/projectsanctuary/sanctuary/internal/settings"
	"github.com/projectsanctuary/sanctuary/internal/transfer"
)

type ProjectLister interface {
	List() []domain.Project
}

type RoleSource interface {
	Role(ctx context.Context) (string, error)
}

type SettingsUpdater interface {
	Update(ctx context.Context, fn func(*settings.Settings)) (settings.Settings, error)
}

type Handler struct {
	oauth    *OAuth
	drive    *Drive
	projects ProjectLister
	roles    RoleSource
	settings SettingsUpdater
	now      func() time.Time
}

func NewHandler(oauth *OAuth, drive *Drive, projects ProjectLister, roles RoleSource, st SettingsUpdater) *Handler {
	return &Handler{
		oauth:    oauth,
		drive:    drive,
		projects: projects,
		roles:    roles,
		settings: st,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	cloud := rg.Group("/cloud")
	cloud.GET("/:provider/auth-url", h.authURL)
	cloud.POST("/:provider/exchange", h.exchange)

	// The static google routes win over /:provider in gin's tree.
	cloud.POST("/google/upload", h.upload)
	cloud.POST("/google/list", h.list)
	cloud.POST("/google/download", h.download)
}

type authURLResponse struct {
	OK      bool   `json:"ok"`
	AuthURL string `json:"authUrl"`
	State   string `json:"state"`
}

type exchangeRequest struct {
	Code string `json:"code"`
}

type exchangeResponse struct {
	OK    bool  `json:"ok"`
	Token Token `json:"token"`
}

type uploadRequest struct {
	AccessToken string `json:"accessToken"`
	Filename    string `json:"filename"`
	// Content defaults to a fresh JSON export of the device's projects.
	Content string `json:"content"`
}

type uploadResponse struct {
	OK       bool   `json:"ok"`
	FileID   string `json:"fileId"`
	Filename string `json:"filename"`
}

type listRequest struct {
	AccessToken string `json:"accessToken"`
}

type listResponse struct {
	OK    bool   `json:"ok"`
	Files []File `json:"files"`
}

type downloadRequest struct {
	AccessToken string `json:"accessToken"`
	FileID      string `json:"fileId"`
}

type downloadResponse struct {
	OK      bool   `json:"ok"`
	Content string `json:"content"`
}

func writeErr(c *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, ErrUnknownProvider):
		status = http.StatusNotFound
	case errors.Is(err, ErrNotConfigured):
		status = http.StatusServiceUnavailable
	case errors.Is(err, ErrCodeRequired), errors.Is(err, ErrAccessTokenRequired):
		status = http.StatusBadRequest
	case errors.Is(err, ErrThrottled):
		status = http.StatusTooManyRequests
	}
	c.JSON(status, gin.H{"ok": false, "error": err.Error()})
}

func (h *Handler) authURL(c *gin.Context) {
	p, err := ParseProvider(c.Param("provider"))
	if err != nil {
		writeErr(c, err)
		return
	}
	state := c.Query("state")
	if state == "" {
		state = uuid.NewString()
	}
	u, err := h.oauth.AuthURL(p, state)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, authURLResponse{OK: true, AuthURL: u, State: state})
}

func (h *Handler) exchange(c *gin.Context) {
	ctx := c.Request.Context()
	log := logging.NewLogger(ctx)

	p, err := ParseProvider(c.Param("provider"))
	if err != nil {
		writeErr(c, err)
		return
	}
	var req exchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid json"})
		return
	}

	tok, err := h.oauth.Exchange(ctx, p, req.Code)
	if err != nil {
		log.LogError("cloudbackup.exchange", err)
		writeErr(c, err)
		return
	}

	if h.settings != nil {
		_, err := h.settings.Update(ctx, func(s *settings.Settings) {
			switch p {
			case ProviderGoogle:
				s.Cloud.GoogleDrive = true
			case ProviderDropbox:
				s.Cloud.Dropbox = true
			case ProviderOneDrive:
				s.Cloud.OneDrive = true
			}
		})
		if err != nil {
			log.LogWarnf("cloudbackup.exchange", "record connection: %v", err)
		}
	}

	c.JSON(http.StatusOK, exchangeResponse{OK: true, Token: tok})
}

func (h *Handler) backup(ctx context.Context) ([]byte, error) {
	opts := transfer.Options{
		Format:          transfer.FormatJSON,
		IncludeArchived: true,
		IncludeNotes:    true,
		Now:             h.now(),
	}
	if h.roles != nil {
		if role, err := h.roles.Role(ctx); err == nil {
			opts.UserRole = role
		}
	}
	payload, err := transfer.Export(h.projects.List(), opts)
	if err != nil {
		return nil, err
	}
	return payload.Data, nil
}

func (h *Handler) upload(c *gin.Context) {
	ctx := c.Request.Context()

	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid json"})
		return
	}
	if req.Filename == "" {
		req.Filename = BackupFilename(h.now())
	}

	content := []byte(req.Content)
	if len(content) == 0 {
		data, err := h.backup(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
			return
		}
		content = data
	}

	id, err := h.drive.Upload(ctx, req.AccessToken, req.Filename, content)
	if err != nil {
		logging.NewLogger(ctx).LogError("cloudbackup.upload", err)
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, uploadResponse{OK: true, FileID: id, Filename: req.Filename})
}

func (h *Handler) list(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid json"})
		return
	}
	files, err := h.drive.List(c.Request.Context(), req.AccessToken)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse{OK: true, Files: files})
}

func (h *Handler) download(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid json"})
		return
	}
	data, err := h.drive.Download(c.Request.Context(), req.AccessToken, req.FileID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, downloadResponse{OK: true, Content: string(data)})
}
