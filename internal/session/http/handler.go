package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projectsanctuary/sanctuary/internal/migration"
	"github.com/projectsanctuary/sanctuary/internal/session"
)

// BackendNamer reports which project backend is active.
type BackendNamer interface {
	Backend() string
}

type Handler struct {
	gate     *session.Gate
	backends BackendNamer
}

func New(gate *session.Gate, backends BackendNamer) *Handler {
	return &Handler{gate: gate, backends: backends}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/session", h.current)
	rg.POST("/session", h.signIn)
	rg.DELETE("/session", h.signOut)
	rg.POST("/migration/accept", h.acceptMigration)
	rg.POST("/migration/skip", h.skipMigration)
}

type signInReq struct {
	IDToken string `json:"id_token"`
}

type sessionResp struct {
	OK               bool             `json:"ok"`
	SignedIn         bool             `json:"signed_in"`
	Session          *session.Session `json:"session,omitempty"`
	Backend          string           `json:"backend"`
	MigrationOffered bool             `json:"migration_offered"`
}

func (h *Handler) state() sessionResp {
	resp := sessionResp{OK: true, Backend: h.backends.Backend(), MigrationOffered: h.gate.MigrationOffered()}
	if s, ok := h.gate.Current(); ok {
		resp.SignedIn = true
		resp.Session = &s
	}
	return resp
}

func (h *Handler) current(c *gin.Context) {
	c.JSON(http.StatusOK, h.state())
}

func (h *Handler) signIn(c *gin.Context) {
	var req signInReq
	if err := c.ShouldBindJSON(&req); err != nil || req.IDToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "id_token is required"})
		return
	}
	if _, err := h.gate.SignIn(c.Request.Context(), req.IDToken); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.state())
}

func (h *Handler) signOut(c *gin.Context) {
	if err := h.gate.SignOut(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.state())
}

func (h *Handler) acceptMigration(c *gin.Context) {
	res, err := h.gate.AcceptMigration(c.Request.Context())
	if err != nil {
		c.JSON(migrationStatus(err), gin.H{"ok": false, "error": err.Error(), "result": res})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": res})
}

func (h *Handler) skipMigration(c *gin.Context) {
	if err := h.gate.SkipMigration(c.Request.Context()); err != nil {
		c.JSON(migrationStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func migrationStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrNotSignedIn), errors.Is(err, migration.ErrNotSignedIn):
		return http.StatusUnauthorized
	case errors.Is(err, migration.ErrNothingToMigrate):
		return http.StatusConflict
	case errors.Is(err, migration.ErrNoHostedStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
