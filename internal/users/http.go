package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/projectsanctuary/sanctuary/internal/auth"
)

type Handler struct {
	svc *ProfileService
}

func NewHandler(svc *ProfileService) *Handler {
	return &Handler{svc: svc}
}

// Register wires the catalog and profile routes. requireAuth guards the hosted
// profile read; optionalAuth resolves the caller for role selection.
func (h *Handler) Register(rg *gin.RouterGroup, requireAuth, optionalAuth gin.HandlerFunc) {
	rg.GET("/catalog", h.catalog)
	rg.GET("/catalog/:role", h.catalogRole)
	rg.GET("/profile", requireAuth, h.profile)
	rg.GET("/profile/role", optionalAuth, h.role)
	rg.PUT("/profile/role", optionalAuth, h.setRole)
}

func (h *Handler) catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "roles": h.svc.Catalog().Roles})
}

func (h *Handler) catalogRole(c *gin.Context) {
	r, ok := h.svc.Catalog().Role(c.Param("role"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "role not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "role": r})
}

func (h *Handler) profile(c *gin.Context) {
	p, err := h.svc.Profile(c.Request.Context(), auth.UserFirebaseUID(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "profile not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "profile": p})
}

func (h *Handler) role(c *gin.Context) {
	r, err := h.svc.Role(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "role": r})
}

type roleReq struct {
	Role string `json:"role"`
}

func (h *Handler) setRole(c *gin.Context) {
	var req roleReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Role) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	role, err := h.svc.SetRole(c.Request.Context(), auth.UserFirebaseUID(c), c.GetString(auth.CtxEmail), req.Role)
	if err != nil {
		if errors.Is(err, ErrUnknownRole) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "role": role})
}
