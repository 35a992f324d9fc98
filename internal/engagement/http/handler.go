package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projectsanctuary/sanctuary/internal/engagement/domain"
	"github.com/projectsanctuary/sanctuary/internal/engagement/service"
)

type Handler struct {
	svc *service.EngagementService
}

func New(svc *service.EngagementService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/mood", h.moods)
	rg.POST("/mood", h.logMood)
	rg.GET("/streak", h.streak)
	rg.POST("/streak", h.setStreak)
}

type moodReq struct {
	Mood   string `json:"mood"`
	Energy int    `json:"energy"`
	Notes  string `json:"notes"`
}

type streakReq struct {
	Current *int `json:"current_streak"`
}

func (h *Handler) moods(c *gin.Context) {
	items, err := h.svc.Moods(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "moods": items})
}

func (h *Handler) logMood(c *gin.Context) {
	var req moodReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	e, err := h.svc.LogMood(c.Request.Context(), domain.Mood(req.Mood), req.Energy, req.Notes)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "mood": e})
}

func (h *Handler) streak(c *gin.Context) {
	st, err := h.svc.Streak(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "streak": st})
}

func (h *Handler) setStreak(c *gin.Context) {
	var req streakReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Current == nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	st, err := h.svc.SetStreak(c.Request.Context(), *req.Current)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "streak": st})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidMood),
		errors.Is(err, domain.ErrInvalidEnergy),
		errors.Is(err, domain.ErrInvalidStreak):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
