package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.POST("/quick-capture", h.quickCapture)
	rg.POST("/from-template", h.fromTemplate)
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.edit)
	rg.POST("/:id/notes", h.appendNote)
	rg.POST("/:id/status", h.changeStatus)
	rg.POST("/:id/archive", h.archive)
	rg.POST("/:id/revive", h.revive)
	rg.POST("/:id/touch", h.touch)
	rg.DELETE("/:id", h.delete)
}
