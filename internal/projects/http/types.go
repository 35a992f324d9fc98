package http

import (
	"context"

	"github.com/projectsanctuary/sanctuary/internal/projects/service"
)

// RoleSource supplies the user's role when a request does not name one.
type RoleSource interface {
	Role(ctx context.Context) (string, error)
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc   *service.ProjectService
	roles RoleSource
}

func New(svc *service.ProjectService, roles RoleSource) *Handler {
	return &Handler{svc: svc, roles: roles}
}

type createReq struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
	Role        string `json:"userRole"`
}

type quickCaptureReq struct {
	Text string `json:"text"`
	Role string `json:"userRole"`
}

type templateReq struct {
	Template string `json:"template"`
	Role     string `json:"userRole"`
}

type noteReq struct {
	Text string `json:"text"`
}

type statusReq struct {
	Status string `json:"status"`
}
