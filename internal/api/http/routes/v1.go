package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projectsanctuary/sanctuary/internal/auth"
	authmw "github.com/projectsanctuary/sanctuary/internal/auth/middleware"
	"github.com/projectsanctuary/sanctuary/internal/cloudbackup"
	engagementhttp "github.com/projectsanctuary/sanctuary/internal/engagement/http"
	projecthttp "github.com/projectsanctuary/sanctuary/internal/projects/http"
	sessionhttp "github.com/projectsanctuary/sanctuary/internal/session/http"
	"github.com/projectsanctuary/sanctuary/internal/settings"
	transferhttp "github.com/projectsanctuary/sanctuary/internal/transfer/http"
	"github.com/projectsanctuary/sanctuary/internal/users"
)

type V1Deps struct {
	// Verifier is nil when Firebase is not configured.
	Verifier auth.TokenVerifier
	Owner    auth.OwnerSource

	Session    *sessionhttp.Handler
	Projects   *projecthttp.Handler
	Transfer   *transferhttp.Handler
	Engagement *engagementhttp.Handler
	Users      *users.Handler
	Settings   *settings.Handler
	// Cloud is nil when no backup provider is configured.
	Cloud *cloudbackup.Handler
}

func authUnavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "authentication is not configured"})
	c.Abort()
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")

	requireAuth := gin.HandlerFunc(authUnavailable)
	if dep.Verifier != nil {
		requireAuth = authmw.FirebaseAuthMiddleware(dep.Verifier)
	}
	optionalAuth := auth.OptionalUser(dep.Verifier, dep.Owner)

	dep.Session.Register(api)
	dep.Projects.Register(api.Group("/projects"))
	dep.Transfer.Register(api)
	dep.Engagement.Register(api)
	dep.Users.Register(api, requireAuth, optionalAuth)
	dep.Settings.Register(api)

	if dep.Cloud != nil {
		dep.Cloud.Register(api)
	}
}
