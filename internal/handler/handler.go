package handler

import (
	"net/http"
	"strings"

	"pocket-signal-pro/internal/access"
	"pocket-signal-pro/internal/router"
	"pocket-signal-pro/internal/store"
	"pocket-signal-pro/internal/verify"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// Handler exposes the admin control surface over HTTP. Everything under
// /api requires the configured bearer token.
type Handler struct {
	tracer      trace.Tracer
	users       *store.UserStore
	admins      access.AdminSet
	workflow    *verify.Workflow
	flags       *store.FeatureFlags
	broadcaster router.Broadcaster
	events      *verify.Broker
	authToken   string
}

func New(
	tracer trace.Tracer,
	users *store.UserStore,
	admins access.AdminSet,
	workflow *verify.Workflow,
	flags *store.FeatureFlags,
	broadcaster router.Broadcaster,
	events *verify.Broker,
	authToken string,
) *Handler {
	return &Handler{
		tracer:      tracer,
		users:       users,
		admins:      admins,
		workflow:    workflow,
		flags:       flags,
		broadcaster: broadcaster,
		events:      events,
		authToken:   authToken,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api", h.requireBearer)
	api.GET("/users", h.ListUsers)
	api.POST("/users/:id/verify", h.VerifyUser)
	api.GET("/flags/auto-suggestions", h.GetAutoSuggestions)
	api.PUT("/flags/auto-suggestions", h.SetAutoSuggestions)
	api.POST("/broadcast", h.Broadcast)
	api.GET("/events/verifications", h.StreamVerifications)
}

// Health godoc
// @Summary      Service health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) requireBearer(c *gin.Context) {
	authz := strings.TrimSpace(c.GetHeader("Authorization"))
	if !strings.HasPrefix(authz, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	provided := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	if h.authToken == "" || provided == "" || provided != h.authToken {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid bearer token"})
		return
	}
	c.Next()
}
