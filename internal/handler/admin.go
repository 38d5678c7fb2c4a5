package handler

import (
	"net/http"
	"strconv"
	"strings"

	"pocket-signal-pro/internal/access"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type userView struct {
	ID                 int64  `json:"id"`
	DisplayName        string `json:"display_name"`
	State              string `json:"state"`
	Role               string `json:"role"`
	SubmittedReference string `json:"submitted_reference,omitempty"`
}

// ListUsers godoc
// @Summary      List known bot users
// @Description  Returns every user the bot has seen, with verification state and role
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /api/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.list-users")
	defer span.End()

	records := h.users.List()
	views := make([]userView, 0, len(records))
	for _, u := range records {
		views = append(views, userView{
			ID:                 u.ID,
			DisplayName:        u.DisplayName,
			State:              string(u.State),
			Role:               string(access.Classify(u, h.admins)),
			SubmittedReference: u.SubmittedReference,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": views})
}

// VerifyUser godoc
// @Summary      Verify a pending user
// @Description  Promotes the user to verified and notifies them through the bot
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Chat ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{id}/verify [post]
func (h *Handler) VerifyUser(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.verify-user")
	defer span.End()

	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return
	}
	span.SetAttributes(attribute.Int64("user.id", id))

	if _, ok := h.users.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown user"})
		return
	}

	user, changed := h.workflow.Promote(ctx, id)
	c.JSON(http.StatusOK, gin.H{
		"user": userView{
			ID:          user.ID,
			DisplayName: user.DisplayName,
			State:       string(user.State),
			Role:        string(access.Classify(user, h.admins)),
		},
		"changed": changed,
	})
}

// GetAutoSuggestions godoc
// @Summary      Read the auto-suggestion flag
// @Tags         flags
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]bool
// @Router       /api/flags/auto-suggestions [get]
func (h *Handler) GetAutoSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"enabled": h.flags.AutoSuggestions()})
}

type flagRequest struct {
	Enabled *bool `json:"enabled"`
}

// SetAutoSuggestions godoc
// @Summary      Toggle the auto-suggestion flag
// @Tags         flags
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  flagRequest  true  "New flag value"
// @Success      200  {object}  map[string]bool
// @Failure      400  {object}  map[string]string
// @Router       /api/flags/auto-suggestions [put]
func (h *Handler) SetAutoSuggestions(c *gin.Context) {
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"enabled\": true|false}"})
		return
	}
	h.flags.SetAutoSuggestions(*req.Enabled)
	c.JSON(http.StatusOK, gin.H{"enabled": h.flags.AutoSuggestions()})
}

type broadcastRequest struct {
	Text string `json:"text"`
}

// Broadcast godoc
// @Summary      Send a message to every known user
// @Tags         broadcast
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  broadcastRequest  true  "Broadcast text"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/broadcast [post]
func (h *Handler) Broadcast(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.broadcast")
	defer span.End()

	if h.broadcaster == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "bot not running"})
		return
	}

	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"text\": \"...\"}"})
		return
	}

	sent, failed := h.broadcaster.Broadcast(ctx, strings.TrimSpace(req.Text))
	if failed == nil {
		failed = []int64{}
	}
	c.JSON(http.StatusOK, gin.H{"sent": sent, "failed": failed})
}
