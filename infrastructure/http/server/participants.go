package server

import (
	"log/slog"
	"net/http"

	"bate-papo/contract"

	"github.com/gin-gonic/gin"
)

// JoinController handles POST /participants.
type JoinController struct {
	log      *slog.Logger
	registry contract.IRegistry
}

func NewJoinController(log *slog.Logger, registry contract.IRegistry) *JoinController {
	return &JoinController{log: log, registry: registry}
}

func (h *JoinController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req joinRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequestBody(c)
			return
		}
		participant, err := h.registry.Join(c.Request.Context(), req.Name)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		c.JSON(http.StatusCreated, toParticipantResponse(participant))
	}
}

// ListParticipantsController handles GET /participants.
type ListParticipantsController struct {
	log      *slog.Logger
	registry contract.IRegistry
}

func NewListParticipantsController(log *slog.Logger, registry contract.IRegistry) *ListParticipantsController {
	return &ListParticipantsController{log: log, registry: registry}
}

func (h *ListParticipantsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		participants, err := h.registry.List(c.Request.Context())
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, toParticipantResponses(participants))
	}
}

// HeartbeatController handles POST /status, the keep-alive of a participant.
type HeartbeatController struct {
	log      *slog.Logger
	registry contract.IRegistry
}

func NewHeartbeatController(log *slog.Logger, registry contract.IRegistry) *HeartbeatController {
	return &HeartbeatController{log: log, registry: registry}
}

func (h *HeartbeatController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.registry.Heartbeat(c.Request.Context(), c.GetHeader(UserHeader)); err != nil {
			writeError(c, h.log, err)
			return
		}
		c.Status(http.StatusOK)
	}
}
