package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"bate-papo/contract"
	"bate-papo/domain"
	chaterr "bate-papo/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PostMessageController handles POST /messages.
type PostMessageController struct {
	log *slog.Logger
	bus contract.IBus
}

func NewPostMessageController(log *slog.Logger, bus contract.IBus) *PostMessageController {
	return &PostMessageController{log: log, bus: bus}
}

func (h *PostMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req messageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequestBody(c)
			return
		}
		message, err := h.bus.Post(c.Request.Context(), c.GetHeader(UserHeader), req.draft())
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		c.JSON(http.StatusCreated, toMessageResponse(message))
	}
}

// ListMessagesController handles GET /messages?limit=N.
// Without limit the whole visible log is returned.
type ListMessagesController struct {
	log *slog.Logger
	bus contract.IBus
}

func NewListMessagesController(log *slog.Logger, bus contract.IBus) *ListMessagesController {
	return &ListMessagesController{log: log, bus: bus}
}

func (h *ListMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if v, ok := c.GetQuery("limit"); ok {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{
					Error:   chaterr.ErrValidation.Error(),
					Details: []domain.FieldError{{Field: "limit", Rule: "gt=0"}},
				})
				return
			}
			limit = n
		}
		messages, err := h.bus.List(c.Request.Context(), c.GetHeader(UserHeader), limit)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, toMessageResponses(messages))
	}
}

// EditMessageController handles PUT /messages/:id.
type EditMessageController struct {
	log *slog.Logger
	bus contract.IBus
}

func NewEditMessageController(log *slog.Logger, bus contract.IBus) *EditMessageController {
	return &EditMessageController{log: log, bus: bus}
}

func (h *EditMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := messageID(c)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		var req messageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequestBody(c)
			return
		}
		message, err := h.bus.Edit(c.Request.Context(), id, c.GetHeader(UserHeader), req.draft())
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, toMessageResponse(message))
	}
}

// DeleteMessageController handles DELETE /messages/:id.
type DeleteMessageController struct {
	log *slog.Logger
	bus contract.IBus
}

func NewDeleteMessageController(log *slog.Logger, bus contract.IBus) *DeleteMessageController {
	return &DeleteMessageController{log: log, bus: bus}
}

func (h *DeleteMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := messageID(c)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		if err := h.bus.Delete(c.Request.Context(), id, c.GetHeader(UserHeader)); err != nil {
			writeError(c, h.log, err)
			return
		}
		c.Status(http.StatusOK)
	}
}

// messageID parses the path id. An id that is not a uuid cannot exist.
func messageID(c *gin.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", chaterr.ErrNotFound, raw)
	}
	return id, nil
}
