package chat

import (
	"net/http"
	"strconv"

	"lendaround/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	hub     *Hub
}

func NewHandler(service *Service, hub *Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws", h.ServeWS)
	rg.GET("/conversations/:id/messages", h.ListMessages)
	rg.POST("/conversations/:id/messages", h.AppendMessage)
}

func (h *Handler) ServeWS(c *gin.Context) {
	userID := c.GetInt64("user_id")

	channels, err := h.service.ChannelsForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve subscriptions")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return // upgrader already wrote the error
	}

	h.hub.ServeWS(conn, userID, channels)
}

type appendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h *Handler) AppendMessage(c *gin.Context) {
	userID := c.GetInt64("user_id")
	convID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid conversation ID")
		return
	}

	var req appendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	m, err := h.service.AppendMessage(c.Request.Context(), convID, userID, req.Body)
	if err != nil {
		switch err {
		case ErrNotParticipant:
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not a participant of this conversation")
		case ErrEmptyMessage:
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Message body is empty")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to send message")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"message": m})
}

func (h *Handler) ListMessages(c *gin.Context) {
	userID := c.GetInt64("user_id")
	convID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid conversation ID")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	msgs, err := h.service.ListMessages(c.Request.Context(), convID, userID, limit, offset)
	if err != nil {
		switch err {
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Conversation not found")
		case ErrNotParticipant:
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not a participant of this conversation")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load messages")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"messages": msgs})
}
