package handler

import (
	"github.com/gin-gonic/gin"

	"talent-match-go/internal/service"
)

// ConversationHandler 处理会话相关的 API 请求。
type ConversationHandler struct {
	service service.ConversationService
}

// NewConversationHandler 创建一个新的 ConversationHandler。
func NewConversationHandler(service service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// GetConversations 返回当前用户参与的全部会话。
func (h *ConversationHandler) GetConversations(c *gin.Context) {
	user, found := currentUser(c)
	if !found {
		return
	}
	convs, err := h.service.ListConversations(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, "GetConversations", err)
		return
	}
	ok(c, convs)
}
