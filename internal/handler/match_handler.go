package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"talent-match-go/internal/service"
	"talent-match-go/pkg/log"
)

// MatchHandler 处理搜索、搜索历史与滑动相关的请求。
type MatchHandler struct {
	matchService service.MatchService
	swipeService service.SwipeService
}

// NewMatchHandler 创建一个新的 MatchHandler 实例。
func NewMatchHandler(matchService service.MatchService, swipeService service.SwipeService) *MatchHandler {
	return &MatchHandler{matchService: matchService, swipeService: swipeService}
}

// StartSearchRequest 是发起搜索的请求体。
type StartSearchRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// StartSearch 同步执行一次搜索并返回排序后的匹配。没有匹配时 message 给出提示，仍返回 200。
func (h *MatchHandler) StartSearch(c *gin.Context) {
	user, found := currentUser(c)
	if !found {
		return
	}
	var req StartSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("StartSearch: Invalid request payload, error: %v", err)
		badRequest(c, "无效的请求负载：prompt 不能为空")
		return
	}

	result, err := h.matchService.StartSearch(c.Request.Context(), user, req.Prompt)
	if err != nil {
		respondError(c, "StartSearch", err)
		return
	}
	ok(c, result)
}

// ListHistory 分页返回当前用户的搜索历史，page 从 1 开始。
func (h *MatchHandler) ListHistory(c *gin.Context) {
	user, found := currentUser(c)
	if !found {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	items, total, err := h.matchService.ListHistory(c.Request.Context(), user, page, size)
	if err != nil {
		respondError(c, "ListHistory", err)
		return
	}
	ok(c, gin.H{"content": items, "totalElements": total})
}

// GetMatches 返回单个搜索请求及其全部匹配。
func (h *MatchHandler) GetMatches(c *gin.Context) {
	user, found := currentUser(c)
	if !found {
		return
	}
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "无效的搜索请求 ID")
		return
	}

	detail, err := h.matchService.GetMatches(c.Request.Context(), user, uint(requestID))
	if err != nil {
		respondError(c, "GetMatches", err)
		return
	}
	ok(c, detail)
}

// SwipeRequest 是滑动操作的请求体，direction 为 left 或 right。
type SwipeRequest struct {
	MatchID   uint   `json:"matchId" binding:"required"`
	Direction string `json:"direction" binding:"required"`
}

// Swipe 记录滑动方向，右滑时返回会话 ID。
func (h *MatchHandler) Swipe(c *gin.Context) {
	user, found := currentUser(c)
	if !found {
		return
	}
	var req SwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Swipe: Invalid request payload, error: %v", err)
		badRequest(c, "无效的请求负载：matchId 与 direction 不能为空")
		return
	}

	result, err := h.swipeService.Swipe(c.Request.Context(), user, req.MatchID, req.Direction)
	if err != nil {
		respondError(c, "Swipe", err)
		return
	}
	ok(c, result)
}
