package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"talent-match-go/internal/service"
	"talent-match-go/pkg/log"
)

// AdminHandler 负责处理所有与管理员相关的 API 请求。
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler 创建一个新的 AdminHandler 实例。
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListUsers 分页列出用户，page 从 1 开始。
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	users, err := h.adminService.ListUsers(c.Request.Context(), page, size)
	if err != nil {
		respondError(c, "ListUsers", err)
		return
	}
	ok(c, users)
}

// SyncEmbeddings 同步执行一次缺失向量的批量补齐。
func (h *AdminHandler) SyncEmbeddings(c *gin.Context) {
	synced := h.adminService.SyncEmbeddings(c.Request.Context())
	log.Infof("SyncEmbeddings: 补齐 %d 个画像向量", synced)
	ok(c, gin.H{"synced": synced})
}
