// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"talent-match-go/internal/model"
	"talent-match-go/internal/service"
	"talent-match-go/pkg/log"
)

// currentUser 返回 AuthMiddleware 注入的用户，缺失时直接写入 500 响应。
func currentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "无法获取用户信息", "data": nil})
		return nil, false
	}
	user, ok := value.(*model.User)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "用户数据类型错误", "data": nil})
		return nil, false
	}
	return user, true
}

// respondError 将业务错误映射为 HTTP 状态码。详细原因只写日志，5xx 响应只返回通用信息。
func respondError(c *gin.Context, action string, err error) {
	status, message := http.StatusInternalServerError, action+"失败，请稍后重试"
	switch {
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, "资源不存在"
	case errors.Is(err, service.ErrForbidden):
		status, message = http.StatusForbidden, "无权执行该操作"
	case errors.Is(err, service.ErrPrecondition):
		status, message = http.StatusBadRequest, "请求参数无效"
	}
	if status >= http.StatusInternalServerError {
		log.Errorf("%s: %v", action, err)
	} else {
		log.Warnf("%s: %v", action, err)
	}
	c.JSON(status, gin.H{"code": status, "message": message, "data": nil})
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": data})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": message, "data": nil})
}
