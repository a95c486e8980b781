package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// 面向调用方的业务错误，handler 据此映射 HTTP 状态码。
var (
	ErrNotFound     = errors.New("资源不存在")
	ErrForbidden    = errors.New("无权访问该资源")
	ErrPrecondition = errors.New("请求不满足前置条件")

	ErrUserExists         = errors.New("用户名已存在")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// notFoundOr 将 gorm 的记录不存在错误转换为 ErrNotFound，其它错误原样包装。
func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
