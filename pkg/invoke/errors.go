package invoke

import (
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// ErrThrottled 表示外部模型明确拒绝了本次请求（限流），这是唯一可重试的失败。
var ErrThrottled = errors.New("model invocation throttled")

// InvocationFailedError 表示调用在重试耗尽后或遇到不可重试错误时失败。
type InvocationFailedError struct {
	Operation string
	Cause     error
}

func (e *InvocationFailedError) Error() string {
	return fmt.Sprintf("模型调用失败 [%s]: %v", e.Operation, e.Cause)
}

func (e *InvocationFailedError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError 表示响应已返回但结构不符合预期，不会重试。
type MalformedResponseError struct {
	Operation string
	Cause     error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("模型响应格式错误 [%s]", e.Operation)
	}
	return fmt.Sprintf("模型响应格式错误 [%s]: %v", e.Operation, e.Cause)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// IsThrottled 判断一个错误是否属于限流：显式的 ErrThrottled，或 HTTP 429。
func IsThrottled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrThrottled) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return true
		}
		if code, ok := apiErr.Code.(string); ok && code == "rate_limit_exceeded" {
			return true
		}
		return false
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}
