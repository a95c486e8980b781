// Package invoke 在全局限流闸门和有界重试之下执行单次外部模型调用，
// 上层组件无需感知限流的存在。
package invoke

import (
	"context"
	"fmt"
	"time"

	"talent-match-go/internal/metrics"
	"talent-match-go/pkg/log"
)

// DefaultRetryDelays 是限流后的固定重试计划：最多重试 3 次，共 4 次尝试。
var DefaultRetryDelays = []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}

// Sleeper 在重试之间等待 d，ctx 取消时提前返回。
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext 是默认的 Sleeper 实现。
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Options 配置 Client。零值字段使用默认值。
type Options struct {
	Gate        Gate
	RetryDelays []time.Duration
	Sleep       Sleeper
}

// Client 持有共享闸门与重试计划。同一进程内的所有模型调用应共用一个 Client。
type Client struct {
	gate        Gate
	retryDelays []time.Duration
	sleep       Sleeper
}

// NewClient 创建一个新的 Client 实例。
func NewClient(opts Options) *Client {
	c := &Client{
		gate:        opts.Gate,
		retryDelays: opts.RetryDelays,
		sleep:       opts.Sleep,
	}
	if c.gate == nil {
		c.gate = NewIntervalGate(DefaultMinInterval)
	}
	if c.retryDelays == nil {
		c.retryDelays = DefaultRetryDelays
	}
	if c.sleep == nil {
		c.sleep = SleepContext
	}
	return c
}

// Invoke 执行一次模型调用。
// build 每次尝试都会被调用以重新构造请求；send 发出请求；parse 从原始响应中提取结果。
// 只有被判定为限流的失败才会按重试计划重试，其它失败立即返回 InvocationFailedError，
// parse 失败返回 MalformedResponseError。
func Invoke[Req, Resp, T any](
	ctx context.Context,
	c *Client,
	operation string,
	build func() Req,
	send func(context.Context, Req) (Resp, error),
	parse func(Resp) (T, error),
) (T, error) {
	var zero T

	for attempt := 0; ; attempt++ {
		if err := c.gate.Wait(ctx); err != nil {
			metrics.ModelInvocationsTotal.WithLabelValues(operation, "failed").Inc()
			return zero, &InvocationFailedError{Operation: operation, Cause: err}
		}

		start := time.Now()
		resp, err := send(ctx, build())
		metrics.ModelInvocationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

		if err == nil {
			result, parseErr := parse(resp)
			if parseErr != nil {
				metrics.ModelInvocationsTotal.WithLabelValues(operation, "malformed").Inc()
				log.Errorf("[InvokeClient] 解析响应失败, operation: %s, error: %v", operation, parseErr)
				return zero, &MalformedResponseError{Operation: operation, Cause: parseErr}
			}
			metrics.ModelInvocationsTotal.WithLabelValues(operation, "success").Inc()
			return result, nil
		}

		if !IsThrottled(err) {
			metrics.ModelInvocationsTotal.WithLabelValues(operation, "failed").Inc()
			log.Errorf("[InvokeClient] 调用失败且不可重试, operation: %s, error: %v", operation, err)
			return zero, &InvocationFailedError{Operation: operation, Cause: err}
		}

		metrics.ModelInvocationsTotal.WithLabelValues(operation, "throttled").Inc()
		if attempt >= len(c.retryDelays) {
			log.Errorf("[InvokeClient] 重试 %d 次后仍被限流, operation: %s", len(c.retryDelays), operation)
			return zero, &InvocationFailedError{
				Operation: operation,
				Cause:     fmt.Errorf("重试 %d 次后仍被限流: %w", len(c.retryDelays), err),
			}
		}

		delay := c.retryDelays[attempt]
		log.Warnf("[InvokeClient] 被限流, operation: %s, 第 %d 次重试将在 %s 后进行", operation, attempt+1, delay)
		metrics.ModelInvocationRetriesTotal.WithLabelValues(operation).Inc()
		if err := c.sleep(ctx, delay); err != nil {
			return zero, &InvocationFailedError{Operation: operation, Cause: err}
		}
	}
}
