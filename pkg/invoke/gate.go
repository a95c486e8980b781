package invoke

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMinInterval 是两次模型调用之间的最小间隔。
const DefaultMinInterval = time.Second

// Gate 是所有模型调用共享的限流闸门，Wait 返回后才允许发出一次调用。
type Gate interface {
	Wait(ctx context.Context) error
}

// IntervalGate 保证任意两次放行之间至少间隔 interval，并发调用方在闸门上串行排队。
type IntervalGate struct {
	limiter *rate.Limiter
}

// NewIntervalGate 创建一个最小间隔闸门。interval <= 0 时退化为不限流。
func NewIntervalGate(interval time.Duration) Gate {
	if interval <= 0 {
		return NoopGate{}
	}
	// burst 为 1：第一次立即放行，之后每次放行都与上一次相隔 interval。
	return &IntervalGate{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

func (g *IntervalGate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// NoopGate 立即放行，用于测试或离线工具。
type NoopGate struct{}

func (NoopGate) Wait(ctx context.Context) error {
	return ctx.Err()
}
