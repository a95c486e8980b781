// Package pipeline 定义了画像向量重建任务的处理流程。
package pipeline

import (
	"context"
	"errors"

	"talent-match-go/internal/service"
	"talent-match-go/pkg/log"
	"talent-match-go/pkg/tasks"
)

// Processor 将 Kafka 中的画像向量任务交给 EmbeddingSyncService。
type Processor struct {
	syncer service.EmbeddingSyncService
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(syncer service.EmbeddingSyncService) *Processor {
	return &Processor{syncer: syncer}
}

// Process 为任务中的用户重建向量。用户已不存在时视为成功，避免任务被无意义地重试。
func (p *Processor) Process(ctx context.Context, task tasks.ProfileEmbeddingTask) error {
	log.Infof("[Processor] 开始处理画像向量任务, userID: %d, reason: %s", task.UserID, task.Reason)
	if task.UserID == 0 {
		log.Warnf("[Processor] 任务缺少 userID，丢弃")
		return nil
	}

	if err := p.syncer.EnsureEmbedding(ctx, task.UserID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			log.Warnf("[Processor] 用户 %d 不存在，丢弃任务", task.UserID)
			return nil
		}
		return err
	}
	return nil
}
