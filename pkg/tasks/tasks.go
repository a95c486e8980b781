// Package tasks 定义了通过 Kafka 传递的任务结构。
package tasks

import (
	"strconv"
	"time"
)

// ReasonProfileUpdated 表示画像编辑触发的向量重建。
const ReasonProfileUpdated = "profile_updated"

// ProfileEmbeddingTask 请求为某位用户重建画像向量。
type ProfileEmbeddingTask struct {
	UserID      uint      `json:"user_id"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// Key 用作 Kafka 消息键和失败计数键，同一用户的任务落在同一分区。
func (t ProfileEmbeddingTask) Key() string {
	return strconv.FormatUint(uint64(t.UserID), 10)
}
