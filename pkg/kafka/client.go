// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"

	"talent-match-go/internal/config"
	"talent-match-go/pkg/invoke"
	"talent-match-go/pkg/log"
	"talent-match-go/pkg/tasks"
)

// TaskProcessor 处理单个画像向量任务，使消费者与具体的处理实现解耦。
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.ProfileEmbeddingTask) error
}

// Producer 发送画像向量任务。
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 初始化 Kafka 生产者。
func NewProducer(cfg config.KafkaConfig) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers(cfg)...),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{},
	}
	log.Info("Kafka 生产者初始化成功")
	return &Producer{writer: w}
}

// PublishProfileEmbedding 发送一个画像向量任务。
func (p *Producer) PublishProfileEmbedding(ctx context.Context, task tasks.ProfileEmbeddingTask) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(task.Key()),
		Value: taskBytes,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Consumer 消费画像向量任务。失败的任务在进程内退避重试，失败次数通过 Redis 计数，
// 达到上限后提交 offset 放弃该任务。
type Consumer struct {
	reader       *kafka.Reader
	processor    TaskProcessor
	redisClient  *redis.Client
	maxAttempts  int64
	retryBackoff time.Duration
	sleep        invoke.Sleeper
}

// NewConsumer 创建消费者。
func NewConsumer(cfg config.KafkaConfig, processor TaskProcessor, redisClient *redis.Client) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers(cfg),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	maxAttempts := int64(cfg.MaxAttempts)
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Consumer{
		reader:       r,
		processor:    processor,
		redisClient:  redisClient,
		maxAttempts:  maxAttempts,
		retryBackoff: time.Second,
		sleep:        invoke.SleepContext,
	}
}

// Run 阻塞消费直到 ctx 被取消。
func (c *Consumer) Run(ctx context.Context) {
	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", c.reader.Config().Topic)
	defer func() {
		if err := c.reader.Close(); err != nil {
			log.Errorf("关闭 Kafka 消费者失败: %v", err)
		}
	}()

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("Kafka 消费者已停止")
				return
			}
			log.Error("从 Kafka 读取消息失败", err)
			return
		}
		c.handle(ctx, m)
	}
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message) {
	var task tasks.ProfileEmbeddingTask
	if err := json.Unmarshal(m.Value, &task); err != nil {
		log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(m.Value))
		// 消息格式错误，直接提交，避免阻塞队列
		c.commit(ctx, m)
		return
	}

	attemptsKey := fmt.Sprintf("kafka:attempts:profile:%s", task.Key())
	for local := int64(1); ; local++ {
		err := c.processor.Process(ctx, task)
		if err == nil {
			log.Infof("画像向量任务处理成功: userID=%d", task.UserID)
			_ = c.redisClient.Del(ctx, attemptsKey).Err()
			c.commit(ctx, m)
			return
		}
		log.Errorf("处理画像向量任务失败: userID=%d, error: %v", task.UserID, err)

		// 计数放在 Redis 中，进程重启后重新投递的消息沿用之前的失败次数
		attempts, incErr := c.redisClient.Incr(ctx, attemptsKey).Result()
		if incErr != nil {
			log.Warnf("更新失败计数失败，使用本地计数: %v", incErr)
			attempts = local
		} else {
			_ = c.redisClient.Expire(ctx, attemptsKey, 24*time.Hour).Err()
		}
		if attempts >= c.maxAttempts {
			log.Errorf("画像向量任务多次失败(>=%d)，提交 offset 终止重试: userID=%d", c.maxAttempts, task.UserID)
			c.commit(ctx, m)
			return
		}
		if err := c.sleep(ctx, c.retryBackoff*time.Duration(attempts)); err != nil {
			// 停机中，不提交 offset，重启后重新投递
			return
		}
	}
}

func (c *Consumer) commit(ctx context.Context, m kafka.Message) {
	if err := c.reader.CommitMessages(ctx, m); err != nil {
		log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
	}
}

func brokers(cfg config.KafkaConfig) []string {
	parts := strings.Split(cfg.Brokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
