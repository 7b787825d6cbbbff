package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Xushengqwer/blog_service/config"
	"github.com/Xushengqwer/blog_service/models/events"
)

// KafkaProducer Kafka 消息生产者
type KafkaProducer struct {
	writer *kafka.Writer
	logger *core.ZapLogger
	topics config.Topics
}

// NewKafkaProducer 创建一个新的 Kafka 生产者实例
func NewKafkaProducer(config config.KafkaConfig, logger *core.ZapLogger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(config.Brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaProducer{
		writer: writer,
		logger: logger,
		topics: config.Topics,
	}
}

// SendEvent 发送事件到指定 Kafka 主题
func (p *KafkaProducer) SendEvent(ctx context.Context, topic string, event interface{}) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.Error(err), zap.String("topic", topic))
		return err
	}

	p.logger.Debug("Sending Kafka message",
		zap.String("topic", topic),
		zap.ByteString("payload", eventBytes))

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Value: eventBytes,
	})

	if err != nil {
		p.logger.Error("Failed to write Kafka message", zap.Error(err), zap.String("topic", topic))
	} else {
		p.logger.Info("Successfully sent Kafka message", zap.String("topic", topic))
	}
	return err
}

// SendPostPublishedEvent 发送帖子发布事件到 Kafka
// - 意图: 帖子状态首次变为 published 时通知下游（搜索索引、推送等）
// - 输入: ctx context.Context 上下文, postData events.PostEventData 帖子核心数据
// - 输出: error 错误信息
func (p *KafkaProducer) SendPostPublishedEvent(ctx context.Context, postData events.PostEventData) error {
	event := events.PostPublishedEvent{
		EventID:   uuid.New().String(),
		Timestamp: time.Now(),
		Post:      postData,
	}

	return p.SendEvent(ctx, p.topics.PostPublished, event)
}

// SendPostDeleteEvent 发送帖子删除事件到 Kafka
// - 意图: 帖子被硬删除后通知下游清理缓存与索引
// - 输入: ctx context.Context 上下文, postID uint64 帖子ID
// - 输出: error 错误信息
func (p *KafkaProducer) SendPostDeleteEvent(ctx context.Context, postID uint64) error {
	event := events.PostDeletedEvent{
		EventID:   uuid.New().String(),
		Timestamp: time.Now(),
		PostID:    postID,
	}

	return p.SendEvent(ctx, p.topics.PostDeleted, event)
}

// Close 关闭底层 writer，释放连接。
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
