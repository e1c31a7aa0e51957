package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gw-transaction-batch/internal/models"

	"github.com/IBM/sarama"
)

type Producer interface {
	SendRunEvent(ctx context.Context, event models.RunEvent) error
	Close() error
}

type KafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	log      *slog.Logger
}

func NewKafkaProducer(brokers []string, topic string, log *slog.Logger) (Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("kafka producer создан", slog.String("topic", topic), slog.Any("brokers", brokers))

	return NewKafkaProducerFromSync(producer, topic, log), nil
}

func NewKafkaProducerFromSync(producer sarama.SyncProducer, topic string, log *slog.Logger) *KafkaProducer {
	return &KafkaProducer{
		producer: producer,
		topic:    topic,
		log:      log,
	}
}

var errIncompleteEvent = errors.New("run event without run_id or event_type")

// SendRunEvent публикует событие жизненного цикла запуска. Ключ run_id, все события одного
// запуска попадают в одну партицию и читаются в порядке отправки.
func (p *KafkaProducer) SendRunEvent(ctx context.Context, event models.RunEvent) error {
	const op = "kafka.SendRunEvent"

	if event.RunID == "" || event.EventType == "" {
		return fmt.Errorf("%s: %w", op, errIncompleteEvent)
	}

	msg, err := runEventMessage(p.topic, event)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, event.EventType, err)
	}

	type delivery struct {
		partition int32
		offset    int64
		err       error
	}

	deliveryCh := make(chan delivery, 1)
	go func() {
		partition, offset, err := p.producer.SendMessage(msg)
		deliveryCh <- delivery{partition, offset, err}
	}()

	log := p.log.With(slog.String("run_id", event.RunID), slog.String("event_type", event.EventType))

	select {
	case d := <-deliveryCh:
		if d.err != nil {
			log.Error("run event not delivered", slog.String("error", d.err.Error()))
			return fmt.Errorf("%s: %s for run %s: %w", op, event.EventType, event.RunID, d.err)
		}

		// промежуточные события шумные, итог запуска пишем на info
		level := slog.LevelDebug
		if isTerminal(event.EventType) {
			level = slog.LevelInfo
		}
		log.Log(ctx, level, "run event delivered",
			slog.String("status", string(event.Status)),
			slog.Int("partition", int(d.partition)),
			slog.Int64("offset", d.offset))
		return nil

	case <-ctx.Done():
		// отправка продолжится в фоне, результат уже никто не ждет
		log.Warn("run event delivery abandoned", slog.String("error", ctx.Err().Error()))
		return fmt.Errorf("%s: %s for run %s: %w", op, event.EventType, event.RunID, ctx.Err())
	}
}

func runEventMessage(topic string, event models.RunEvent) (*sarama.ProducerMessage, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal run event: %w", err)
	}

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(event.EventType)},
		{Key: []byte("run_status"), Value: []byte(event.Status)},
	}
	if event.JobName != "" {
		headers = append(headers, sarama.RecordHeader{Key: []byte("job_name"), Value: []byte(event.JobName)})
	}

	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(event.RunID),
		Value:   sarama.ByteEncoder(payload),
		Headers: headers,
	}
	if !event.OccurredAt.IsZero() {
		msg.Timestamp = event.OccurredAt
	}
	return msg, nil
}

func isTerminal(eventType string) bool {
	return eventType == models.EventRunCompleted || eventType == models.EventRunFailed
}

func (p *KafkaProducer) Close() error {
	if p.producer == nil {
		return nil
	}
	p.log.Info("закрытие kafka producer")
	return p.producer.Close()
}

type NoOpProducer struct {
	log *slog.Logger
}

func NewNoOpProducer(log *slog.Logger) Producer {
	return &NoOpProducer{log: log}
}

func (p *NoOpProducer) SendRunEvent(ctx context.Context, event models.RunEvent) error {
	p.log.Debug("kafka отключен, событие не отправлено",
		slog.String("run_id", event.RunID),
		slog.String("event_type", event.EventType))
	return nil
}

func (p *NoOpProducer) Close() error {
	return nil
}
