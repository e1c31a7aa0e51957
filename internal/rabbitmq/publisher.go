package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"gw-transaction-batch/internal/models"

	"github.com/rabbitmq/amqp091-go"
)

type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type Publisher interface {
	Publish(ctx context.Context, n models.Notification) error
	Close() error
}

// AMQPPublisher отправляет уведомления в topic exchange, routing key = тип уведомления
type AMQPPublisher struct {
	conn     *amqp091.Connection
	channel  channel
	exchange string
	log      *slog.Logger
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	if !strings.HasSuffix(clean, "/") {
		clean += "/"
	}
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

func NewAMQPPublisher(amqpURL, exchange string, log *slog.Logger) (*AMQPPublisher, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("invalid rabbitmq url: %w", err)
	}

	conn, err := amqp091.Dial(cleanURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	p, err := newPublisher(ch, exchange, log)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn

	log.Info("rabbitmq publisher создан", slog.String("exchange", exchange))
	return p, nil
}

func newPublisher(ch channel, exchange string, log *slog.Logger) (*AMQPPublisher, error) {
	err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange %q: %w", exchange, err)
	}

	return &AMQPPublisher{
		channel:  ch,
		exchange: exchange,
		log:      log,
	}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, n models.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	routingKey := string(n.Type)
	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    n.RunID,
			Timestamp:    n.CreatedAt,
			Body:         body,
		})
	if err != nil {
		p.log.Error("rabbitmq publish failed",
			slog.String("routing_key", routingKey),
			slog.String("run_id", n.RunID),
			slog.String("error", err.Error()))
		return err
	}

	p.log.Debug("rabbitmq publish success",
		slog.String("exchange", p.exchange),
		slog.String("routing_key", routingKey))
	return nil
}

func (p *AMQPPublisher) Close() error {
	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil {
		p.log.Info("закрытие rabbitmq соединения")
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

type NoOpPublisher struct {
	log *slog.Logger
}

func NewNoOpPublisher(log *slog.Logger) Publisher {
	return &NoOpPublisher{log: log}
}

func (p *NoOpPublisher) Publish(ctx context.Context, n models.Notification) error {
	p.log.Info("rabbitmq отключен, уведомление не отправлено",
		slog.String("type", string(n.Type)),
		slog.String("subject", n.Subject))
	return nil
}

func (p *NoOpPublisher) Close() error {
	return nil
}
