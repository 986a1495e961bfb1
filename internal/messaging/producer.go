package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"progress-service/internal/attempt"
	"progress-service/internal/metrics"

	"github.com/nats-io/nats.go"
)

// HeaderAttemptID lets consumers dedupe redeliveries without decoding the body.
const HeaderAttemptID = "Attempt-Id"

type Producer struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewProducer(url string, subject string, logger *slog.Logger, m *metrics.Metrics) (*Producer, error) {
	nc, err := nats.Connect(url, nats.Name("progress-service"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	logger.Info("NATS producer initialized", "url", url, "subject", subject)

	return &Producer{
		conn:    nc,
		subject: subject,
		logger:  logger,
		metrics: m,
	}, nil
}

// PublishAttemptRecorded publishes a committed attempt on the configured subject.
func (p *Producer) PublishAttemptRecorded(ctx context.Context, event attempt.RecordedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal attempt event: %w", err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = data
	msg.Header.Set(HeaderAttemptID, strconv.FormatInt(event.AttemptID, 10))

	start := time.Now()
	err = p.conn.PublishMsg(msg)
	p.metrics.Publish().RecordPublish(ctx, "nats", p.subject, time.Since(start), err)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to send message to NATS", "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "attempt event sent to NATS", "subject", p.subject, "attempt_id", event.AttemptID)
	return nil
}

// Ping reports whether the connection is usable.
func (p *Producer) Ping(context.Context) error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats connection %s", p.conn.Status())
	}
	return nil
}

func (p *Producer) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}
