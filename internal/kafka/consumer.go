package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// EmailHandler delivers one queued email. A returned error is logged and the
// record is still committed; delivery is best-effort.
type EmailHandler func(ctx context.Context, msg EmailMessage) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads the notifications topic within a consumer group and commits
// each offset only after its handler returned.
type Consumer struct {
	reader messageReader
	logger *logrus.Logger
}

func NewConsumer(brokers []string, groupID, topic string, logger *logrus.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
			StartOffset:       kafka.FirstOffset,
		}),
		logger: logger,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// ConsumeEmails blocks until ctx is done or the reader fails. Undecodable
// records are skipped.
func (c *Consumer) ConsumeEmails(ctx context.Context, handle EmailHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		entry := c.logger.WithFields(logrus.Fields{
			"partition": msg.Partition,
			"offset":    msg.Offset,
		})

		queued, err := DecodeEmailMessage(msg)
		if err != nil {
			entry.WithError(err).Error("Skipping undecodable email message")
		} else if err := handle(ctx, queued); err != nil {
			entry.WithError(err).WithFields(logrus.Fields{
				"type": queued.Type,
				"pnr":  queued.ReservationCode,
			}).Error("Failed to deliver email")
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

// DecodeEmailMessage parses a notifications topic record.
func DecodeEmailMessage(msg kafka.Message) (EmailMessage, error) {
	var m EmailMessage
	if err := json.Unmarshal(msg.Value, &m); err != nil {
		return EmailMessage{}, fmt.Errorf("decode email message: %w", err)
	}
	if m.To == "" {
		return EmailMessage{}, fmt.Errorf("decode email message: empty recipient")
	}
	return m, nil
}
