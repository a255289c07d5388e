package email

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

const defaultSendTimeout = 10 * time.Second

const (
	TypeTicket       = "ticket"
	TypeCancellation = "cancellation"
	TypeVerification = "verification"
)

type Message struct {
	Type            string
	ReservationCode string
	To              string
	Subject         string
	HTMLBody        string
}

// Sender delivers one message. Callers treat failures as non-fatal.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender picks the delivery path from config. publisher may be nil unless
// mode is "kafka".
func NewSender(cfg config.EmailConfig, kafkaCfg config.KafkaConfig, publisher Publisher, logger *logrus.Logger) Sender {
	switch cfg.Mode {
	case "smtp":
		return NewSMTPSender(cfg)
	case "kafka":
		return NewQueueSender(publisher, kafkaCfg.NotificationsTopic, kafkaCfg.PublishRetries, cfg.SendTimeout())
	default:
		return NewLogSender(logger)
	}
}

// SMTPSender delivers inline. Every attempt is bounded by the configured
// send timeout and by the caller's context, whichever ends first.
type SMTPSender struct {
	from    string
	timeout time.Duration
	send    func(ctx context.Context, msg *mail.Msg) error
}

func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	timeout := cfg.SendTimeout()
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTimeout(timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	return &SMTPSender{
		from:    cfg.From,
		timeout: timeout,
		send: func(ctx context.Context, msg *mail.Msg) error {
			client, err := mail.NewClient(cfg.SMTPHost, opts...)
			if err != nil {
				return fmt.Errorf("smtp client: %w", err)
			}
			return client.DialAndSendWithContext(ctx, msg)
		},
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("send email: empty recipient")
	}

	m, err := s.buildMsg(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.send(ctx, m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email to %s: %w", msg.To, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send email to %s: %w", msg.To, ctx.Err())
	}
}

func (s *SMTPSender) buildMsg(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return nil, fmt.Errorf("email sender %q: %w", s.from, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("email recipient %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	return m, nil
}

// LogSender only logs. Used in development.
type LogSender struct {
	logger *logrus.Logger
}

func NewLogSender(logger *logrus.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.WithFields(logrus.Fields{
		"to":               msg.To,
		"type":             msg.Type,
		"reservation_code": msg.ReservationCode,
		"subject":          msg.Subject,
	}).Info("Email send skipped (log mode)")
	return nil
}

type Publisher interface {
	PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error
}

// QueueSender hands messages to the email worker over Kafka.
type QueueSender struct {
	publisher Publisher
	topic     string
	retries   int
	timeout   time.Duration
}

// NewQueueSender bounds each Send, retries included, by timeout. A zero
// timeout leaves only the caller's context.
func NewQueueSender(publisher Publisher, topic string, retries int, timeout time.Duration) *QueueSender {
	return &QueueSender{publisher: publisher, topic: topic, retries: retries, timeout: timeout}
}

func (s *QueueSender) Send(ctx context.Context, msg Message) error {
	if s.publisher == nil {
		return fmt.Errorf("email queue is not configured")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	key := msg.ReservationCode
	if key == "" {
		key = msg.To
	}
	return s.publisher.PublishWithRetry(ctx, s.topic, key, kafka.EmailMessage{
		Type:            msg.Type,
		ReservationCode: msg.ReservationCode,
		To:              msg.To,
		Subject:         msg.Subject,
		HTMLBody:        msg.HTMLBody,
		CreatedAt:       time.Now().UTC(),
	}, s.retries)
}

// FromQueue converts a consumed record back into a Message.
func FromQueue(m kafka.EmailMessage) Message {
	return Message{
		Type:            m.Type,
		ReservationCode: m.ReservationCode,
		To:              m.To,
		Subject:         m.Subject,
		HTMLBody:        m.HTMLBody,
	}
}
