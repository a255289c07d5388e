package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEmailMessage(t *testing.T) {
	msg, err := DecodeEmailMessage(kafka.Message{
		Value: []byte(`{"type":"ticket","reservation_code":"AB12CD34","to":"a@b.c","subject":"Ticket","html_body":"<p>hi</p>"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "ticket", msg.Type)
	assert.Equal(t, "AB12CD34", msg.ReservationCode)
	assert.Equal(t, "a@b.c", msg.To)

	_, err = DecodeEmailMessage(kafka.Message{Value: []byte(`{"subject":"x"}`)})
	assert.Error(t, err)

	_, err = DecodeEmailMessage(kafka.Message{Value: []byte(`not json`)})
	assert.Error(t, err)
}

func TestProducer_PublishWithRetryStopsOnCancelledContext(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p := NewProducer([]string{"127.0.0.1:1"}, logger)
	p.backoff = time.Hour
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := p.PublishWithRetry(ctx, "topic", "key", EmailMessage{To: "a@b.c"}, 3)
	assert.Error(t, err)
	assert.NotEmpty(t, hook.Entries)
}

func TestProducer_CheckConnectionWithoutBrokers(t *testing.T) {
	logger, _ := test.NewNullLogger()
	p := &Producer{logger: logger}
	assert.Error(t, p.CheckConnection(context.Background()))
	assert.NoError(t, p.Close())
}

type fakeReader struct {
	queue     []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.queue) == 0 {
		return kafka.Message{}, context.Canceled
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestConsumer_ConsumeEmailsCommitsEveryRecord(t *testing.T) {
	logger, hook := test.NewNullLogger()
	reader := &fakeReader{queue: []kafka.Message{
		{Offset: 1, Value: []byte(`{"type":"ticket","to":"a@b.c"}`)},
		{Offset: 2, Value: []byte(`garbage`)},
		{Offset: 3, Value: []byte(`{"type":"cancellation","to":"fail@b.c"}`)},
	}}
	c := &Consumer{reader: reader, logger: logger}

	var delivered []string
	err := c.ConsumeEmails(context.Background(), func(ctx context.Context, msg EmailMessage) error {
		if msg.To == "fail@b.c" {
			return assert.AnError
		}
		delivered = append(delivered, msg.Type)
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"ticket"}, delivered)
	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
	assert.Len(t, hook.Entries, 2)
}
