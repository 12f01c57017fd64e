package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"
	"procurement-backend/lib/metrics"
	dbmodels "procurement-backend/models/db"
)

// Publisher hands workflow events to the outside world.
// Failures are logged by the caller and never roll back a committed change.
type Publisher interface {
	Publish(ctx context.Context, prID, prNumber string, events []dbmodels.AuditEntry) error
	Close()
}

var Instance Publisher = NewLogPublisher()

type Message struct {
	PRID     string              `json:"pr_id"`
	PRNumber string              `json:"pr_number"`
	Entry    dbmodels.AuditEntry `json:"entry"`
}

func encode(prID, prNumber string, entry dbmodels.AuditEntry) ([]byte, error) {
	body, err := json.Marshal(Message{PRID: prID, PRNumber: prNumber, Entry: entry})
	if err != nil {
		return nil, errors.Wrap(err, "error encoding workflow event")
	}
	return body, nil
}

// PublishAll publishes and records the outcome; errors end up in the log only.
func PublishAll(ctx context.Context, publisher Publisher, prID, prNumber string, events []dbmodels.AuditEntry) {
	if len(events) == 0 {
		return
	}
	err := publisher.Publish(ctx, prID, prNumber, events)
	metrics.Instance.IncrementPublished(err == nil)
	if err != nil {
		log.
			WithField("pr_id", prID).
			WithError(err).
			Error("error publishing workflow events")
	}
}

type kafkaImpl struct {
	client *kgo.Client
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) (Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.ProduceRequestTimeout(10*time.Second),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating kafka client")
	}
	return &kafkaImpl{
		client: client,
		topic:  topic,
	}, nil
}

func (i kafkaImpl) Publish(ctx context.Context, prID, prNumber string, events []dbmodels.AuditEntry) error {
	records := make([]*kgo.Record, 0, len(events))
	for _, entry := range events {
		body, err := encode(prID, prNumber, entry)
		if err != nil {
			return err
		}
		records = append(records, &kgo.Record{
			Topic: i.topic,
			Key:   []byte(prID),
			Value: body,
		})
	}
	if err := i.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return errors.Wrap(err, "error producing workflow events")
	}
	return nil
}

func (i kafkaImpl) Close() {
	i.client.Close()
}

type logImpl struct{}

func NewLogPublisher() Publisher {
	return logImpl{}
}

func (logImpl) Publish(ctx context.Context, prID, prNumber string, events []dbmodels.AuditEntry) error {
	for _, entry := range events {
		log.
			WithField("pr_id", prID).
			WithField("pr_number", prNumber).
			WithField("action", entry.Action).
			WithField("performed_by", entry.PerformedBy).
			Info(entry.Details)
	}
	return nil
}

func (logImpl) Close() {}

type multiImpl []Publisher

// NewMultiPublisher hands every batch to each publisher in turn and reports the first failure.
func NewMultiPublisher(publishers ...Publisher) Publisher {
	return multiImpl(publishers)
}

func (m multiImpl) Publish(ctx context.Context, prID, prNumber string, events []dbmodels.AuditEntry) error {
	var first error
	for _, publisher := range m {
		if err := publisher.Publish(ctx, prID, prNumber, events); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m multiImpl) Close() {
	for _, publisher := range m {
		publisher.Close()
	}
}
