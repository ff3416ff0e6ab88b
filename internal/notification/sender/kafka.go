package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"sarkar/internal/notification/metrics"
)

// KafkaRecord is the value written for each device token. A downstream
// push gateway consumes the topic and talks to the platform push services.
type KafkaRecord struct {
	Token    string            `json:"token"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data"`
	QueuedAt time.Time         `json:"queuedAt"`
}

// KafkaSender writes one record per token, keyed by token so retries for a
// device stay ordered within a partition.
type KafkaSender struct {
	client  *kgo.Client
	topic   string
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewKafkaSender(brokers []string, topic string, logger *slog.Logger, m *metrics.Metrics) (*KafkaSender, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(10*time.Millisecond),
		kgo.RecordRetries(3),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaSender{client: client, topic: topic, logger: logger, metrics: m, now: time.Now}, nil
}

// EnsureTopic creates the topic when it does not exist yet.
func (s *KafkaSender) EnsureTopic(ctx context.Context, partitions int32, replication int16) error {
	adm := kadm.NewClient(s.client)
	resp, err := adm.CreateTopics(ctx, partitions, replication, nil, s.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", s.topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

func (s *KafkaSender) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error) {
	records := make([]*kgo.Record, 0, len(tokens))
	queuedAt := s.now().UTC()
	for _, token := range tokens {
		value, err := json.Marshal(KafkaRecord{Token: token, Title: title, Body: body, Data: data, QueuedAt: queuedAt})
		if err != nil {
			return 0, fmt.Errorf("encode record: %w", err)
		}
		records = append(records, &kgo.Record{Key: []byte(token), Value: value})
	}

	results := s.client.ProduceSync(ctx, records...)
	delivered := 0
	var lastErr error
	for _, r := range results {
		if r.Err != nil {
			lastErr = r.Err
			continue
		}
		delivered++
	}
	s.metrics.AddDeliveries("kafka", delivered, len(tokens)-delivered)
	if delivered == 0 && lastErr != nil {
		return 0, fmt.Errorf("produce to %s: %w", s.topic, lastErr)
	}
	if lastErr != nil {
		s.logger.WarnContext(ctx, "some push records were not produced",
			"scheme_id", data["schemeId"],
			"delivered", delivered,
			"tokens", len(tokens),
			"error", lastErr,
		)
	}
	return delivered, nil
}

func (s *KafkaSender) Close() {
	s.client.Close()
}
