//go:build integration

package sender_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"sarkar/internal/notification/sender"
	"sarkar/pkg/testutil/containers"
)

func TestKafkaSenderIntegration(t *testing.T) {
	rp := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	const topic = "scheme-deadline-reminders-test"
	s, err := sender.NewKafkaSender(rp.Brokers, topic, nil, nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.EnsureTopic(ctx, 1, 1))
	// second call sees TopicAlreadyExists
	require.NoError(t, s.EnsureTopic(ctx, 1, 1))

	n, err := s.Send(ctx, []string{"tok-a", "tok-b"}, "Scheme Deadline Approaching", "PM Kisan deadline is near. Eligible for: You",
		map[string]string{"schemeId": "pm-kisan", "type": "DEADLINE_REMINDER"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	var got []sender.KafkaRecord
	for len(got) < 2 {
		fetches := consumer.PollFetches(ctx)
		require.NoError(t, ctx.Err())
		fetches.EachRecord(func(r *kgo.Record) {
			var rec sender.KafkaRecord
			require.NoError(t, json.Unmarshal(r.Value, &rec))
			assert.Equal(t, rec.Token, string(r.Key))
			got = append(got, rec)
		})
	}
	assert.Equal(t, "pm-kisan", got[0].Data["schemeId"])
}
