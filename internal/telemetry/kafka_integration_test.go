//go:build integration

package telemetry_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"facesign/internal/telemetry"
	"facesign/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redpanda = mgr.GetRedpanda(s.T())
}

func (s *KafkaPublisherSuite) TestPublishRoundTrip() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const topic = "facesign-telemetry-roundtrip"

	publisher, err := telemetry.NewKafkaPublisher(ctx, s.redpanda.Brokers, topic)
	s.Require().NoError(err)
	defer publisher.Close()

	event := telemetry.Event{
		Name:      "resolve-new-user",
		Payload:   map[string]any{"group": "users", "identifier": "user-1"},
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
	}
	s.Require().NoError(publisher.Publish(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().NoError(fetches.Err())

	records := fetches.Records()
	s.Require().Len(records, 1)
	s.Equal("resolve-new-user", string(records[0].Key))

	var decoded telemetry.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &decoded))
	s.Equal(event.Name, decoded.Name)
	s.Equal("user-1", decoded.Payload["identifier"])
}

func (s *KafkaPublisherSuite) TestTopicCreationIsIdempotent() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const topic = "facesign-telemetry-idempotent"

	first, err := telemetry.NewKafkaPublisher(ctx, s.redpanda.Brokers, topic)
	s.Require().NoError(err)
	first.Close()

	second, err := telemetry.NewKafkaPublisher(ctx, s.redpanda.Brokers, topic)
	s.Require().NoError(err)
	second.Close()
}
