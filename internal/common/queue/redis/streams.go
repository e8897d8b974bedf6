package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JulianoL13/app-config-aggregator/internal/common/queue"
	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

const (
	payloadField = "payload"
	// pollInterval bounds each blocking read so cancellation is noticed.
	pollInterval = 2 * time.Second
)

type StreamsClient struct {
	client *redis.Client
	// maxLen bounds each stream approximately. Zero keeps every entry.
	maxLen int64
}

func NewStreamsClient(client *redis.Client, maxLen int64) *StreamsClient {
	return &StreamsClient{client: client, maxLen: maxLen}
}

func (s *StreamsClient) Publish(ctx context.Context, topic string, payload []byte) error {
	args := &redis.XAddArgs{
		Stream: topic,
		Values: map[string]any{payloadField: payload},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", topic, err)
	}
	return nil
}

// Subscribe joins group, creating it at the start of the stream when needed.
// Entries already delivered to consumer but never acked are replayed first,
// then new entries follow until ctx is done. Read errors are retried with
// exponential backoff.
func (s *StreamsClient) Subscribe(ctx context.Context, topic, group, consumer string) (<-chan queue.Message, error) {
	err := s.client.XGroupCreateMkStream(ctx, topic, group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("create group %s: %w", group, err)
	}

	messages := make(chan queue.Message)

	go func() {
		defer close(messages)

		retry := backoff.NewExponentialBackOff()
		retry.InitialInterval = 100 * time.Millisecond
		retry.MaxInterval = 5 * time.Second
		retry.MaxElapsedTime = 0

		cursor := "0"
		for ctx.Err() == nil {
			result, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    group,
				Consumer: consumer,
				Streams:  []string{topic, cursor},
				Count:    10,
				Block:    pollInterval,
			}).Result()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				select {
				case <-ctx.Done():
					return
				case <-time.After(retry.NextBackOff()):
				}
				continue
			}
			retry.Reset()

			seen, lastID := 0, ""
			for _, stream := range result {
				for _, msg := range stream.Messages {
					seen++
					lastID = msg.ID

					payload, ok := msg.Values[payloadField].(string)
					if !ok {
						continue
					}

					select {
					case <-ctx.Done():
						return
					case messages <- queue.Message{ID: msg.ID, Payload: []byte(payload)}:
					}
				}
			}

			// The pending backlog is drained once a history read comes back empty.
			if cursor != ">" {
				if seen == 0 {
					cursor = ">"
				} else {
					cursor = lastID
				}
			}
		}
	}()

	return messages, nil
}

func (s *StreamsClient) Ack(ctx context.Context, topic, group, msgID string) error {
	if err := s.client.XAck(ctx, topic, group, msgID).Err(); err != nil {
		return fmt.Errorf("xack %s: %w", msgID, err)
	}
	return nil
}

func (s *StreamsClient) Close() error {
	return nil
}

var (
	_ queue.Publisher = (*StreamsClient)(nil)
	_ queue.Consumer  = (*StreamsClient)(nil)
)
