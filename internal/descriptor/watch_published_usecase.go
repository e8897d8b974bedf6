package descriptor

import (
	"context"
	"encoding/json"

	"github.com/JulianoL13/app-config-aggregator/internal/common/events"
	"github.com/JulianoL13/app-config-aggregator/internal/common/queue"
)

type Consumer interface {
	Subscribe(ctx context.Context, topic, group, consumer string) (<-chan queue.Message, error)
	Ack(ctx context.Context, topic, group, msgID string) error
}

type Invalidator interface {
	Invalidate()
}

type WatchLogger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

const DefaultGroupReaders = "readers"

// WatchPublishedUseCase drops cached reads whenever a run announces a new
// snapshot.
type WatchPublishedUseCase struct {
	consumer Consumer
	cache    Invalidator
	logger   WatchLogger
	topic    string
	group    string
	id       string
}

func NewWatchPublishedUseCase(consumer Consumer, cache Invalidator, logger WatchLogger, topic, group, consumerID string) *WatchPublishedUseCase {
	if group == "" {
		group = DefaultGroupReaders
	}
	return &WatchPublishedUseCase{
		consumer: consumer,
		cache:    cache,
		logger:   logger,
		topic:    topic,
		group:    group,
		id:       consumerID,
	}
}

// Execute blocks until ctx is done or the subscription closes.
func (uc *WatchPublishedUseCase) Execute(ctx context.Context) error {
	uc.logger.Info("watching published snapshots", "topic", uc.topic, "group", uc.group, "consumer", uc.id)

	messages, err := uc.consumer.Subscribe(ctx, uc.topic, uc.group, uc.id)
	if err != nil {
		return err
	}

	for msg := range messages {
		var event events.ArtifactPublishedEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			uc.logger.Warn("failed to decode published event", "error", err, "msgID", msg.ID)
		} else {
			uc.logger.Info("snapshot published", "run_id", event.RunID, "count", event.Count)
		}

		uc.cache.Invalidate()

		if err := uc.consumer.Ack(ctx, uc.topic, uc.group, msg.ID); err != nil {
			uc.logger.Warn("failed to ack event", "error", err, "msgID", msg.ID)
		}
	}

	uc.logger.Info("watcher stopped")
	return nil
}
