package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JulianoL13/app-config-aggregator/internal/common/events"
	"github.com/JulianoL13/app-config-aggregator/internal/descriptor"
	"github.com/JulianoL13/app-config-aggregator/internal/pipeline"
	"github.com/cenkalti/backoff/v4"
)

const defaultPublishRetries = 3

type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// SnapshotPublisher stores the snapshot, then announces it on topic. Both
// steps are retried with exponential backoff.
type SnapshotPublisher struct {
	writer     descriptor.Writer
	events     EventPublisher
	topic      string
	path       string
	newBackOff func() backoff.BackOff
}

func NewSnapshotPublisher(writer descriptor.Writer, bus EventPublisher, topic, artifactPath string) *SnapshotPublisher {
	return &SnapshotPublisher{
		writer: writer,
		events: bus,
		topic:  topic,
		path:   artifactPath,
		newBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), defaultPublishRetries)
		},
	}
}

// WithBackOff replaces the retry policy.
func (p *SnapshotPublisher) WithBackOff(newBackOff func() backoff.BackOff) *SnapshotPublisher {
	p.newBackOff = newBackOff
	return p
}

func (p *SnapshotPublisher) Publish(ctx context.Context, s descriptor.Snapshot) error {
	err := backoff.Retry(func() error {
		return p.writer.SaveSnapshot(ctx, s)
	}, backoff.WithContext(p.newBackOff(), ctx))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	if p.events == nil || p.topic == "" {
		return nil
	}

	event := events.ArtifactPublishedEvent{
		RunID:       s.RunID,
		PublishedAt: s.PublishedAt,
		Count:       len(s.Records),
		ByProtocol:  make(map[string]int),
		Path:        p.path,
	}
	for _, r := range s.Records {
		event.ByProtocol[r.Protocol]++
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = backoff.Retry(func() error {
		return p.events.Publish(ctx, p.topic, payload)
	}, backoff.WithContext(p.newBackOff(), ctx))
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

var _ pipeline.Publisher = (*SnapshotPublisher)(nil)
