package descriptor

import (
	"context"
	"time"
)

// Record is the stored form of one selected descriptor.
type Record struct {
	Rank     int    `json:"rank"`
	Score    int    `json:"score"`
	Protocol string `json:"protocol"`
	Address  string `json:"address"`
	Link     string `json:"link"`
}

// Snapshot is the selection of one run, in rank order.
type Snapshot struct {
	RunID       string
	PublishedAt time.Time
	Records     []Record
}

// Meta describes the stored snapshot without its records.
type Meta struct {
	RunID       string    `json:"run_id"`
	PublishedAt time.Time `json:"published_at"`
	Count       int       `json:"count"`
}

func NewSnapshot(runID string, at time.Time, items []Scored) Snapshot {
	records := make([]Record, len(items))
	for i, item := range items {
		records[i] = Record{
			Rank:     i + 1,
			Score:    item.Score,
			Protocol: item.Descriptor.Protocol.String(),
			Address:  item.Descriptor.Endpoint.Address(),
			Link:     item.Descriptor.Link,
		}
	}
	return Snapshot{RunID: runID, PublishedAt: at, Records: records}
}

// Filter narrows a record query. An empty Protocol matches all; Limit <= 0
// means no cap.
type Filter struct {
	Protocol string
	Limit    int
}

type Reader interface {
	GetRecords(ctx context.Context, filter Filter) ([]Record, int, error)
}

type MetaReader interface {
	GetMeta(ctx context.Context) (Meta, error)
}

type Writer interface {
	SaveSnapshot(ctx context.Context, s Snapshot) error
}
