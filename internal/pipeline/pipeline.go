package pipeline

import (
	"context"
	"time"

	"github.com/JulianoL13/app-config-aggregator/internal/artifact"
	"github.com/JulianoL13/app-config-aggregator/internal/descriptor"
)

// ProbePolicy decides what happens to descriptors whose endpoint failed the
// reachability probe.
type ProbePolicy string

const (
	DropUnreachable     ProbePolicy = "drop"
	PenalizeUnreachable ProbePolicy = "penalize"
)

// SourceText is the body of one source. Err is set when the source could not
// be read; Text is empty then.
type SourceText struct {
	Name string
	Text string
	Err  error
}

type Source interface {
	Fetch(ctx context.Context) ([]SourceText, []error)
}

type ProbeOutcome struct {
	Reachable bool
	Latency   time.Duration
	Err       error
}

// Prober checks endpoints and reports outcomes keyed by Scored.Key.
type Prober interface {
	Check(ctx context.Context, items []descriptor.Scored) map[string]ProbeOutcome
}

type ArtifactStore interface {
	Read() (artifact.Sections, error)
	Write(s artifact.Sections, links []string) error
	WriteList(links []string) error
}

type Publisher interface {
	Publish(ctx context.Context, s descriptor.Snapshot) error
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Report summarizes one run. Counts refer to the stage they are named after.
type Report struct {
	RunID         string         `json:"run_id"`
	Sources       int            `json:"sources"`
	FailedSources int            `json:"failed_sources"`
	Extracted     int            `json:"extracted"`
	Decoded       int            `json:"decoded"`
	Rejected      int            `json:"rejected"`
	Unique        int            `json:"unique"`
	Unreachable   int            `json:"unreachable"`
	Selected      int            `json:"selected"`
	ByProtocol    map[string]int `json:"by_protocol"`
	Published     bool           `json:"published"`
	Duration      time.Duration  `json:"duration"`
}
