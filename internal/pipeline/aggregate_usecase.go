package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JulianoL13/app-config-aggregator/internal/descriptor"
	"github.com/google/uuid"
)

type Options struct {
	Remark    string
	MaxOutput int
	Policy    ProbePolicy
	// Penalty is subtracted from unreachable descriptors under
	// PenalizeUnreachable.
	Penalty int
}

type AggregateUseCase struct {
	source    Source
	decoder   *descriptor.Decoder
	scorer    descriptor.Scoring
	prober    Prober
	store     ArtifactStore
	publisher Publisher
	opts      Options
	logger    Logger
	now       func() time.Time
}

// NewAggregateUseCase wires one run. prober and publisher may be nil, which
// skips probing and publishing.
func NewAggregateUseCase(
	source Source,
	scorer descriptor.Scoring,
	prober Prober,
	store ArtifactStore,
	publisher Publisher,
	opts Options,
	logger Logger,
) *AggregateUseCase {
	if opts.Policy == "" {
		opts.Policy = DropUnreachable
	}
	return &AggregateUseCase{
		source:    source,
		decoder:   descriptor.NewDecoder(opts.Remark),
		scorer:    scorer,
		prober:    prober,
		store:     store,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Execute runs fetch, extract, decode, dedupe, probe, select and write once.
// Source, decode and probe failures are absorbed and counted; only a failure
// to persist the artifact or a cancelled context is returned as an error.
func (uc *AggregateUseCase) Execute(ctx context.Context) (Report, error) {
	start := uc.now()
	report := Report{RunID: uuid.NewString(), ByProtocol: map[string]int{}}
	logger := uc.logger

	logger.Info("starting aggregation run", "run_id", report.RunID)

	texts, errs := uc.source.Fetch(ctx)
	report.Sources = len(texts)
	report.FailedSources = len(errs)
	if len(errs) > 0 {
		logger.Warn("some sources failed", "failed", len(errs), "total", len(texts))
	}

	decoded := uc.decode(texts, &report)

	unique := descriptor.Dedupe(decoded, uc.scorer)
	report.Unique = len(unique)

	kept := uc.probe(ctx, unique, &report)
	selected := descriptor.Select(kept, uc.opts.MaxOutput)
	report.Selected = len(selected)
	for _, s := range selected {
		report.ByProtocol[s.Descriptor.Protocol.String()]++
	}

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run cancelled before write: %w", err)
	}

	if err := uc.write(selected); err != nil {
		return report, err
	}

	if len(selected) == 0 {
		logger.Warn("no descriptors survived, artifact written with empty body", "run_id", report.RunID)
	}

	if uc.publisher != nil {
		snapshot := descriptor.NewSnapshot(report.RunID, uc.now(), selected)
		if err := uc.publisher.Publish(ctx, snapshot); err != nil {
			logger.Warn("failed to publish snapshot", "run_id", report.RunID, "error", err)
		} else {
			report.Published = true
		}
	}

	report.Duration = uc.now().Sub(start)
	logger.Info("aggregation run complete",
		"run_id", report.RunID,
		"extracted", report.Extracted,
		"decoded", report.Decoded,
		"unique", report.Unique,
		"unreachable", report.Unreachable,
		"selected", report.Selected,
		"duration", report.Duration,
	)

	return report, nil
}

func (uc *AggregateUseCase) decode(texts []SourceText, report *Report) []descriptor.Descriptor {
	var decoded []descriptor.Descriptor

	for _, src := range texts {
		if src.Err != nil {
			continue
		}

		links := descriptor.Extract(src.Text)
		report.Extracted += len(links)

		for _, link := range links {
			d, err := uc.decoder.Decode(link)
			if err != nil {
				report.Rejected++
				uc.logger.Debug("rejected descriptor", "source", src.Name, "reason", rejectReason(err))
				continue
			}
			decoded = append(decoded, d)
		}
	}

	report.Decoded = len(decoded)
	return decoded
}

func (uc *AggregateUseCase) probe(ctx context.Context, unique []descriptor.Scored, report *Report) []descriptor.Scored {
	if uc.prober == nil || len(unique) == 0 {
		return unique
	}

	outcomes := uc.prober.Check(ctx, unique)

	kept := make([]descriptor.Scored, 0, len(unique))
	for _, item := range unique {
		if outcome, ok := outcomes[item.Key]; ok && outcome.Reachable {
			kept = append(kept, item)
			continue
		}

		report.Unreachable++
		if uc.opts.Policy == PenalizeUnreachable {
			kept = append(kept, item.WithScore(item.Score-uc.opts.Penalty))
		}
	}

	uc.logger.Info("probe finished", "checked", len(unique), "unreachable", report.Unreachable, "policy", string(uc.opts.Policy))
	return kept
}

func (uc *AggregateUseCase) write(selected []descriptor.Scored) error {
	sections, err := uc.store.Read()
	if err != nil {
		uc.logger.Warn("could not read previous artifact, using defaults", "error", err)
	}

	links := descriptor.Links(selected)
	if err := uc.store.Write(sections, links); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := uc.store.WriteList(links); err != nil {
		return fmt.Errorf("write list: %w", err)
	}
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, descriptor.ErrUnsupportedScheme):
		return "unsupported_scheme"
	case errors.Is(err, descriptor.ErrMissingHost):
		return "missing_host"
	case errors.Is(err, descriptor.ErrInvalidPort):
		return "invalid_port"
	default:
		return "malformed"
	}
}
