package adapters

import (
	"context"

	"github.com/JulianoL13/app-config-aggregator/internal/descriptor"
	"github.com/JulianoL13/app-config-aggregator/internal/pipeline"
	"github.com/JulianoL13/app-config-aggregator/internal/verifier"
)

type ProbeAdapter struct {
	usecase *verifier.ProbeUseCase
}

func NewProbeAdapter(uc *verifier.ProbeUseCase) *ProbeAdapter {
	return &ProbeAdapter{usecase: uc}
}

func (a *ProbeAdapter) Check(ctx context.Context, items []descriptor.Scored) map[string]pipeline.ProbeOutcome {
	targets := make([]verifier.Target, len(items))
	for i, item := range items {
		targets[i] = verifier.Target{
			Key:    item.Key,
			Host:   item.Descriptor.Endpoint.Host,
			Port:   item.Descriptor.Endpoint.Port,
			Method: ProbeMethod(item.Descriptor.Protocol),
		}
	}

	results := a.usecase.Execute(ctx, targets)

	outcomes := make(map[string]pipeline.ProbeOutcome, len(results))
	for key, r := range results {
		outcomes[key] = pipeline.ProbeOutcome{
			Reachable: r.Reachable,
			Latency:   r.Latency,
			Err:       r.Error,
		}
	}

	return outcomes
}

// ProbeMethod picks DNS resolution for protocols carried over UDP, where a
// TCP connect says nothing about the server.
func ProbeMethod(p descriptor.Protocol) verifier.Method {
	switch p {
	case descriptor.Hysteria2, descriptor.Hysteria, descriptor.TUIC:
		return verifier.MethodDNS
	default:
		return verifier.MethodTCP
	}
}

var _ pipeline.Prober = (*ProbeAdapter)(nil)
