package adapters

import (
	"context"

	"github.com/JulianoL13/app-config-aggregator/internal/pipeline"
	"github.com/JulianoL13/app-config-aggregator/internal/scraper"
)

type SourceAdapter struct {
	usecase *scraper.FetchSourcesUseCase
}

func NewSourceAdapter(uc *scraper.FetchSourcesUseCase) *SourceAdapter {
	return &SourceAdapter{usecase: uc}
}

func (a *SourceAdapter) Fetch(ctx context.Context) ([]pipeline.SourceText, []error) {
	results, errs := a.usecase.Execute(ctx)

	texts := make([]pipeline.SourceText, len(results))
	for i, r := range results {
		texts[i] = pipeline.SourceText{
			Name: r.Source.Name,
			Text: r.Text,
			Err:  r.Err,
		}
	}

	return texts, errs
}

var _ pipeline.Source = (*SourceAdapter)(nil)
