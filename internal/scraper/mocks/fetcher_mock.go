package mocks

import (
	"context"

	"github.com/JulianoL13/app-config-aggregator/internal/scraper"
	"github.com/stretchr/testify/mock"
)

type Fetcher struct {
	mock.Mock
}

func NewFetcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *Fetcher {
	m := &Fetcher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Fetcher) Fetch(ctx context.Context, source scraper.Source) (string, error) {
	args := m.Called(ctx, source)
	return args.String(0), args.Error(1)
}

var _ scraper.Fetcher = (*Fetcher)(nil)
