package mocks

import (
	"context"

	"github.com/JulianoL13/app-config-aggregator/internal/verifier"
	"github.com/stretchr/testify/mock"
)

type Prober struct {
	mock.Mock
}

func NewProber(t interface {
	mock.TestingT
	Cleanup(func())
}) *Prober {
	m := &Prober{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Prober) Probe(ctx context.Context, target verifier.Target) verifier.ProbeOutput {
	args := m.Called(ctx, target)
	return args.Get(0).(verifier.ProbeOutput)
}

var _ verifier.Prober = (*Prober)(nil)
