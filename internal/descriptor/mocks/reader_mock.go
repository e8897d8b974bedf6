package mocks

import (
	"context"

	"github.com/JulianoL13/app-config-aggregator/internal/descriptor"
	"github.com/stretchr/testify/mock"
)

type Reader struct {
	mock.Mock
}

func NewReader(t interface {
	mock.TestingT
	Cleanup(func())
}) *Reader {
	m := &Reader{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Reader) GetRecords(ctx context.Context, filter descriptor.Filter) ([]descriptor.Record, int, error) {
	args := m.Called(ctx, filter)
	records, _ := args.Get(0).([]descriptor.Record)
	return records, args.Int(1), args.Error(2)
}

var _ descriptor.Reader = (*Reader)(nil)
