package descriptor

import (
	"context"
	"math/rand/v2"
)

type GetRandomDescriptorUseCase struct {
	reader Reader
	logger GetDescriptorsLogger
}

func NewGetRandomDescriptorUseCase(reader Reader, logger GetDescriptorsLogger) *GetRandomDescriptorUseCase {
	return &GetRandomDescriptorUseCase{
		reader: reader,
		logger: logger,
	}
}

func (uc *GetRandomDescriptorUseCase) Execute(ctx context.Context, protocol string) (Record, error) {
	records, _, err := uc.reader.GetRecords(ctx, Filter{Protocol: protocol})
	if err != nil {
		return Record{}, err
	}

	if len(records) == 0 {
		return Record{}, ErrNoDescriptorsAvailable
	}

	selected := records[rand.IntN(len(records))]
	uc.logger.Debug("selected random descriptor", "address", selected.Address, "protocol", selected.Protocol)

	return selected, nil
}
