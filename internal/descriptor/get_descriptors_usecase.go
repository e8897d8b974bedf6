package descriptor

import "context"

type GetDescriptorsLogger interface {
	Debug(msg string, args ...any)
}

type GetDescriptorsOutput struct {
	Records []Record
	Total   int
}

type GetDescriptorsUseCase struct {
	reader Reader
	logger GetDescriptorsLogger
}

func NewGetDescriptorsUseCase(reader Reader, logger GetDescriptorsLogger) *GetDescriptorsUseCase {
	return &GetDescriptorsUseCase{
		reader: reader,
		logger: logger,
	}
}

func (uc *GetDescriptorsUseCase) Execute(ctx context.Context, filter Filter) (GetDescriptorsOutput, error) {
	records, total, err := uc.reader.GetRecords(ctx, filter)
	if err != nil {
		return GetDescriptorsOutput{}, err
	}

	uc.logger.Debug("fetched descriptors", "count", len(records), "total", total, "protocol", filter.Protocol)

	return GetDescriptorsOutput{
		Records: records,
		Total:   total,
	}, nil
}
