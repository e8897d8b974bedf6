package artifact

import "errors"

var ErrEmptyPath = errors.New("artifact path is empty")
