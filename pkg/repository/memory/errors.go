package memory

import "github.com/secmon-lab/polyconn/pkg/domain/model"

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = model.ErrNotFound
