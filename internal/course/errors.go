package course

import "errors"

// ErrNotFound marks an absent module, question set, certificate or user.
// Callers match it with errors.Is.
var ErrNotFound = errors.New("not found")
