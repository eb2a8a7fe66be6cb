package types

import "errors"

// Sentinel errors returned by services and repositories. Handlers map
// these onto HTTP status codes with errors.Is.
var ErrNotFound = errors.New("requested item not found")
var ErrConflict = errors.New("item already exists or conflict")
var ErrUnauthenticated = errors.New("authentication required or invalid credentials")
var ErrForbidden = errors.New("action forbidden")
var ErrValidation = errors.New("invalid input provided")
var ErrUploadFailed = errors.New("object store upload failed")
