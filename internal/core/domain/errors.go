package domain

import "errors"

// ErrEmptyTitle is returned when a match run is requested for a track
// with no usable title. It is the only validation failure the engine
// surfaces; collaborator failures degrade to empty results instead.
var ErrEmptyTitle = errors.New("domain: empty track title")

// ErrNotFound indicates a cache lookup missed.
var ErrNotFound = errors.New("domain: not found")
