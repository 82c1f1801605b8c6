package models

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid arguments")

	// ErrCycle is returned when a category reparent would make the
	// category an ancestor of itself.
	ErrCycle = errors.New("category cycle")

	// ErrMediaNotFound is surfaced to the playback layer when a video's
	// local file is gone. The catalog record is left intact.
	ErrMediaNotFound = errors.New("media file not found")
)
