package core

import "errors"

var (
	// ErrInvalidUTF8 indicates a document is not valid UTF-8 text.
	ErrInvalidUTF8 = errors.New("document is not valid UTF-8")

	// ErrPartialRun indicates some documents or assets failed while the rest
	// of the run completed.
	ErrPartialRun = errors.New("run completed with failures")
)

// Stage names used in summaries.
const (
	StageEntities = "entities"
	StageImages   = "images"
	StageLinks    = "links"
	StageAssets   = "assets"
)
