package normalize

import (
	"errors"
	"fmt"

	"cricket-analyzer/internal/model"
)

var (
	// ErrDocumentRead marks I/O or decode failures of a whole document
	ErrDocumentRead = errors.New("document read failed")
	// ErrExtraction marks failures deriving rows from a readable document
	ErrExtraction = errors.New("extraction failed")
	// ErrDuplicateMatch marks a document whose match_id was already processed
	ErrDuplicateMatch = errors.New("duplicate match id")
)

// Stage names the processing step a DocumentError occurred in
type Stage string

const (
	StageRead    Stage = "read"
	StageMatch   Stage = "match"
	StagePlayers Stage = "players"
	StageInnings Stage = "innings"
	StageDedupe  Stage = "dedupe"
)

// DocumentError is the diagnostic emitted when a document (or one stage of
// it) is skipped. It unwraps to one of the sentinels above and to the cause.
type DocumentError struct {
	Format  model.Format
	File    string
	MatchID string
	Stage   Stage
	Err     error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s/%s (match %s) stage %s: %v", e.Format, e.File, e.MatchID, e.Stage, e.Err)
}

func (e *DocumentError) Unwrap() []error {
	return []error{e.kind(), e.Err}
}

func (e *DocumentError) kind() error {
	switch e.Stage {
	case StageRead:
		return ErrDocumentRead
	case StageDedupe:
		return ErrDuplicateMatch
	default:
		return ErrExtraction
	}
}
