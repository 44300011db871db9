package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidSourceItem indicates a SourceItem failed validation.
	ErrInvalidSourceItem = errors.New("invalid source item")

	// ErrInvalidIndexEntry indicates an IndexEntry failed validation.
	ErrInvalidIndexEntry = errors.New("invalid index entry")

	// ErrEmptyID indicates the Id field is empty.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrEmptyDocID indicates the DocId field is empty.
	ErrEmptyDocID = errors.New("doc id cannot be empty")

	// ErrEmptyVector indicates an index entry has no embedding.
	ErrEmptyVector = errors.New("vector cannot be empty")

	// ErrInvalidProbability indicates a probability outside [0,1].
	ErrInvalidProbability = errors.New("probability must be between 0 and 1")

	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrCorruptRecord indicates an encoded record could not be decoded.
	ErrCorruptRecord = errors.New("corrupt record")
)
