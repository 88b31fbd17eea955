package domain

import "errors"

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrClauseNotFound   = errors.New("clause not found")
	ErrNoClauses        = errors.New("no clauses could be extracted from the document")
	ErrEmptyDocument    = errors.New("document text is empty")
)
