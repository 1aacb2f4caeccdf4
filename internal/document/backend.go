// Package document stores whole collections as single JSON documents.
//
// A Backend knows nothing about the records inside a document: it reads and
// overwrites opaque bytes. The file backend is the default; memory, postgres
// and redis backends are interchangeable with it.
package document

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Read when the document has never been written.
var ErrNotExist = errors.New("document does not exist")

// Backend is the durable location of one collection.
type Backend interface {
	// Name identifies the document in logs and errors.
	Name() string
	// Exists reports whether the document has been written at least once.
	Exists(ctx context.Context) (bool, error)
	// Read returns the whole document. Returns ErrNotExist if it is missing.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces the whole document.
	Write(ctx context.Context, data []byte) error
}
