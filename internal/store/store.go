// Package store is the document-store client consumed by the repositories.
//
// A store holds schemaless documents grouped in named collections and keyed by
// string identifiers. Two implementations are provided:
//
//   - FirestoreClient: Google Cloud Firestore (production).
//   - SQLClient: a GORM-backed "documents" table with a JSON body, usable with
//     SQLite (local development and tests) or Postgres.
//
// Error semantics:
//   - Get returns ErrNotFound when the document does not exist.
//   - Delete of an absent document is not an error.
//   - Every other failure is returned as-is; callers wrap it as a store outage.
package store

import (
	"context"
	"errors"
	"regexp"
)

// ErrNotFound is returned by Get when the requested document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrInvalidField is returned by QueryByField when the field name is not a
// plain identifier.
var ErrInvalidField = errors.New("invalid field name")

// Client is the contract of a remote document database.
//
// Implementations must be safe for concurrent use.
type Client interface {
	// Get fetches a single document or returns ErrNotFound.
	Get(ctx context.Context, collection, id string) (*Document, error)
	// List returns every document of a collection.
	List(ctx context.Context, collection string) ([]*Document, error)
	// QueryByField returns the documents whose top-level field equals value.
	QueryByField(ctx context.Context, collection, field, value string) ([]*Document, error)
	// Set creates or fully replaces the document stored under id.
	Set(ctx context.Context, collection, id string, data any) error
	// Create stores data under a newly generated id and returns that id.
	Create(ctx context.Context, collection string, data any) (string, error)
	// Delete removes a document. Deleting an absent document succeeds.
	Delete(ctx context.Context, collection, id string) error
	// Close releases the underlying connection.
	Close() error
}

// Document is a fetched document. Its body is decoded lazily into a struct
// carrying json/firestore tags.
type Document struct {
	ID     string
	decode func(v any) error
}

// NewDocument builds a Document from an id and a decode function. Client
// implementations and test fakes use it.
func NewDocument(id string, decode func(v any) error) *Document {
	return &Document{ID: id, decode: decode}
}

// DataTo decodes the document body into v, which must be a pointer.
func (d *Document) DataTo(v any) error {
	if d == nil || d.decode == nil {
		return ErrNotFound
	}
	return d.decode(v)
}

var fieldRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validField reports whether name is safe to use as a query field.
func validField(name string) bool { return fieldRE.MatchString(name) }
