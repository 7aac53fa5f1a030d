package services

import (
	"context"

	"stockledger/pkg/models"
)

// DocumentStore persists document collections.
//
// Implementations return errors instead of swallowing them; callers decide
// whether a failure is blocking or advisory.
type DocumentStore interface {
	// Name identifies the backend in logs.
	Name() string

	// LoadAll returns every stored document, in any order.
	LoadAll(ctx context.Context) ([]models.Document, error)

	// Upsert inserts or replaces the document with the same id.
	Upsert(ctx context.Context, doc models.Document) error

	// Delete removes the document with the given id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}

// CollectionStore is a local store that persists whole collections at once.
type CollectionStore interface {
	DocumentStore

	// SaveCollection replaces the stored contents of one collection.
	SaveCollection(ctx context.Context, docType models.DocumentType, docs []models.Document) error
}
