// Package store persists document collections. Local stores keep one JSON
// blob per collection; the remote store keeps one row per document.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"stockledger/internal/logger"
	"stockledger/pkg/models"
)

// blobs is a key-value byte store. ok is false for a missing key.
type blobs interface {
	get(ctx context.Context, key string) (data []byte, ok bool, err error)
	put(ctx context.Context, key string, data []byte) error
	close() error
}

// KVStore keeps every collection as one JSON array under the collection
// name. Writes replace the whole collection.
type KVStore struct {
	name  string
	blobs blobs
	mu    sync.Mutex
	log   zerolog.Logger
}

func newKVStore(name string, b blobs) *KVStore {
	return &KVStore{
		name:  name,
		blobs: b,
		log:   logger.WithComponent("store").With().Str("backend", name).Logger(),
	}
}

// Name implements services.DocumentStore.
func (s *KVStore) Name() string {
	return s.name
}

// LoadAll implements services.DocumentStore. Collections are returned in
// load order; documents keep their stored order.
func (s *KVStore) LoadAll(ctx context.Context) ([]models.Document, error) {
	const op = "LoadAll"

	s.mu.Lock()
	defer s.mu.Unlock()

	var all []models.Document
	for _, t := range models.AllTypes {
		docs, err := s.read(ctx, t)
		if err != nil {
			return nil, WrapStoreError(op, s.name, err, t.Collection())
		}
		all = append(all, docs...)
	}

	s.log.Debug().Int("documents", len(all)).Msg("Loaded local collections")
	return all, nil
}

// SaveCollection implements services.CollectionStore.
func (s *KVStore) SaveCollection(ctx context.Context, docType models.DocumentType, docs []models.Document) error {
	const op = "SaveCollection"

	if !docType.Valid() {
		return NewStoreError(op, s.name, ErrInvalidDocument, fmt.Sprintf("unknown type %q", docType))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return WrapStoreError(op, s.name, s.write(ctx, docType, docs), docType.Collection())
}

// Upsert implements services.DocumentStore. A new document is prepended to
// its collection.
func (s *KVStore) Upsert(ctx context.Context, doc models.Document) error {
	const op = "Upsert"

	if doc.ID == "" || !doc.Type.Valid() {
		return NewStoreError(op, s.name, ErrInvalidDocument, "document needs an id and a known type")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.read(ctx, doc.Type)
	if err != nil {
		return WrapStoreError(op, s.name, err, doc.Type.Collection())
	}

	replaced := false
	for i := range docs {
		if docs[i].ID == doc.ID {
			docs[i] = doc
			replaced = true
			break
		}
	}
	if !replaced {
		docs = append([]models.Document{doc}, docs...)
	}

	return WrapStoreError(op, s.name, s.write(ctx, doc.Type, docs), doc.Type.Collection())
}

// Delete implements services.DocumentStore.
func (s *KVStore) Delete(ctx context.Context, id string) error {
	const op = "Delete"

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range models.AllTypes {
		docs, err := s.read(ctx, t)
		if err != nil {
			return WrapStoreError(op, s.name, err, t.Collection())
		}
		for i := range docs {
			if docs[i].ID != id {
				continue
			}
			kept := append(docs[:i:i], docs[i+1:]...)
			return WrapStoreError(op, s.name, s.write(ctx, t, kept), t.Collection())
		}
	}
	return nil
}

// Close releases the underlying connection, if any.
func (s *KVStore) Close() error {
	return s.blobs.close()
}

func (s *KVStore) read(ctx context.Context, t models.DocumentType) ([]models.Document, error) {
	data, ok, err := s.blobs.get(ctx, t.Collection())
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return nil, nil
	}

	var docs []models.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	for i := range docs {
		// Older snapshots may predate the type field.
		if docs[i].Type == "" {
			docs[i].Type = t
		}
	}
	return docs, nil
}

func (s *KVStore) write(ctx context.Context, t models.DocumentType, docs []models.Document) error {
	if docs == nil {
		docs = []models.Document{}
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	return s.blobs.put(ctx, t.Collection(), data)
}
