// Package warehouse is the application layer: it owns the document state,
// persists every change locally, replicates it to the optional remote store
// and exposes the inventory, reconciliation and payment views.
//
// Local persistence is authoritative. Remote writes happen after the local
// write and their failures are logged, never rolled back.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"stockledger/internal/extraction"
	"stockledger/internal/intake"
	"stockledger/internal/locale"
	"stockledger/internal/logger"
	"stockledger/internal/state"
	"stockledger/internal/store"
	"stockledger/pkg/models"
	"stockledger/pkg/services"
)

// Common warehouse errors
var (
	ErrNotFound          = errors.New("document not found")
	ErrWrongType         = errors.New("operation not supported for this document type")
	ErrNoExtractor       = errors.New("no extraction backend configured")
	ErrUnsupportedStatus = errors.New("unknown payment status")
)

// Options wires a Service.
type Options struct {
	// Local is required.
	Local services.CollectionStore

	// Remote is optional; nil runs in local-only mode.
	Remote services.DocumentStore

	// Extractor is only needed for file intake.
	Extractor extraction.Extractor

	Lang locale.Lang

	// Builder and Now default to the wall clock.
	Builder *intake.Builder
	Now     func() time.Time
}

// Service holds the current document state. Mutations are applied one at a
// time.
type Service struct {
	mu        sync.Mutex
	state     state.State
	local     services.CollectionStore
	remote    services.DocumentStore
	extractor extraction.Extractor
	builder   *intake.Builder
	lang      locale.Lang
	now       func() time.Time
	log       zerolog.Logger
}

// New creates a Service with an empty state. Call Load before use.
func New(opts Options) *Service {
	if opts.Builder == nil {
		opts.Builder = intake.NewBuilder()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Lang == "" {
		opts.Lang = locale.Italian
	}

	return &Service{
		state:     state.New(nil),
		local:     opts.Local,
		remote:    opts.Remote,
		extractor: opts.Extractor,
		builder:   opts.Builder,
		lang:      opts.Lang,
		now:       opts.Now,
		log:       logger.WithComponent("warehouse"),
	}
}

// Lang returns the interface language.
func (s *Service) Lang() locale.Lang {
	return s.lang
}

// Load reads the local collections and then merges the remote copy, if any.
// Only a local failure is returned.
func (s *Service) Load(ctx context.Context) error {
	const op = "Load"

	docs, err := s.local.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.state = state.New(docs)
	s.mu.Unlock()

	s.log.Info().
		Int("documents", len(docs)).
		Str("backend", s.local.Name()).
		Msg("Local state loaded")

	if _, err := s.Sync(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Sync pulls every remote document and merges it into the local state. It
// returns the number of remote documents seen. Remote failures are logged and
// leave the local state untouched; only a failed local save is returned.
func (s *Service) Sync(ctx context.Context) (int, error) {
	const op = "Sync"

	if s.remote == nil {
		return 0, nil
	}

	remoteDocs, err := s.remote.LoadAll(ctx)
	if err != nil {
		s.logRemoteFailure(err, "Remote fetch failed, keeping local state")
		return 0, nil
	}
	if len(remoteDocs) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Merge(remoteDocs)
	if err := s.commit(ctx, next, models.AllTypes...); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info().
		Int("remote_documents", len(remoteDocs)).
		Str("backend", s.remote.Name()).
		Msg("Remote documents merged")
	return len(remoteDocs), nil
}

// Documents returns one collection.
func (s *Service) Documents(t models.DocumentType) []models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Collection(t)
}

// Find returns the document with id.
func (s *Service) Find(id string) (models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.state.Find(id)
	if !ok {
		return models.Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return doc, nil
}

// all returns every document. Callers must hold mu.
func (s *Service) all() []models.Document {
	return s.state.All()
}

// commit writes the changed collections locally and swaps in next once all of
// them are saved. On failure the collections already written are restored
// from the current state and the current state is kept. Callers must hold mu.
func (s *Service) commit(ctx context.Context, next state.State, changed ...models.DocumentType) error {
	for i, t := range changed {
		if err := s.local.SaveCollection(ctx, t, next.Collection(t)); err != nil {
			s.restore(ctx, changed[:i])
			return err
		}
	}
	s.state = next
	return nil
}

// restore rewrites the given collections from the current state.
func (s *Service) restore(ctx context.Context, saved []models.DocumentType) {
	for _, t := range saved {
		if err := s.local.SaveCollection(ctx, t, s.state.Collection(t)); err != nil {
			s.log.Error().
				Err(err).
				Str("collection", string(t)).
				Str("backend", s.local.Name()).
				Msg("Failed to restore collection after save error")
		}
	}
}

// replicate upserts doc remotely. Failures are logged only.
func (s *Service) replicate(ctx context.Context, doc models.Document) {
	if s.remote == nil {
		return
	}
	if err := s.remote.Upsert(ctx, doc); err != nil {
		s.logRemoteFailure(err, "Remote upsert failed, local copy kept")
		return
	}
	s.log.Debug().Str("document_id", doc.ID).Msg("Document replicated")
}

// replicateDelete deletes id remotely. Failures are logged only.
func (s *Service) replicateDelete(ctx context.Context, id string) {
	if s.remote == nil {
		return
	}
	if err := s.remote.Delete(ctx, id); err != nil {
		s.logRemoteFailure(err, "Remote delete failed")
	}
}

func (s *Service) logRemoteFailure(err error, msg string) {
	ev := s.log.Warn()
	if !store.IsAdvisory(err) {
		ev = s.log.Error()
	}
	ev.Err(err).Str("backend", s.remote.Name()).Msg(msg)
}
