// Package state holds the in-memory document collections. Every update
// returns a new State; existing values are never modified.
package state

import (
	"stockledger/internal/merge"
	"stockledger/pkg/models"
)

// State is an immutable snapshot of all document collections.
type State struct {
	collections map[models.DocumentType][]models.Document
}

// New builds a state from documents grouped by their type. Documents with an
// unknown type are dropped.
func New(docs []models.Document) State {
	s := State{collections: make(map[models.DocumentType][]models.Document, len(models.AllTypes))}
	for _, d := range docs {
		if !d.Type.Valid() {
			continue
		}
		s.collections[d.Type] = append(s.collections[d.Type], d)
	}
	return s
}

// Collection returns a copy of one collection.
func (s State) Collection(t models.DocumentType) []models.Document {
	src := s.collections[t]
	out := make([]models.Document, len(src))
	copy(out, src)
	return out
}

// All returns every document in collection load order.
func (s State) All() []models.Document {
	var out []models.Document
	for _, t := range models.AllTypes {
		out = append(out, s.collections[t]...)
	}
	return out
}

// Find looks a document up by id across all collections.
func (s State) Find(id string) (models.Document, bool) {
	for _, t := range models.AllTypes {
		for _, d := range s.collections[t] {
			if d.ID == id {
				return d, true
			}
		}
	}
	return models.Document{}, false
}

// with returns a shallow copy of s with one collection swapped.
func (s State) with(t models.DocumentType, docs []models.Document) State {
	next := State{collections: make(map[models.DocumentType][]models.Document, len(s.collections)+1)}
	for k, v := range s.collections {
		next.collections[k] = v
	}
	next.collections[t] = docs
	return next
}

// SetCollection replaces a whole collection.
func (s State) SetCollection(t models.DocumentType, docs []models.Document) State {
	cp := make([]models.Document, len(docs))
	copy(cp, docs)
	return s.with(t, cp)
}

// Add prepends doc to its collection.
func (s State) Add(doc models.Document) State {
	src := s.collections[doc.Type]
	docs := make([]models.Document, 0, len(src)+1)
	docs = append(docs, doc)
	docs = append(docs, src...)
	return s.with(doc.Type, docs)
}

// Replace swaps the document with the same id. ok is false when absent.
func (s State) Replace(doc models.Document) (next State, ok bool) {
	src := s.collections[doc.Type]
	for i, d := range src {
		if d.ID != doc.ID {
			continue
		}
		docs := make([]models.Document, len(src))
		copy(docs, src)
		docs[i] = doc
		return s.with(doc.Type, docs), true
	}
	return s, false
}

// Remove drops the document with id from whichever collection holds it.
func (s State) Remove(id string) (next State, removed models.Document, ok bool) {
	for _, t := range models.AllTypes {
		src := s.collections[t]
		for i, d := range src {
			if d.ID != id {
				continue
			}
			docs := make([]models.Document, 0, len(src)-1)
			docs = append(docs, src[:i]...)
			docs = append(docs, src[i+1:]...)
			return s.with(t, docs), d, true
		}
	}
	return s, models.Document{}, false
}

// RemoveWhere drops every document of type t matching pred and returns them.
func (s State) RemoveWhere(t models.DocumentType, pred func(models.Document) bool) (State, []models.Document) {
	src := s.collections[t]
	kept := make([]models.Document, 0, len(src))
	var removed []models.Document
	for _, d := range src {
		if pred(d) {
			removed = append(removed, d)
			continue
		}
		kept = append(kept, d)
	}
	if len(removed) == 0 {
		return s, nil
	}
	return s.with(t, kept), removed
}

// Merge folds remote documents into each collection.
func (s State) Merge(remote []models.Document) State {
	incoming := New(remote)
	next := s
	for _, t := range models.AllTypes {
		if len(incoming.collections[t]) == 0 {
			continue
		}
		next = next.with(t, merge.Merge(s.collections[t], incoming.collections[t]))
	}
	return next
}
