// Package store defines the persistence collaborators the core depends
// on, plus their sqlite implementation.
package store

import (
	"context"
	"errors"

	"github.com/formforge/formforge/model"
)

// ErrNotFound is returned when the requested document does not exist.
var ErrNotFound = errors.New("not found")

// FormStore persists form documents. Upsert creates when the id is empty
// or unmatched and otherwise replaces title, description, content and
// status wholesale; there are no partial/merge semantics.
type FormStore interface {
	Get(ctx context.Context, id string) (model.FormDocument, error)
	Upsert(ctx context.Context, doc model.FormDocument) (model.FormDocument, error)
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, userID string) ([]model.FormDocument, error)
}

// SubmissionStore records validated answer sets. Submissions are written
// once and never mutated.
type SubmissionStore interface {
	Create(ctx context.Context, formID string, answers map[string]any) (model.Submission, error)
	ListByForm(ctx context.Context, formID string) ([]model.Submission, error)
	CountByForm(ctx context.Context, formID string) (int, error)
}
