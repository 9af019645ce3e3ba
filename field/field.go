// Package field maintains the ordered field list of a form under the
// structural edits the builder performs: append, remove, duplicate and
// drag-reorder. Every mutation returns a new list and renumbers Order to
// the 1-based position, so downstream consumers can trust Order without
// re-deriving it from array index.
package field

import (
	"sort"

	"github.com/gofrs/uuid"

	"github.com/formforge/formforge/model"
)

// List is an ordered sequence of field definitions. Methods never mutate
// the receiver; they return the resulting list.
type List []model.FieldDefinition

// NewID returns a fresh field id, unique across all lists.
func NewID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// Append adds def at the end with order set to the new length. An empty
// id is filled in with a generated one.
func (l List) Append(def model.FieldDefinition) List {
	if def.ID == "" {
		def.ID = NewID()
	}
	def.Order = len(l) + 1
	out := make(List, len(l), len(l)+1)
	copy(out, l)
	return append(out, def)
}

// Remove drops the field with the given id and renumbers the rest.
// Missing ids are a no-op.
func (l List) Remove(id string) List {
	out := make(List, 0, len(l))
	for _, f := range l {
		if f.ID != id {
			out = append(out, f)
		}
	}
	if len(out) == len(l) {
		return l
	}
	return out.Renumber()
}

// Duplicate clones the field with the given id under a fresh id and
// appends it at the end. Options and all other attributes are copied
// verbatim. Missing ids are a no-op.
func (l List) Duplicate(id string) List {
	f, ok := l.Find(id)
	if !ok {
		return l
	}
	clone := f
	clone.ID = NewID()
	if f.Options != nil {
		clone.Options = make([]string, len(f.Options))
		copy(clone.Options, f.Options)
	}
	return l.Append(clone)
}

// MoveBefore removes the dragged field and reinserts it at the position
// currently held by target, then renumbers. No-op when dragged == target
// or either id is absent.
func (l List) MoveBefore(draggedID, targetID string) List {
	if draggedID == targetID {
		return l
	}
	draggedIdx, targetIdx := -1, -1
	for i, f := range l {
		switch f.ID {
		case draggedID:
			draggedIdx = i
		case targetID:
			targetIdx = i
		}
	}
	if draggedIdx < 0 || targetIdx < 0 {
		return l
	}

	out := make(List, 0, len(l))
	out = append(out, l[:draggedIdx]...)
	out = append(out, l[draggedIdx+1:]...)

	dragged := l[draggedIdx]
	out = append(out, model.FieldDefinition{})
	copy(out[targetIdx+1:], out[targetIdx:])
	out[targetIdx] = dragged

	return out.Renumber()
}

// Renumber rewrites every Order to the 1-based list position.
func (l List) Renumber() List {
	out := make(List, len(l))
	for i, f := range l {
		f.Order = i + 1
		out[i] = f
	}
	return out
}

// Sorted returns the list in display order: ascending by Order, stable
// on ties. Idempotent.
func (l List) Sorted() List {
	out := make(List, len(l))
	copy(out, l)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// Find returns the field with the given id, if present.
func (l List) Find(id string) (model.FieldDefinition, bool) {
	for _, f := range l {
		if f.ID == id {
			return f, true
		}
	}
	return model.FieldDefinition{}, false
}
