// Package builder holds the editable, not-yet-persisted state of one
// form: title, description, the field list and the current property
// selection. Collaborators are injected, never ambient.
package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/formforge/formforge/field"
	"github.com/formforge/formforge/model"
	"github.com/formforge/formforge/store"
)

// ErrNoUser is returned by Save when no user identity is available.
var ErrNoUser = errors.New("no authenticated user")

// Identity resolves the current user, typically from the auth layer.
type Identity interface {
	UserID() (string, bool)
}

// IdentityFunc adapts a plain function to Identity.
type IdentityFunc func() (string, bool)

func (f IdentityFunc) UserID() (string, bool) { return f() }

// Session is one editing session over one form. It is not safe for
// concurrent use; the design assumes a single interactive editor.
type Session struct {
	forms    store.FormStore
	identity Identity

	id          string
	title       string
	description string
	status      model.FormStatus
	published   bool
	fields      field.List
	selected    string
}

func NewSession(forms store.FormStore, identity Identity) *Session {
	return &Session{forms: forms, identity: identity}
}

// Load fetches an existing draft and replaces the session state
// wholesale. In-progress edits are discarded: last load wins.
func (s *Session) Load(ctx context.Context, id string) error {
	doc, err := s.forms.Get(ctx, id)
	if err != nil {
		return err
	}
	s.id = doc.ID
	s.title = doc.Title
	s.description = doc.Description
	s.status = doc.Status
	s.published = doc.Published
	s.fields = field.List(doc.Content)
	s.selected = ""
	return nil
}

func (s *Session) SetTitle(title string) { s.title = title }

func (s *Session) SetDescription(desc string) { s.description = desc }

func (s *Session) Title() string { return s.title }

func (s *Session) Description() string { return s.description }

func (s *Session) Published() bool { return s.published }

func (s *Session) Status() model.FormStatus { return s.status }

// Fields returns the current field list in insertion order.
func (s *Session) Fields() field.List {
	return s.fields
}

// SetFields replaces the working field list wholesale, the same way
// Load does; the selection is cleared when it no longer resolves.
func (s *Session) SetFields(fields field.List) {
	s.fields = fields
	if _, ok := s.fields.Find(s.selected); !ok {
		s.selected = ""
	}
}

// AddField appends a new field of the given type and selects it. The
// label defaults to "New <Type>" and select/radio fields start with
// three placeholder options, as the builder palette does.
func (s *Session) AddField(typ model.FieldType, label string) model.FieldDefinition {
	if label == "" && typ != "" {
		label = "New " + strings.ToUpper(string(typ[:1])) + string(typ[1:])
	}
	def := model.FieldDefinition{
		ID:          field.NewID(),
		Type:        typ,
		Label:       label,
		Placeholder: fmt.Sprintf("Enter %s", typ),
	}
	if typ.HasOptions() {
		def.Options = []string{"Option 1", "Option 2", "Option 3"}
	}
	s.fields = s.fields.Append(def)
	s.selected = def.ID
	added, _ := s.fields.Find(def.ID)
	return added
}

// RemoveField deletes the field and clears the selection if it pointed
// at the removed field.
func (s *Session) RemoveField(id string) {
	s.fields = s.fields.Remove(id)
	if s.selected == id {
		s.selected = ""
	}
}

func (s *Session) DuplicateField(id string) {
	s.fields = s.fields.Duplicate(id)
}

func (s *Session) MoveFieldBefore(draggedID, targetID string) {
	s.fields = s.fields.MoveBefore(draggedID, targetID)
}

// SelectField sets the property-editing selection, clearing it when the
// id is absent or empty.
func (s *Session) SelectField(id string) {
	if _, ok := s.fields.Find(id); ok {
		s.selected = id
	} else {
		s.selected = ""
	}
}

// Selected returns the currently selected field, if any.
func (s *Session) Selected() (model.FieldDefinition, bool) {
	if s.selected == "" {
		return model.FieldDefinition{}, false
	}
	return s.fields.Find(s.selected)
}

// FieldPatch is a partial update of a field's editable attributes. Nil
// members are left untouched.
type FieldPatch struct {
	Type        *model.FieldType
	Label       *string
	Placeholder *string
	Required    *bool
	Order       *int
	Options     *[]string
}

// UpdateSelectedField applies a patch to the selected field. Changing
// type into select/radio synthesizes placeholder options when none are
// set; changing out of them drops the now-stale options.
func (s *Session) UpdateSelectedField(patch FieldPatch) {
	if s.selected == "" {
		return
	}
	out := make(field.List, len(s.fields))
	for i, f := range s.fields {
		if f.ID == s.selected {
			f = applyPatch(f, patch)
		}
		out[i] = f
	}
	s.fields = out
}

func applyPatch(f model.FieldDefinition, patch FieldPatch) model.FieldDefinition {
	if patch.Label != nil {
		f.Label = *patch.Label
	}
	if patch.Placeholder != nil {
		f.Placeholder = *patch.Placeholder
	}
	if patch.Required != nil {
		f.Required = *patch.Required
	}
	if patch.Order != nil {
		f.Order = *patch.Order
	}
	if patch.Options != nil {
		f.Options = *patch.Options
	}
	if patch.Type != nil && *patch.Type != f.Type {
		f.Type = *patch.Type
		if f.Type.HasOptions() {
			if len(f.Options) == 0 {
				f.Options = []string{"Option 1", "Option 2"}
			}
		} else {
			f.Options = nil
		}
	}
	return f
}

// Save packages the session into a form document, persists it, and
// rehydrates from the stored result so a server-assigned id becomes
// authoritative for subsequent saves.
func (s *Session) Save(ctx context.Context) (model.FormDocument, error) {
	userID, ok := s.identity.UserID()
	if !ok {
		return model.FormDocument{}, ErrNoUser
	}

	status := s.status
	if status == "" {
		status = model.StatusDraft
	}
	doc := model.FormDocument{
		ID:          s.id,
		UserID:      userID,
		Title:       s.title,
		Description: s.description,
		Status:      status,
		Published:   s.published,
		Content:     s.fields,
	}
	saved, err := s.forms.Upsert(ctx, doc)
	if err != nil {
		return model.FormDocument{}, err
	}

	s.id = saved.ID
	s.title = saved.Title
	s.description = saved.Description
	s.status = saved.Status
	s.published = saved.Published
	s.fields = field.List(saved.Content)
	return saved, nil
}
