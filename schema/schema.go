// Package schema compiles a form's field list into a runtime validation
// schema: one rule per field id, dispatched on field type. The schema is
// rebuilt wholesale whenever the field list changes; it is never patched
// incrementally.
package schema

import (
	"fmt"
	"regexp"

	"github.com/hashicorp/go-multierror"

	"github.com/formforge/formforge/model"
)

var reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+\-'^!]+@[A-Za-z0-9.\-]+\.[A-Za-z-]{2,20}$`)

// Rule validates the answer of one field.
type Rule struct {
	FieldID  string
	Label    string
	Type     model.FieldType
	Required bool
}

// Schema is a closed mapping from field id to validation rule: exactly
// one rule per field in the compiled list, nothing else.
type Schema struct {
	rules map[string]Rule
	order []string
}

// Compile derives the validation schema from a field list. Fields are
// visited in the order given; callers wanting display order sort first.
func Compile(fields []model.FieldDefinition) Schema {
	s := Schema{
		rules: make(map[string]Rule, len(fields)),
		order: make([]string, 0, len(fields)),
	}
	for _, f := range fields {
		if _, seen := s.rules[f.ID]; !seen {
			s.order = append(s.order, f.ID)
		}
		s.rules[f.ID] = Rule{
			FieldID:  f.ID,
			Label:    f.Label,
			Type:     f.Type,
			Required: f.Required,
		}
	}
	return s
}

// Rule returns the rule for the given field id, if the schema has one.
func (s Schema) Rule(fieldID string) (Rule, bool) {
	r, ok := s.rules[fieldID]
	return r, ok
}

func (s Schema) Len() int {
	return len(s.order)
}

// Defaults returns the pristine answer map: false for checkboxes, empty
// string for everything else.
func (s Schema) Defaults() map[string]any {
	answers := make(map[string]any, len(s.order))
	for _, id := range s.order {
		if s.rules[id].Type == model.FieldCheckbox {
			answers[id] = false
		} else {
			answers[id] = ""
		}
	}
	return answers
}

// Errors maps field ids to human-readable validation messages.
type Errors map[string]string

// Err folds the per-field messages into a single error, or nil when the
// map is empty.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	var merr *multierror.Error
	for id, msg := range e {
		merr = multierror.Append(merr, fmt.Errorf("%s: %s", id, msg))
	}
	return merr.ErrorOrNil()
}

// Validate checks a raw answer map against every rule, collecting every
// failure before reporting. Absent keys are treated as the field's
// default value. On success it returns a complete answer map with one
// coerced entry per rule; on failure the map is nil.
func (s Schema) Validate(raw map[string]any) (map[string]any, Errors) {
	validated := make(map[string]any, len(s.order))
	errs := Errors{}

	for _, id := range s.order {
		rule := s.rules[id]
		value, err := rule.check(raw[id])
		if err != "" {
			errs[id] = err
			continue
		}
		validated[id] = value
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return validated, nil
}

// check coerces one raw answer to the rule's expected shape and returns
// the validation message, empty on success.
func (r Rule) check(raw any) (any, string) {
	if r.Type == model.FieldCheckbox {
		checked, ok := raw.(bool)
		if raw != nil && !ok {
			return nil, fmt.Sprintf("%s is invalid", r.Label)
		}
		if r.Required && !checked {
			return nil, fmt.Sprintf("%s must be checked", r.Label)
		}
		return checked, ""
	}

	value, ok := raw.(string)
	if raw != nil && !ok {
		return nil, fmt.Sprintf("%s is invalid", r.Label)
	}

	if value == "" {
		if r.Required {
			return nil, fmt.Sprintf("%s is required", r.Label)
		}
		return value, ""
	}

	// The number rule stops at non-emptiness on purpose: numeric parsing
	// is not enforced, matching the shipped behavior.
	if r.Type == model.FieldEmail && !reEmail.MatchString(value) {
		return nil, "Invalid email address"
	}
	return value, ""
}
