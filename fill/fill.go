// Package fill drives one respondent's submission attempt against a
// published form: compile the schema, validate every answer, and hand a
// fully validated answer map to the submission store.
package fill

import (
	"context"

	"github.com/formforge/formforge/field"
	"github.com/formforge/formforge/model"
	"github.com/formforge/formforge/schema"
	"github.com/formforge/formforge/store"
)

// State of one submission attempt.
type State int

const (
	Idle State = iota
	Validating
	Submitted
)

// Session collects and validates answers for one form. Not safe for
// concurrent use.
type Session struct {
	form        model.FormDocument
	submissions store.SubmissionStore

	schema  schema.Schema
	answers map[string]any
	errs    schema.Errors
	state   State
}

// NewSession compiles the form's fields (in display order) into a
// validation schema and seeds the answers with pristine defaults.
func NewSession(form model.FormDocument, submissions store.SubmissionStore) *Session {
	s := &Session{form: form, submissions: submissions}
	s.reset()
	return s
}

func (s *Session) reset() {
	sorted := field.List(s.form.Content).Sorted()
	s.schema = schema.Compile(sorted)
	s.answers = s.schema.Defaults()
	s.errs = nil
	s.state = Idle
}

func (s *Session) State() State { return s.state }

// Answers returns the current raw answer map.
func (s *Session) Answers() map[string]any { return s.answers }

// Errors returns the field errors of the last failed submit, nil
// otherwise.
func (s *Session) Errors() schema.Errors { return s.errs }

// Reset returns the session to the pristine default-valued state.
func (s *Session) Reset() {
	s.reset()
}

// SetAnswer records a raw answer. Unknown field ids are ignored by
// validation; already-entered values survive a failed submit. The first
// answer after a successful submit starts a fresh pristine attempt.
func (s *Session) SetAnswer(fieldID string, value any) {
	if s.state == Submitted {
		s.reset()
	}
	s.answers[fieldID] = value
}

// Submit validates every field, collecting all errors before reporting.
// On success the validated map is persisted as a new submission and the
// session moves to Submitted; on failure nothing is persisted and the
// session returns to Idle so the respondent can correct and retry.
func (s *Session) Submit(ctx context.Context) (model.Submission, error) {
	if s.state == Submitted {
		// resubmission starts from a pristine state
		s.reset()
	}
	s.state = Validating

	validated, errs := s.schema.Validate(s.answers)
	if errs != nil {
		s.errs = errs
		s.state = Idle
		return model.Submission{}, errs.Err()
	}

	sub, err := s.submissions.Create(ctx, s.form.ID, validated)
	if err != nil {
		// transport failure: answers are kept for a retry
		s.state = Idle
		return model.Submission{}, err
	}

	s.errs = nil
	s.state = Submitted
	return sub, nil
}

// Validate runs the one-shot path used by the HTTP handler: compile the
// form's schema, validate the raw answers, and persist on success.
func Validate(ctx context.Context, form model.FormDocument, answers map[string]any, submissions store.SubmissionStore) (model.Submission, schema.Errors, error) {
	sorted := field.List(form.Content).Sorted()
	compiled := schema.Compile(sorted)

	validated, errs := compiled.Validate(answers)
	if errs != nil {
		return model.Submission{}, errs, nil
	}

	sub, err := submissions.Create(ctx, form.ID, validated)
	if err != nil {
		return model.Submission{}, nil, err
	}
	return sub, nil, nil
}
