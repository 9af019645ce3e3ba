package model

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var reWhitespace = regexp.MustCompile(`\s+`)

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldNumber   FieldType = "number"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldRadio    FieldType = "radio"
	FieldDate     FieldType = "date"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldEmail, FieldNumber, FieldTextarea,
		FieldSelect, FieldCheckbox, FieldRadio, FieldDate:
		return true
	}
	return false
}

// HasOptions reports whether fields of this type carry an options list.
func (t FieldType) HasOptions() bool {
	return t == FieldSelect || t == FieldRadio
}

// FieldDefinition describes one input of a form. ID is assigned once at
// creation and never reassigned: it keys the validation schema, answer
// maps and the builder UI alike.
type FieldDefinition struct {
	ID          string    `json:"id"`
	Type        FieldType `json:"type"`
	Label       string    `json:"label"`
	Placeholder string    `json:"placeholder"`
	Required    bool      `json:"required"`
	Order       int       `json:"order"`
	Options     []string  `json:"options,omitempty"`
}

// Option is one selectable choice of a select/radio field, rendered as a
// display label plus its normalized value.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// RenderOptions maps the raw option labels to label/value pairs. Distinct
// labels may normalize to the same value; that ambiguity is accepted here.
func (f FieldDefinition) RenderOptions() []Option {
	if !f.Type.HasOptions() {
		return nil
	}
	opts := make([]Option, len(f.Options))
	for i, label := range f.Options {
		value := NormalizeOption(label)
		if value == "" {
			value = "option-" + strconv.Itoa(i)
		}
		opts[i] = Option{Label: label, Value: value}
	}
	return opts
}

// NormalizeOption lower-cases a label and replaces every whitespace run
// with a single hyphen. Leading and trailing runs become hyphens too;
// the value is not trimmed.
func NormalizeOption(label string) string {
	return reWhitespace.ReplaceAllString(strings.ToLower(label), "-")
}

type FormStatus string

const (
	StatusDraft     FormStatus = "DRAFT"
	StatusPublished FormStatus = "PUBLISHED"
	StatusArchived  FormStatus = "archived"
)

// FormDocument is the persisted unit: title, description, publication
// state and the ordered field list. Published is redundant with Status;
// the two are kept consistent by whoever mutates status.
type FormDocument struct {
	ID          string            `json:"id,omitempty"`
	UserID      string            `json:"userId"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      FormStatus        `json:"status"`
	Published   bool              `json:"published"`
	Content     []FieldDefinition `json:"content"`
	CreatedAt   time.Time         `json:"createdAt,omitempty"`
	UpdatedAt   time.Time         `json:"updatedAt,omitempty"`
}

// Submission is one respondent's answer set, keyed by field id. It
// references its form but does not own it.
type Submission struct {
	ID        string         `json:"id"`
	FormID    string         `json:"formId"`
	Answers   map[string]any `json:"answers"`
	CreatedAt time.Time      `json:"createdAt"`
}
