package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/formforge/formforge/app"
	"github.com/formforge/formforge/field"
	"github.com/formforge/formforge/fill"
	"github.com/formforge/formforge/httpx"
	"github.com/formforge/formforge/log"
	"github.com/formforge/formforge/model"
	"github.com/formforge/formforge/schema"
	"github.com/formforge/formforge/store"
)

type publicField struct {
	ID          string          `json:"id"`
	Type        model.FieldType `json:"type"`
	Label       string          `json:"label"`
	Placeholder string          `json:"placeholder"`
	Required    bool            `json:"required"`
	Order       int             `json:"order"`
	Options     []model.Option  `json:"options,omitempty"`
}

type publicForm struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Fields      []publicField  `json:"fields"`
	Defaults    map[string]any `json:"defaults"`
}

// loadPublished fetches a form for the fill-out surface. Unpublished
// forms are indistinguishable from missing ones.
func loadPublished(app app.App, w http.ResponseWriter, r *http.Request) (model.FormDocument, bool) {
	formId := chi.URLParam(r, "id")

	doc, err := app.Forms.Get(r.Context(), formId)
	if errors.Is(err, store.ErrNotFound) {
		httpx.LogNotFound(w, "get_public_form", formId)
		return doc, false
	}
	if err != nil {
		httpx.LogInternalError(w, "db.get_form", err)
		return doc, false
	}
	if !doc.Published || doc.Status != model.StatusPublished {
		httpx.LogNotFound(w, "get_public_form.unpublished", formId)
		return doc, false
	}
	return doc, true
}

// PublicGetForm serves a published form in display order, with options
// rendered as label/value pairs and the pristine answer defaults.
func PublicGetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := loadPublished(app, w, r)
		if !ok {
			return
		}

		sorted := field.List(doc.Content).Sorted()
		fields := make([]publicField, len(sorted))
		for i, f := range sorted {
			fields[i] = publicField{
				ID:          f.ID,
				Type:        f.Type,
				Label:       f.Label,
				Placeholder: f.Placeholder,
				Required:    f.Required,
				Order:       f.Order,
				Options:     f.RenderOptions(),
			}
		}

		render.JSON(w, r, publicForm{
			ID:          doc.ID,
			Title:       doc.Title,
			Description: doc.Description,
			Fields:      fields,
			Defaults:    schema.Compile(sorted).Defaults(),
		})
	}
}

type submitRequest struct {
	Answers map[string]any `json:"answers"`
}

// PublicSubmitForm validates a respondent's answers against the form's
// compiled schema. Every field is checked and every error reported at
// once; nothing is persisted unless all pass.
func PublicSubmitForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := loadPublished(app, w, r)
		if !ok {
			return
		}

		body := submitRequest{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		sub, fieldErrs, err := fill.Validate(r.Context(), doc, body.Answers, app.Submissions)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_submission", err)
			return
		}
		if fieldErrs != nil {
			log.Debugf("submit_form: %d invalid fields", len(fieldErrs))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, map[string]any{
				"errors": fieldErrs,
			})
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": sub.ID,
		})
	}
}
