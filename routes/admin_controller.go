package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/formforge/formforge/app"
	"github.com/formforge/formforge/builder"
	"github.com/formforge/formforge/field"
	"github.com/formforge/formforge/httpx"
	"github.com/formforge/formforge/log"
	"github.com/formforge/formforge/model"
	"github.com/formforge/formforge/routes/middlewares"
	"github.com/formforge/formforge/store"
)

func currentUsername(r *http.Request) string {
	return middlewares.Username(r)
}

func sessionIdentity(r *http.Request) builder.Identity {
	username := currentUsername(r)
	return builder.IdentityFunc(func() (string, bool) {
		return username, username != ""
	})
}

// saveForm drives one builder save: load the addressed draft (when it
// exists), replace its state wholesale from the request body, persist,
// and answer with the stored document. Published forms reject edits.
func saveForm(app app.App, w http.ResponseWriter, r *http.Request, formId string) {
	body := model.FormDocument{}
	err := render.DecodeJSON(r.Body, &body)
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
		return
	}
	if formId != "" {
		body.ID = formId
	}
	for _, f := range body.Content {
		if !f.Type.Valid() {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.field_type", "unknown field type %q", f.Type)
			return
		}
	}

	session := builder.NewSession(app.Forms, sessionIdentity(r))
	if body.ID != "" {
		err = session.Load(r.Context(), body.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			// unmatched id: the save will create
			break
		case err != nil:
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}
	}
	if session.Published() {
		httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "form.published.immutable")
		return
	}

	session.SetTitle(body.Title)
	session.SetDescription(body.Description)
	session.SetFields(field.List(body.Content))

	doc, err := session.Save(r.Context())
	if err != nil {
		if errors.Is(err, builder.ErrNoUser) {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "form.save.no_user")
		} else {
			httpx.LogInternalError(w, "db.upsert_form", err)
		}
		return
	}

	render.JSON(w, r, doc)
}

func SaveForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saveForm(app, w, r, "")
	}
}

func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saveForm(app, w, r, chi.URLParam(r, "id"))
	}
}

type formListing struct {
	model.FormDocument
	Submissions int `json:"submissions"`
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := app.Forms.ListByOwner(r.Context(), currentUsername(r))
		if err != nil {
			httpx.LogInternalError(w, "db.get_forms", err)
			return
		}

		forms := make([]formListing, len(docs))
		for i, doc := range docs {
			count, err := app.Submissions.CountByForm(r.Context(), doc.ID)
			if err != nil {
				httpx.LogInternalError(w, "db.get_forms.count", err)
				return
			}
			forms[i] = formListing{doc, count}
		}

		render.JSON(w, r, map[string]any{
			"forms": forms,
		})
	}
}

func GetFormById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		doc, err := app.Forms.Get(r.Context(), formId)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "get_form", formId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}

		render.JSON(w, r, doc)
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		err := app.Forms.Delete(r.Context(), formId)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "delete_form", formId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.delete_form", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// PublishForm flips the form to PUBLISHED. Status and the redundant
// published flag change together here and nowhere else.
func PublishForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		doc, err := app.Forms.Get(r.Context(), formId)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "publish_form", formId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}

		doc.Status = model.StatusPublished
		doc.Published = true
		doc, err = app.Forms.Upsert(r.Context(), doc)
		if err != nil {
			httpx.LogInternalError(w, "db.publish_form", err)
			return
		}

		render.JSON(w, r, doc)
	}
}

func GetFormSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		_, err := app.Forms.Get(r.Context(), formId)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "get_submissions", formId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}

		submissions, err := app.Submissions.ListByForm(r.Context(), formId)
		if err != nil {
			httpx.LogInternalError(w, "db.get_submissions", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"submissions": submissions,
		})
	}
}
