package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/formforge/formforge/app"
	"github.com/formforge/formforge/model"
	"github.com/formforge/formforge/routes"
	"github.com/formforge/formforge/store"
)

// loggedIn stands in for the oauth Authorize middleware.
func loggedIn(username string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), oauth.CredentialContext, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func adminRouter(forms *MockFormStore, subs *MockSubmissionStore, username string) http.Handler {
	a := app.App{Forms: forms, Submissions: subs}
	r := chi.NewRouter()
	r.Use(loggedIn(username))
	r.Post("/forms", routes.SaveForm(a))
	r.Get("/forms", routes.ListForms(a))
	r.Put("/forms/{id}", routes.UpdateForm(a))
	r.Delete("/forms/{id}", routes.DeleteForm(a))
	r.Post("/forms/{id}/publish", routes.PublishForm(a))
	return r
}

func TestSaveFormCreatesDraft(t *testing.T) {
	forms := new(MockFormStore)
	stored := model.FormDocument{
		ID:     "server-id",
		UserID: "admin",
		Title:  "Survey",
		Status: model.StatusDraft,
	}
	forms.On("Upsert", mock.Anything, mock.MatchedBy(func(doc model.FormDocument) bool {
		return doc.ID == "" && doc.UserID == "admin" &&
			doc.Title == "Survey" && doc.Status == model.StatusDraft
	})).Return(stored, nil).Once()
	router := adminRouter(forms, new(MockSubmissionStore), "admin")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/forms",
		strings.NewReader(`{"title":"Survey","description":"","content":[]}`))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body model.FormDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "server-id", body.ID)
	forms.AssertExpectations(t)
}

func TestSaveFormRejectsUnknownFieldType(t *testing.T) {
	router := adminRouter(new(MockFormStore), new(MockSubmissionStore), "admin")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/forms",
		strings.NewReader(`{"title":"T","content":[{"id":"1","type":"button"}]}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateFormReplacesWholesale(t *testing.T) {
	forms := new(MockFormStore)
	existing := model.FormDocument{
		ID:     "f1",
		UserID: "admin",
		Title:  "Old",
		Status: model.StatusDraft,
		Content: []model.FieldDefinition{
			{ID: "1", Type: model.FieldText, Label: "Old field", Order: 1},
		},
	}
	forms.On("Get", mock.Anything, "f1").Return(existing, nil).Once()
	forms.On("Upsert", mock.Anything, mock.MatchedBy(func(doc model.FormDocument) bool {
		return doc.ID == "f1" && doc.Title == "New" && len(doc.Content) == 1 &&
			doc.Content[0].Label == "New field"
	})).Return(existing, nil).Once()
	router := adminRouter(forms, new(MockSubmissionStore), "admin")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/forms/f1",
		strings.NewReader(`{"title":"New","content":[{"id":"1","type":"text","label":"New field","order":1}]}`))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	forms.AssertExpectations(t)
}

func TestUpdatePublishedFormConflicts(t *testing.T) {
	forms := new(MockFormStore)
	forms.On("Get", mock.Anything, "f1").Return(publishedForm(), nil).Once()
	router := adminRouter(forms, new(MockSubmissionStore), "admin")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/forms/f1", strings.NewReader(`{"title":"Hack"}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	forms.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestListFormsWithSubmissionCounts(t *testing.T) {
	forms := new(MockFormStore)
	forms.On("ListByOwner", mock.Anything, "admin").Return([]model.FormDocument{
		{ID: "f1", UserID: "admin", Title: "A"},
		{ID: "f2", UserID: "admin", Title: "B"},
	}, nil).Once()
	subs := new(MockSubmissionStore)
	subs.On("CountByForm", mock.Anything, "f1").Return(3, nil).Once()
	subs.On("CountByForm", mock.Anything, "f2").Return(0, nil).Once()
	router := adminRouter(forms, subs, "admin")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/forms", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Forms []struct {
			ID          string `json:"id"`
			Submissions int    `json:"submissions"`
		} `json:"forms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Forms, 2)
	assert.Equal(t, 3, body.Forms[0].Submissions)
	assert.Equal(t, 0, body.Forms[1].Submissions)
}

func TestPublishFormKeepsStatusAndFlagConsistent(t *testing.T) {
	forms := new(MockFormStore)
	draft := model.FormDocument{ID: "f1", UserID: "admin", Status: model.StatusDraft}
	forms.On("Get", mock.Anything, "f1").Return(draft, nil).Once()
	forms.On("Upsert", mock.Anything, mock.MatchedBy(func(doc model.FormDocument) bool {
		return doc.Status == model.StatusPublished && doc.Published
	})).Return(model.FormDocument{
		ID: "f1", Status: model.StatusPublished, Published: true,
	}, nil).Once()
	router := adminRouter(forms, new(MockSubmissionStore), "admin")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/forms/f1/publish", nil))

	require.Equal(t, http.StatusOK, w.Code)
	forms.AssertExpectations(t)
}

func TestDeleteForm(t *testing.T) {
	forms := new(MockFormStore)
	forms.On("Delete", mock.Anything, "f1").Return(nil).Once()
	router := adminRouter(forms, new(MockSubmissionStore), "admin")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/forms/f1", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDeleteFormMissing(t *testing.T) {
	forms := new(MockFormStore)
	forms.On("Delete", mock.Anything, "nope").Return(store.ErrNotFound).Once()
	router := adminRouter(forms, new(MockSubmissionStore), "admin")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/forms/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
