package app

import (
	"github.com/go-chi/oauth"

	"github.com/formforge/formforge/config"
	"github.com/formforge/formforge/store"
)

// App bundles the collaborators the route handlers depend on.
type App struct {
	Forms       store.FormStore
	Submissions store.SubmissionStore
	*oauth.BearerServer
	config.Config
}
