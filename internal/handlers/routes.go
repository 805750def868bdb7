package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func RegisterRoutes(r *chi.Mux, userHandler *UserHandler, seminarHandler *SeminarHandler) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize Huma API
	config := huma.DefaultConfig("Waffle Seminar API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	api := humachi.New(r, config)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	secured := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"bearerAuth": {}}}
	}
	created := func(o *huma.Operation) {
		o.DefaultStatus = http.StatusCreated
	}
	securedCreated := func(o *huma.Operation) {
		secured(o)
		created(o)
	}

	// User routes
	huma.Post(api, "/user/", userHandler.HandleRegister, created)
	huma.Put(api, "/user/login/", userHandler.HandleLogin)
	huma.Get(api, "/user/me/", userHandler.HandleMe, secured)
	huma.Put(api, "/user/me/", userHandler.HandleUpdateMe, secured)
	huma.Get(api, "/user/{id}/", userHandler.HandleGetUser, secured)
	huma.Post(api, "/user/participant/", userHandler.HandleGrantParticipant, securedCreated)

	// Seminar routes
	huma.Post(api, "/seminar/", seminarHandler.HandleCreateSeminar, securedCreated)
	huma.Get(api, "/seminar/", seminarHandler.HandleListSeminars, secured)
	huma.Get(api, "/seminar/{id}/", seminarHandler.HandleGetSeminar, secured)
	huma.Put(api, "/seminar/{id}/", seminarHandler.HandleUpdateSeminar, secured)
	huma.Post(api, "/seminar/{id}/user/", seminarHandler.HandleEnroll, securedCreated)
	huma.Delete(api, "/seminar/{id}/user/", seminarHandler.HandleDrop, secured)
}
