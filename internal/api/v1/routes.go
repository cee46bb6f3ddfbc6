package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/madhava-poojari/educonnect-api/internal/auth"
	"github.com/madhava-poojari/educonnect-api/internal/config"
	"github.com/madhava-poojari/educonnect-api/internal/models"
	"github.com/madhava-poojari/educonnect-api/internal/service"
	"github.com/madhava-poojari/educonnect-api/internal/store"
	"github.com/madhava-poojari/educonnect-api/internal/utils"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators the API is built from.
type Deps struct {
	Config  *config.Config
	Store   store.Repository
	Storage utils.AvatarStorage
	Google  service.GoogleAuthenticator
	Log     logrus.FieldLogger
}

type API struct {
	cfg    *config.Config
	router *chi.Mux
	store  store.Repository
	log    logrus.FieldLogger

	auth       *service.AuthService
	requests   *service.RequestService
	tutors     *service.TutorService
	dashboards *service.DashboardService
}

func NewAPI(d Deps) *API {
	a := &API{
		cfg:    d.Config,
		router: chi.NewRouter(),
		store:  d.Store,
		log:    d.Log,
	}
	a.auth = service.NewAuthService(d.Config, d.Store, d.Google, d.Log)
	a.requests = service.NewRequestService(d.Store, d.Store, d.Log, d.Config.RequestTimeout, d.Config.SubmitDelay)
	a.tutors = service.NewTutorService(d.Store, d.Storage, d.Log)
	a.dashboards = service.NewDashboardService(a.auth, a.requests, a.tutors)
	a.routes()
	return a
}

func (a *API) Routes() *chi.Mux {
	return a.router
}

func (a *API) routes() {
	authH := NewAuthHandler(a.cfg, a.auth, a.log)
	tutorH := NewTutorHandler(a.tutors, a.log)
	requestH := NewRequestHandler(a.requests, a.log)
	dashH := NewDashboardHandler(a.dashboards, a.log)

	tutorOnly := auth.RequireRole(models.RoleTutor)
	studentOnly := auth.RequireRole(models.RoleStudent)

	r := a.router
	r.Use(auth.Authenticate(a.cfg, a.store, a.log))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authH.Login)
		r.Post("/register", authH.Register)
		r.Post("/logout", authH.Logout)
		r.Post("/refresh", authH.Refresh)
		r.Post("/google", authH.GoogleSignIn)
		r.With(auth.RequireUser).Get("/me", authH.Me)
	})

	r.Get("/catalog", CatalogHandler)

	r.Route("/tutors", func(r chi.Router) {
		r.Get("/", tutorH.List)
		r.Group(func(r chi.Router) {
			r.Use(tutorOnly)
			r.Put("/me", tutorH.UpdateMe)
			r.Post("/me/avatar", tutorH.UploadAvatar)
			r.Delete("/me/avatar", tutorH.DeleteAvatar)
		})
		r.Get("/{id}", tutorH.Get)
	})

	r.Route("/requests", func(r chi.Router) {
		r.With(studentOnly).Post("/", requestH.Create)
		r.With(auth.RequireUser).Get("/", requestH.List)
		r.With(tutorOnly).Post("/{id}/accept", requestH.Accept)
		r.With(tutorOnly).Post("/{id}/reject", requestH.Reject)
	})

	r.Route("/dashboard", func(r chi.Router) {
		r.With(studentOnly).Get("/student", dashH.Student)
		r.With(tutorOnly).Get("/tutor", dashH.Tutor)
	})

	r.Get("/health", HealthHandler(a.store))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSONResponse(w, http.StatusNotFound, false, "not found", nil, nil)
	})
}
