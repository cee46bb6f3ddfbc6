package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	v1 "github.com/madhava-poojari/educonnect-api/internal/api/v1"
	"github.com/madhava-poojari/educonnect-api/internal/config"
	"github.com/madhava-poojari/educonnect-api/internal/service"
	"github.com/madhava-poojari/educonnect-api/internal/store"
	"github.com/madhava-poojari/educonnect-api/internal/utils"
	"github.com/sirupsen/logrus"
)

type Server struct {
	cfg     *config.Config
	db      store.Repository
	storage utils.AvatarStorage
	log     *logrus.Logger
}

func NewServer(cfg *config.Config, db store.Repository, storage utils.AvatarStorage, log *logrus.Logger) *Server {
	return &Server{cfg: cfg, db: db, storage: storage, log: log}
}

// Handler builds the full router: middleware, CORS, the JSON API under
// /api and, for disk storage, the uploaded files under /uploads.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.log, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api := v1.NewAPI(v1.Deps{
		Config:  s.cfg,
		Store:   s.db,
		Storage: s.storage,
		Google:  service.NewGoogleAuthenticator(s.cfg),
		Log:     s.log,
	})
	r.Mount("/api", api.Routes())

	if fs, ok := s.storage.(*utils.FileStorage); ok {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(fs.BaseDir))))
	}
	return r
}

func (s *Server) NewHTTPServer() *http.Server {
	// the write timeout leaves room for REQUEST_TIMEOUT plus encoding
	write := s.cfg.RequestTimeout + 10*time.Second
	return &http.Server{
		Addr:              s.cfg.BindAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       60 * time.Second,
	}
}
