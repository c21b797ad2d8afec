package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okechi-dev/summarly/internal/api/handlers"
	appMiddleware "github.com/okechi-dev/summarly/internal/api/middlewares"
	"github.com/okechi-dev/summarly/internal/config"
	"github.com/okechi-dev/summarly/internal/core"
	"github.com/okechi-dev/summarly/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, ing *services.IngestService, reader *services.SummaryService, deriver *services.ArtifactService) *Server {
	authHandler := handlers.NewAuthHandler(db)
	summaryHandler := handlers.NewSummaryHandler(ing, reader, deriver, int64(cfg.MaxInputBytes))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Summarization calls out to the model backend several times per
	// request, so the budget is generous.
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware)
			protected.Post("/pdf/summarize", summaryHandler.SummarizePDF)
			protected.Post("/youtube/summarize", summaryHandler.SummarizeYouTube)
			protected.Get("/summaries", summaryHandler.ListSummaries)
			protected.Get("/summaries/{id}", summaryHandler.GetSummary)
			protected.Get("/summaries/{id}/flashcards", summaryHandler.GetFlashcards)
			protected.Get("/summaries/{id}/mcqs", summaryHandler.GetMCQs)
			protected.Post("/summaries/search", summaryHandler.SearchSummaries)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
