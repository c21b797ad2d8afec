// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/okechi-dev/summarly/internal/config"
	"github.com/okechi-dev/summarly/internal/core/artifacts"
	db "github.com/okechi-dev/summarly/internal/core/database"
	"github.com/okechi-dev/summarly/internal/core/extract"
	"github.com/okechi-dev/summarly/internal/core/llm"
	objectclient "github.com/okechi-dev/summarly/internal/core/object-client"
	"github.com/okechi-dev/summarly/internal/core/retry"
	"github.com/okechi-dev/summarly/internal/core/summarize"
	"github.com/okechi-dev/summarly/internal/services"
)

type App struct {
	DBClient *db.DatabaseClient
	LLM      *llm.GeminiLLM
	Embedder *llm.GeminiEmbedder
	Server   *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	geminiEmbedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the llm, %w", err)
	}

	callTimeout := time.Duration(cfg.UpstreamTimeoutSecs) * time.Second
	policy := retry.DefaultPolicy()
	policy.MaxRetries = cfg.MaxRetries

	extractor := extract.NewExtractor(&http.Client{Timeout: 30 * time.Second})

	engine := summarize.NewEngine(llmProvider, summarize.Config{
		ChunkTokens:   cfg.ChunkTokens,
		MaxInputBytes: cfg.MaxInputBytes,
		MinWords:      cfg.SummaryMinWords,
		MaxWords:      cfg.SummaryMaxWords,
		CallTimeout:   callTimeout,
		Retry:         policy,
	})

	generator := artifacts.NewGenerator(llmProvider, artifacts.Config{
		DefaultCount: cfg.DefaultArtifactCount,
		MaxCount:     cfg.MaxArtifactCount,
		MinViable:    cfg.MinViableArtifacts,
		CallTimeout:  callTimeout,
		Retry:        policy,
	})

	ingestSvc := services.NewIngestService(dbClient, objClient, extractor, engine, geminiEmbedder, cfg.BucketName)
	summarySvc := services.NewSummaryService(dbClient, geminiEmbedder)
	artifactSvc := services.NewArtifactService(dbClient, generator)

	server := NewServer(cfg, dbClient, ingestSvc, summarySvc, artifactSvc)

	return &App{
		DBClient: dbClient.(*db.DatabaseClient),
		LLM:      llmProvider,
		Embedder: geminiEmbedder,
		Server:   server,
	}, nil
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
}
