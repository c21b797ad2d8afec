package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/okechi-dev/summarly/internal/config"
	"github.com/okechi-dev/summarly/internal/core"
	"github.com/okechi-dev/summarly/internal/core/errs"
	"github.com/okechi-dev/summarly/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	dsn := cfg.DatabaseURL
	if cfg.SslCertPath != "" {
		if _, err := os.Stat(cfg.SslCertPath); err != nil {
			return nil, fmt.Errorf("ssl cert not accessible at %q: %w", cfg.SslCertPath, err)
		}
		u, err := url.Parse(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		q := u.Query()
		q.Set("sslmode", "verify-ca")
		q.Set("sslrootcert", cfg.SslCertPath)
		u.RawQuery = q.Encode()
		dsn = u.String()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Implementing the db interface for user

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, COALESCE($4, now()), COALESCE($5, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Implementing the db interface for Summary

// CreateSummary validates, assigns id/created_at when unset, and inserts.
// Summaries are append-only; there is no update path.
func (c *DatabaseClient) CreateSummary(ctx context.Context, s *models.Summary) error {
	if s == nil {
		return errors.New("nil summary")
	}
	if s.OwnerID == "" {
		return errors.New("summary missing owner_id")
	}
	if !s.SourceType.Valid() {
		return fmt.Errorf("summary has invalid source_type %q", s.SourceType)
	}
	if s.SummaryText == "" {
		return errs.New(errs.EmptyInput, "refusing to store a blank summary")
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	const q = `
		INSERT INTO summaries (id, owner_id, title, source_type, summary_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := c.db.ExecContext(ctx, q,
		s.ID, s.OwnerID, s.Title, s.SourceType, s.SummaryText, s.CreatedAt)
	return err
}

// GetSummaryForOwner scopes by owner inside the query itself. A record
// belonging to another owner yields the same NotFound as a missing id.
func (c *DatabaseClient) GetSummaryForOwner(ctx context.Context, id, ownerID string) (*models.Summary, error) {
	const q = `
		SELECT id, owner_id, title, source_type, summary_text, created_at
		FROM summaries
		WHERE id = $1 AND owner_id = $2
	`
	var s models.Summary
	err := c.db.QueryRowContext(ctx, q, id, ownerID).Scan(
		&s.ID, &s.OwnerID, &s.Title, &s.SourceType, &s.SummaryText, &s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errs.New(errs.NotFound, "summary not found")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *DatabaseClient) ListSummariesForOwner(ctx context.Context, ownerID string) ([]models.SummaryListing, error) {
	const q = `
		SELECT id, title, source_type, created_at
		FROM summaries
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SummaryListing
	for rows.Next() {
		var l models.SummaryListing
		if err := rows.Scan(&l.ID, &l.Title, &l.SourceType, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Implementing the db interface for summary embeddings

func (c *DatabaseClient) InsertSummaryEmbedding(ctx context.Context, summaryID string, vec []float32) error {
	const q = `
		INSERT INTO summary_embeddings (summary_id, embedding)
		VALUES ($1, $2)
		ON CONFLICT (summary_id) DO NOTHING
	`
	_, err := c.db.ExecContext(ctx, q, summaryID, pgvector.NewVector(vec))
	return err
}

// SearchSummariesForOwner finds the owner's nearest summaries for a query
// embedding. Rows without an embedding (embed failed at ingest) simply
// never match.
func (c *DatabaseClient) SearchSummariesForOwner(ctx context.Context, ownerID string, queryVec []float32, limit int) ([]models.SummaryListing, error) {
	const q = `
		SELECT s.id, s.title, s.source_type, s.created_at
		FROM summaries s
		JOIN summary_embeddings e ON e.summary_id = s.id
		WHERE s.owner_id = $1
		ORDER BY e.embedding <-> $2
		LIMIT $3
	`
	rows, err := c.db.QueryContext(ctx, q, ownerID, pgvector.NewVector(queryVec), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SummaryListing
	for rows.Next() {
		var l models.SummaryListing
		if err := rows.Scan(&l.ID, &l.Title, &l.SourceType, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
