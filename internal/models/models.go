package models

import (
	"time"
)

// SourceType identifies where a summary's material came from.
type SourceType string

const (
	SourcePDF     SourceType = "pdf"
	SourceYouTube SourceType = "youtube"
)

// Valid reports whether s is one of the known source types.
func (s SourceType) Valid() bool {
	return s == SourcePDF || s == SourceYouTube
}

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Summary is the persisted result of ingesting one source. The record is
// immutable once written; derived artifacts are recomputed from SummaryText
// on every request and never stored.
type Summary struct {
	ID          string     `db:"id" json:"id"`
	OwnerID     string     `db:"owner_id" json:"owner_id"`
	Title       string     `db:"title" json:"title"`
	SourceType  SourceType `db:"source_type" json:"source_type"`
	SummaryText string     `db:"summary_text" json:"summary_text"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// SummaryListing is the listing projection of a Summary. SummaryText is
// omitted to keep list payloads small.
type SummaryListing struct {
	ID         string     `db:"id" json:"id"`
	Title      string     `db:"title" json:"title"`
	SourceType SourceType `db:"source_type" json:"source_type"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// Flashcard is a transient front/back study card derived from a summary.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// MCQ is a transient multiple-choice question derived from a summary.
// Options are ordered and pairwise distinct; AnswerIndex points at the
// single correct option.
type MCQ struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answer_index"`
}
