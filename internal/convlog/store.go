// Package convlog persists conversation transcripts and chat ratings.
package convlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/247convo/convo-backend/pkg/logging"
)

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Summary is a completed conversation transcript submitted by the widget at
// the end of a session.
type Summary struct {
	ClientID string
	Name     string
	Email    string
	ChatLog  string
}

// Rating is end-of-chat feedback. Score is nil when the visitor skipped the
// numeric rating; Context carries the last few turns as free-form JSON.
type Rating struct {
	ClientID string
	Name     string
	Email    string
	Score    *int
	Context  []any
}

// Store writes transcripts and ratings to Postgres.
type Store struct {
	db     db
	logger *logging.Logger
	now    func() time.Time
}

// NewStore creates a conversation log store.
func NewStore(db db, logger *logging.Logger) *Store {
	if db == nil {
		panic("convlog: db required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{db: db, logger: logger, now: time.Now}
}

// SaveSummary inserts the transcript into client_conversations.
func (s *Store) SaveSummary(ctx context.Context, sum Summary) error {
	query := `
		INSERT INTO client_conversations (client_id, name, email, chat_log, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.Exec(ctx, query, sum.ClientID, sum.Name, sum.Email, sum.ChatLog, s.now().UTC())
	if err != nil {
		return fmt.Errorf("convlog: save summary: %w", err)
	}
	s.logger.Info("conversation summary saved", "client_id", sum.ClientID)
	return nil
}

// SaveRating inserts the rating into chat_ratings. The context turns are
// stored as a JSONB document.
func (s *Store) SaveRating(ctx context.Context, r Rating) error {
	contextJSON, err := json.Marshal(r.Context)
	if err != nil {
		return fmt.Errorf("convlog: encode rating context: %w", err)
	}
	query := `
		INSERT INTO chat_ratings (client_id, name, email, score, context, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.Exec(ctx, query, r.ClientID, r.Name, r.Email, r.Score, contextJSON, s.now().UTC())
	if err != nil {
		return fmt.Errorf("convlog: save rating: %w", err)
	}
	s.logger.Info("chat rating saved", "client_id", r.ClientID)
	return nil
}
