package knowledge

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/247convo/convo-backend/pkg/logging"
)

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository lists a tenant's knowledge rows.
type Repository interface {
	ListRows(ctx context.Context, clientID string) ([]Row, error)
}

// Writer inserts new knowledge rows (used by the upload tool).
type Writer interface {
	InsertRow(ctx context.Context, clientID string, row Row) error
}

// PostgresRepository reads the client_knowledge_base table.
type PostgresRepository struct {
	db     db
	logger *logging.Logger
}

// NewPostgresRepository creates a Postgres-backed knowledge repository.
func NewPostgresRepository(db db, logger *logging.Logger) *PostgresRepository {
	if db == nil {
		panic("knowledge: db required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PostgresRepository{db: db, logger: logger}
}

// ListRows returns every knowledge row for the client, in insertion order.
func (r *PostgresRepository) ListRows(ctx context.Context, clientID string) ([]Row, error) {
	query := `
		SELECT content, embedding
		FROM client_knowledge_base
		WHERE client_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("knowledge: list rows: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.Content, &row.Embedding); err != nil {
			return nil, fmt.Errorf("knowledge: scan row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("knowledge: iterate rows: %w", err)
	}
	return out, nil
}

// InsertRow stores a new knowledge fact for the client.
func (r *PostgresRepository) InsertRow(ctx context.Context, clientID string, row Row) error {
	query := `
		INSERT INTO client_knowledge_base (client_id, content, embedding)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.Exec(ctx, query, clientID, row.Content, row.Embedding); err != nil {
		return fmt.Errorf("knowledge: insert row: %w", err)
	}
	return nil
}
