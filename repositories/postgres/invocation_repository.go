package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agentkit/agentctl/models"
	"github.com/agentkit/agentctl/repositories"
)

// InvocationRepository persists tool invocations to PostgreSQL
type InvocationRepository struct {
	db *sql.DB
}

// NewInvocationRepository creates a new PostgreSQL invocation repository
func NewInvocationRepository(db *sql.DB) repositories.InvocationRepository {
	return &InvocationRepository{db: db}
}

// Insert stores a single invocation record
func (r *InvocationRepository) Insert(ctx context.Context, inv *models.Invocation) error {
	query := `
		INSERT INTO invocations (
			id, tool, provider, model, engine,
			prompt_chars, status, error_message, latency_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		inv.ID,
		inv.Tool,
		inv.Provider,
		inv.Model,
		inv.Engine,
		inv.PromptChars,
		inv.Status,
		inv.ErrorMessage,
		inv.LatencyMs,
		inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invocation: %w", err)
	}
	return nil
}

// CountByTool returns the number of recorded invocations grouped by tool
func (r *InvocationRepository) CountByTool(ctx context.Context) (map[string]int64, error) {
	query := `SELECT tool, COUNT(*) FROM invocations GROUP BY tool`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count invocations: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var tool string
		var count int64
		if err := rows.Scan(&tool, &count); err != nil {
			return nil, fmt.Errorf("failed to scan invocation count: %w", err)
		}
		counts[tool] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read invocation counts: %w", err)
	}
	return counts, nil
}
