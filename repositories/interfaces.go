package repositories

import (
	"context"

	"github.com/agentkit/agentctl/models"
)

// InvocationRepository persists tool invocation records
type InvocationRepository interface {
	// Insert stores one invocation
	Insert(ctx context.Context, inv *models.Invocation) error

	// CountByTool returns the number of stored invocations per tool name
	CountByTool(ctx context.Context) (map[string]int64, error)
}
