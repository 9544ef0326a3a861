package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentkit/agentctl/services"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", services.NewDomainError(services.ErrorTypeValidation, "bad input", nil), exitValidation},
		{"configuration", services.NewDomainError(services.ErrorTypeConfiguration, "no key", nil), exitConfiguration},
		{"transport", services.NewDomainError(services.ErrorTypeTransport, "upstream down", nil), exitTransport},
		{"wrapped transport", fmt.Errorf("query failed: %w",
			services.NewDomainError(services.ErrorTypeTransport, "timeout", nil)), exitTransport},
		{"plain error", assert.AnError, exitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	assert.Equal(t, exitValidation, run([]string{"frobnicate"}))
}

func TestRun_NoArgs(t *testing.T) {
	assert.Equal(t, exitValidation, run(nil))
}

func TestRun_Help(t *testing.T) {
	assert.Equal(t, exitOK, run([]string{"help"}))
}
