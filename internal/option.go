package internal

import (
	"io"

	"github.com/stickon/stickon/internal/ai"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	aiClient ai.Client
	logOut   io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithAIClient overrides the AI collaborator, primarily for tests.
func WithAIClient(c ai.Client) Option {
	return func(a *application) {
		a.aiClient = c
	}
}
