package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds a zap logger appropriate for the environment: human-readable
// in development, JSON in everything else.
func New(env string) (*zap.Logger, error) {
	if env == "development" {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("build development logger: %w", err)
		}
		return l, nil
	}
	l, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("build production logger: %w", err)
	}
	return l, nil
}

// NewNamed builds a logger tagged with the service name.
func NewNamed(env, service string) (*zap.Logger, error) {
	l, err := New(env)
	if err != nil {
		return nil, err
	}
	return l.Named(service), nil
}
