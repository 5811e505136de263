package config

import (
	"go.uber.org/zap"
)

// NewLogger returns a development console logger when APP_ENV=development and
// a production JSON logger otherwise.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg != nil && cfg.IsDevelopment {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
