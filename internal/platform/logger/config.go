package logger

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// LoggerConfig holds configuration for the logger.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputFile string `mapstructure:"output_file"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() LoggerConfig {
	return LoggerConfig{
		Level:      "info",
		Format:     "json",
		OutputFile: "stdout",
	}
}

// ToZapLevel maps the configured level name onto zap. Unknown names mean info.
func (c LoggerConfig) ToZapLevel() zapcore.Level {
	name := strings.ToLower(strings.TrimSpace(c.Level))
	if name == "warning" {
		name = "warn"
	}
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}
