// Package config resolves ambient configuration (commit identity, logging)
// from KESTREL_* environment variables and holds the fixed default branch
// name and metadata directory name.
package config

import (
	"log/slog"
	"os"
)

const (
	envAuthorName  = "KESTREL_AUTHOR_NAME"
	envAuthorEmail = "KESTREL_AUTHOR_EMAIL"
	envLogLevel    = "KESTREL_LOG_LEVEL"
	envLogFormat   = "KESTREL_LOG_FORMAT"

	defaultAuthorName  = "kestrel"
	defaultAuthorEmail = "kestrel@localhost"

	// DefaultBranch is the branch HEAD is initialized to point at.
	DefaultBranch = "main"

	// MetadataDirName is the fixed name of the repository metadata directory.
	MetadataDirName = ".kestrel"
)

// Identity is the author/committer identity used for new commits.
type Identity struct {
	Name  string
	Email string
}

// LoadIdentity resolves the commit identity from the environment, falling
// back to a fixed default when unset.
func LoadIdentity() Identity {
	id := Identity{Name: defaultAuthorName, Email: defaultAuthorEmail}
	if v := os.Getenv(envAuthorName); v != "" {
		id.Name = v
	}
	if v := os.Getenv(envAuthorEmail); v != "" {
		id.Email = v
	}
	return id
}

// InitLogger builds and installs the default slog logger, reading its level
// and handler format from the environment.
func InitLogger() *slog.Logger {
	level := slog.LevelInfo
	switch os.Getenv(envLogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if os.Getenv(envLogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
