// Package logging provides component loggers for the tapir CLI, backed by
// charmbracelet/log. Loggers write to stderr so manifest output on stdout
// stays clean for piping.
//
// Basic usage:
//
//	logger := logging.Get("compute")
//	logger.Info("hashing", "files", 42)
package logging

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// state holds the shared logging configuration.
type state struct {
	mu         sync.Mutex
	level      log.Level
	components map[string]log.Level
	loggers    map[string]*log.Logger
}

var globalState = &state{
	level:      log.InfoLevel,
	components: make(map[string]log.Level),
	loggers:    make(map[string]*log.Logger),
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Components maps component names to level overrides.
	Components map[string]string
}

// Init applies the configuration to all current and future loggers.
// Before Init is called, loggers default to info level.
func Init(cfg Config) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	components := make(map[string]log.Level, len(cfg.Components))
	for comp, lvl := range cfg.Components {
		parsed, err := log.ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		components[comp] = parsed
	}

	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	globalState.level = level
	globalState.components = components

	for component, logger := range globalState.loggers {
		logger.SetLevel(levelFor(component))
	}

	return nil
}

// Get returns the logger for the given component, creating it on first use.
func Get(component string) *log.Logger {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if logger, ok := globalState.loggers[component]; ok {
		return logger
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           levelFor(component),
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          component,
	})
	globalState.loggers[component] = logger
	return logger
}

// levelFor returns the effective level for a component.
// Must be called with globalState.mu held.
func levelFor(component string) log.Level {
	if lvl, ok := globalState.components[component]; ok {
		return lvl
	}
	return globalState.level
}
