package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Interface describes the minimal logging interface the worker and the
// analytics service rely on.
type Interface interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

var (
	base         zerolog.Logger
	globalLogger Interface
	once         sync.Once
)

func initLogger() {
	once.Do(func() {
		base = zerolog.New(os.Stdout).With().Timestamp().Logger()
		globalLogger = &zerologAdapter{log: base}
	})
}

// Logger returns a lazily initialized zerolog-backed logger implementing Interface.
func Logger() Interface {
	initLogger()
	return globalLogger
}

// Component returns a logger that tags every entry with component=name.
func Component(name string) Interface {
	initLogger()
	return &zerologAdapter{log: base.With().Str("component", name).Logger()}
}

// SetLevel applies a zerolog level name (debug, info, warn, error) to every
// logger in the process. An empty name selects info.
func SetLevel(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = zerolog.LevelInfoValue
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

type zerologAdapter struct {
	log zerolog.Logger
}

func (l *zerologAdapter) Infof(format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}

func (l *zerologAdapter) Errorf(format string, args ...interface{}) {
	l.log.Error().Msgf(format, args...)
}

func (l *zerologAdapter) Debugf(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

func (l *zerologAdapter) Warnf(format string, args ...interface{}) {
	l.log.Warn().Msgf(format, args...)
}
