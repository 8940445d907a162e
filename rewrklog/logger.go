// Package rewrklog holds the single logger instance the rest of the
// module logs through. Embedders wire their own zerolog output and
// level by calling SetLogger before starting a benchmark; absent that,
// log lines go nowhere.
package rewrklog

import (
	"io"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	log zerolog.Logger = zerolog.New(io.Discard)
)

// SetLogger replaces the package-level logger. Safe to call concurrently
// with logging, but intended to be called once at startup.
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()
}

// Logger returns the current package-level logger.
func Logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

func Trace() *zerolog.Event { return Logger().Trace() }
func Debug() *zerolog.Event { return Logger().Debug() }
func Info() *zerolog.Event  { return Logger().Info() }
func Warn() *zerolog.Event  { return Logger().Warn() }
func Error() *zerolog.Event { return Logger().Error() }
