package util

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger     *logrus.Logger
	loggerOnce sync.Once
	loggerMu   sync.RWMutex
)

// Logger returns the process-wide structured logger. Level comes from
// LOG_LEVEL and defaults to info.
func Logger() *logrus.Logger {
	loggerOnce.Do(func() {
		l := logrus.New()
		l.SetFormatter(&logrus.JSONFormatter{})
		level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
		if err != nil {
			level = logrus.InfoLevel
		}
		l.SetLevel(level)

		loggerMu.Lock()
		defer loggerMu.Unlock()
		if logger == nil {
			logger = l
		}
	})
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetLoggerForTest swaps in a test logger so tests can capture output.
func SetLoggerForTest(l *logrus.Logger) {
	loggerOnce.Do(func() {})
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}
