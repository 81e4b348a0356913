package main

import (
	"github.com/sirupsen/logrus"
)

// logrusAdapter bridges the engine's logging interface onto logrus.
type logrusAdapter struct {
	logger *logrus.Logger
}

func newLogrusAdapter(logger *logrus.Logger) *logrusAdapter {
	return &logrusAdapter{logger: logger}
}

func (a *logrusAdapter) Debugf(format string, args ...any) { a.logger.Debugf(format, args...) }
func (a *logrusAdapter) Infof(format string, args ...any)  { a.logger.Infof(format, args...) }
func (a *logrusAdapter) Warnf(format string, args ...any)  { a.logger.Warnf(format, args...) }
func (a *logrusAdapter) Errorf(format string, args ...any) { a.logger.Errorf(format, args...) }
