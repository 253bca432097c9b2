// Package logger adapts zap to the narrow logging interface the auth
// package consumes.
package logger

import (
	"go.uber.org/zap"

	"github.com/kavyakala/kavyakala/auth"
)

type ZapLogger struct {
	sugar *zap.SugaredLogger
}

var _ auth.Logger = (*ZapLogger)(nil)

// New builds a production or development logger depending on the debug flag.
func New(debug bool) (*ZapLogger, error) {
	var (
		zl  *zap.Logger
		err error
	)

	if debug {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}

	return &ZapLogger{sugar: zl.Sugar()}, nil
}

// Messages arrive as a message plus loose key/value pairs, which is what
// the *w family expects.
func (l *ZapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *ZapLogger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *ZapLogger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *ZapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

// Sync flushes buffered entries, called on shutdown.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}
