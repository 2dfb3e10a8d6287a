// Copyright (c) 2026 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

//go:build go1.21

package beanevent

import (
	"context"
	"log/slog"
)

var _ Logger = (*SlogLogger)(nil)

// SlogLogger an event logger that logs events using a slog logger.
type SlogLogger struct {
	Logger *slog.Logger

	ctx        context.Context
	logLevel   slog.Level
	errorLevel *slog.Level
}

// UseContext sets the context that will be used when logging to slog.
func (l *SlogLogger) UseContext(ctx context.Context) {
	l.ctx = ctx
}

// UseLogLevel sets the level of non-error logs emitted to level.
func (l *SlogLogger) UseLogLevel(level slog.Level) {
	l.logLevel = level
}

// UseErrorLevel sets the level of error logs emitted to level.
func (l *SlogLogger) UseErrorLevel(level slog.Level) {
	l.errorLevel = &level
}

func (l *SlogLogger) context() context.Context {
	if l.ctx == nil {
		return context.Background()
	}
	return l.ctx
}

func (l *SlogLogger) logEvent(msg string, fields ...any) {
	l.Logger.Log(l.context(), l.logLevel, msg, fields...)
}

func (l *SlogLogger) logError(msg string, fields ...any) {
	lvl := slog.LevelError
	if l.errorLevel != nil {
		lvl = *l.errorLevel
	}
	l.Logger.Log(l.context(), lvl, msg, fields...)
}

// LogEvent logs the given event to the provided slog logger.
func (l *SlogLogger) LogEvent(event Event) {
	switch e := event.(type) {
	case *DefinitionRegistered:
		l.logEvent("definition registered",
			slog.String("name", e.Name),
			slog.String("source", e.Source),
			slog.Bool("overridden", e.Overridden),
		)
	case *DefinitionRemoved:
		l.logEvent("definition removed", slog.String("name", e.Name))
	case *AliasRegistered:
		l.logEvent("alias registered",
			slog.String("name", e.Name),
			slog.String("alias", e.Alias),
		)
	case *ScopeRegistered:
		l.logEvent("scope registered", slog.String("scope", e.Scope))
	case *Creating:
		l.logEvent("creating bean",
			slog.String("name", e.Name),
			slog.String("scope", e.Scope),
		)
	case *Created:
		if e.Err != nil {
			l.logError("bean creation failed",
				slog.String("name", e.Name),
				slog.String("scope", e.Scope),
				slog.Any("error", e.Err),
			)
		} else {
			l.logEvent("created bean",
				slog.String("name", e.Name),
				slog.String("scope", e.Scope),
				slog.String("runtime", e.Runtime.String()),
			)
		}
	case *EarlyReference:
		l.logEvent("returning early reference to singleton in creation",
			slog.String("name", e.Name))
	case *TypeProbeFailed:
		l.logEvent("type probe failed, type unknown",
			slog.String("name", e.Name),
			slog.Any("error", e.Err),
		)
	case *LookupSuppressed:
		l.logEvent("lookup of bean in creation suppressed",
			slog.String("name", e.Name),
			slog.Any("error", e.Err),
		)
	case *Destroying:
		l.logEvent("destroying bean", slog.String("name", e.Name))
	case *Destroyed:
		if e.Err != nil {
			l.logError("bean destruction failed",
				slog.String("name", e.Name),
				slog.Any("error", e.Err),
			)
		} else {
			l.logEvent("destroyed bean",
				slog.String("name", e.Name),
				slog.String("runtime", e.Runtime.String()),
			)
		}
	case *SingletonsPreInstantiated:
		if e.Err != nil {
			l.logError("singleton pre-instantiation failed", slog.Any("error", e.Err))
		} else {
			l.logEvent("singletons pre-instantiated", slog.Int("count", e.Count))
		}
	case *Shutdown:
		if e.Err != nil {
			l.logError("shutdown failed", slog.Any("error", e.Err))
		} else {
			l.logEvent("shutdown complete")
		}
	}
}
