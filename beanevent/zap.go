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

package beanevent

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger is an event logger that logs events to Zap.
type ZapLogger struct {
	Logger *zap.Logger

	logLevel   zapcore.Level // default: zapcore.InfoLevel
	errorLevel *zapcore.Level
}

var _ Logger = (*ZapLogger)(nil)

// UseErrorLevel sets the level of error logs emitted to level.
func (l *ZapLogger) UseErrorLevel(level zapcore.Level) {
	l.errorLevel = &level
}

// UseLogLevel sets the level of non-error logs emitted to level.
func (l *ZapLogger) UseLogLevel(level zapcore.Level) {
	l.logLevel = level
}

func (l *ZapLogger) logEvent(msg string, fields ...zap.Field) {
	l.Logger.Log(l.logLevel, msg, fields...)
}

func (l *ZapLogger) logError(msg string, fields ...zap.Field) {
	lvl := zapcore.ErrorLevel
	if l.errorLevel != nil {
		lvl = *l.errorLevel
	}
	l.Logger.Log(lvl, msg, fields...)
}

// LogEvent logs the given event to the provided Zap logger.
func (l *ZapLogger) LogEvent(event Event) {
	switch e := event.(type) {
	case *DefinitionRegistered:
		l.logEvent("definition registered",
			zap.String("name", e.Name),
			zap.String("source", e.Source),
			zap.Bool("overridden", e.Overridden),
		)
	case *DefinitionRemoved:
		l.logEvent("definition removed", zap.String("name", e.Name))
	case *AliasRegistered:
		l.logEvent("alias registered",
			zap.String("name", e.Name),
			zap.String("alias", e.Alias),
		)
	case *ScopeRegistered:
		l.logEvent("scope registered", zap.String("scope", e.Scope))
	case *Creating:
		l.logEvent("creating bean",
			zap.String("name", e.Name),
			zap.String("scope", e.Scope),
		)
	case *Created:
		if e.Err != nil {
			l.logError("bean creation failed",
				zap.String("name", e.Name),
				zap.String("scope", e.Scope),
				zap.Error(e.Err),
			)
		} else {
			l.logEvent("created bean",
				zap.String("name", e.Name),
				zap.String("scope", e.Scope),
				zap.String("runtime", e.Runtime.String()),
			)
		}
	case *EarlyReference:
		l.logEvent("returning early reference to singleton in creation",
			zap.String("name", e.Name))
	case *TypeProbeFailed:
		l.logEvent("type probe failed, type unknown",
			zap.String("name", e.Name),
			zap.Error(e.Err),
		)
	case *LookupSuppressed:
		l.logEvent("lookup of bean in creation suppressed",
			zap.String("name", e.Name),
			zap.Error(e.Err),
		)
	case *Destroying:
		l.logEvent("destroying bean", zap.String("name", e.Name))
	case *Destroyed:
		if e.Err != nil {
			l.logError("bean destruction failed",
				zap.String("name", e.Name),
				zap.Error(e.Err),
			)
		} else {
			l.logEvent("destroyed bean",
				zap.String("name", e.Name),
				zap.String("runtime", e.Runtime.String()),
			)
		}
	case *SingletonsPreInstantiated:
		if e.Err != nil {
			l.logError("singleton pre-instantiation failed", zap.Error(e.Err))
		} else {
			l.logEvent("singletons pre-instantiated", zap.Int("count", e.Count))
		}
	case *Shutdown:
		if e.Err != nil {
			l.logError("shutdown failed", zap.Error(e.Err))
		} else {
			l.logEvent("shutdown complete")
		}
	}
}
