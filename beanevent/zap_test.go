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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	t.Parallel()

	someError := errors.New("some error")

	tests := []struct {
		name        string
		give        Event
		wantMessage string
		wantLevel   zapcore.Level
		wantFields  map[string]interface{}
	}{
		{
			name:        "DefinitionRegistered",
			give:        &DefinitionRegistered{Name: "db", Source: "main.go:12", Overridden: true},
			wantMessage: "definition registered",
			wantLevel:   zapcore.InfoLevel,
			wantFields: map[string]interface{}{
				"name":       "db",
				"source":     "main.go:12",
				"overridden": true,
			},
		},
		{
			name:        "AliasRegistered",
			give:        &AliasRegistered{Name: "db", Alias: "database"},
			wantMessage: "alias registered",
			wantLevel:   zapcore.InfoLevel,
			wantFields: map[string]interface{}{
				"name":  "db",
				"alias": "database",
			},
		},
		{
			name:        "Created",
			give:        &Created{Name: "repo", Scope: "singleton", Runtime: 3 * time.Millisecond},
			wantMessage: "created bean",
			wantLevel:   zapcore.InfoLevel,
			wantFields: map[string]interface{}{
				"name":    "repo",
				"scope":   "singleton",
				"runtime": "3ms",
			},
		},
		{
			name:        "CreatedError",
			give:        &Created{Name: "repo", Scope: "prototype", Err: someError},
			wantMessage: "bean creation failed",
			wantLevel:   zapcore.ErrorLevel,
			wantFields: map[string]interface{}{
				"name":  "repo",
				"scope": "prototype",
				"error": "some error",
			},
		},
		{
			name:        "TypeProbeFailed",
			give:        &TypeProbeFailed{Name: "conn", Err: someError},
			wantMessage: "type probe failed, type unknown",
			wantLevel:   zapcore.InfoLevel,
			wantFields: map[string]interface{}{
				"name":  "conn",
				"error": "some error",
			},
		},
		{
			name:        "DestroyedError",
			give:        &Destroyed{Name: "db", Err: someError},
			wantMessage: "bean destruction failed",
			wantLevel:   zapcore.ErrorLevel,
			wantFields: map[string]interface{}{
				"name":  "db",
				"error": "some error",
			},
		},
		{
			name:        "SingletonsPreInstantiated",
			give:        &SingletonsPreInstantiated{Count: 4},
			wantMessage: "singletons pre-instantiated",
			wantLevel:   zapcore.InfoLevel,
			wantFields: map[string]interface{}{
				"count": int64(4),
			},
		},
		{
			name:        "Shutdown",
			give:        &Shutdown{},
			wantMessage: "shutdown complete",
			wantLevel:   zapcore.InfoLevel,
			wantFields:  map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, observedLogs := observer.New(zap.DebugLevel)
			(&ZapLogger{Logger: zap.New(core)}).LogEvent(tt.give)

			logs := observedLogs.TakeAll()
			require.Len(t, logs, 1)
			got := logs[0]

			assert.Equal(t, tt.wantMessage, got.Message)
			assert.Equal(t, tt.wantLevel, got.Level)
			assert.Equal(t, tt.wantFields, got.ContextMap())
		})
	}
}

func TestZapLoggerLevels(t *testing.T) {
	t.Parallel()

	core, observedLogs := observer.New(zap.DebugLevel)
	logger := &ZapLogger{Logger: zap.New(core)}
	logger.UseLogLevel(zapcore.DebugLevel)
	logger.UseErrorLevel(zapcore.WarnLevel)

	logger.LogEvent(&Creating{Name: "db", Scope: "singleton"})
	logger.LogEvent(&Created{Name: "db", Scope: "singleton", Err: errors.New("great sadness")})

	logs := observedLogs.TakeAll()
	require.Len(t, logs, 2)
	assert.Equal(t, zapcore.DebugLevel, logs[0].Level)
	assert.Equal(t, zapcore.WarnLevel, logs[1].Level)
}
