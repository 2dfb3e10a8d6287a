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

package lifecycle

import (
	"context"
	"sync"

	"go.uber.org/beans/beanevent"
	"go.uber.org/beans/internal/beanclock"
	"go.uber.org/beans/internal/beanreflect"
	"go.uber.org/multierr"
)

// A Hook is a destruction callback for a named bean, plus a string
// identifying the supplier of the hook.
type Hook struct {
	Name   string
	OnStop func(context.Context) error
	caller string
}

// Lifecycle coordinates bean destruction hooks.
type Lifecycle struct {
	logger beanevent.Logger
	clock  beanclock.Clock

	mu    sync.Mutex
	hooks []Hook
}

// New constructs a new Lifecycle.
func New(logger beanevent.Logger, clock beanclock.Clock) *Lifecycle {
	if logger == nil {
		logger = beanevent.NopLogger
	}
	if clock == nil {
		clock = beanclock.System
	}
	return &Lifecycle{logger: logger, clock: clock}
}

// Append adds a Hook to the lifecycle. A hook registered under a name that
// is already present replaces the old one and keeps its position.
func (l *Lifecycle) Append(hook Hook) {
	hook.caller = beanreflect.Caller()

	l.mu.Lock()
	defer l.mu.Unlock()
	for i, h := range l.hooks {
		if h.Name == hook.Name {
			l.hooks[i] = hook
			return
		}
	}
	l.hooks = append(l.hooks, hook)
}

// Has reports whether a hook is registered under name.
func (l *Lifecycle) Has(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.indexOf(name) >= 0
}

// Remove unregisters the named hook and returns it.
func (l *Lifecycle) Remove(name string) (Hook, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(name)
	if i < 0 {
		return Hook{}, false
	}
	h := l.hooks[i]
	l.hooks = append(l.hooks[:i], l.hooks[i+1:]...)
	return h, true
}

// Names returns the names of all registered hooks, most recent first.
func (l *Lifecycle) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, len(l.hooks))
	for i, h := range l.hooks {
		names[len(l.hooks)-1-i] = h.Name
	}
	return names
}

// Len reports the number of registered hooks.
func (l *Lifecycle) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hooks)
}

// Run executes a single hook, logging around it.
func (l *Lifecycle) Run(ctx context.Context, hook Hook) error {
	if hook.OnStop == nil {
		return nil
	}

	l.logger.LogEvent(&beanevent.Destroying{Name: hook.Name})
	begin := l.clock.Now()
	err := hook.OnStop(ctx)
	l.logger.LogEvent(&beanevent.Destroyed{
		Name:    hook.Name,
		Runtime: l.clock.Since(begin),
		Err:     err,
	})
	return err
}

// Stop removes and runs every hook in reverse registration order.
//
// If any hook returns an error, execution continues for a best-effort
// cleanup. Any errors encountered are collected into a single error and
// returned.
func (l *Lifecycle) Stop(ctx context.Context) error {
	var errs error
	for _, name := range l.Names() {
		hook, ok := l.Remove(name)
		if !ok {
			continue
		}
		errs = multierr.Append(errs, l.Run(ctx, hook))
	}
	return errs
}

func (l *Lifecycle) indexOf(name string) int {
	for i, h := range l.hooks {
		if h.Name == name {
			return i
		}
	}
	return -1
}
