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

// Package beantest helps tests build and use containers.
package beantest

import (
	"context"
	"strings"

	"go.uber.org/beans"
	"go.uber.org/beans/beanevent"
)

// TB is a subset of the standard library's testing.TB interface. It's
// satisfied by both *testing.T and *testing.B.
type TB interface {
	Logf(string, ...interface{})
	Errorf(string, ...interface{})
	FailNow()
}

// Container is a beans.Container that fails the test on errors through its
// Must methods.
type Container struct {
	*beans.Container

	tb TB
}

// New builds a container that logs its events to tb. It fails the test if
// the container cannot be built.
func New(tb TB, opts ...beans.Option) *Container {
	opts = append([]beans.Option{
		beans.WithLogger(NewTestLogger(tb)),
	}, opts...)

	c, err := beans.New(opts...)
	if err != nil {
		tb.Errorf("container build failed: %v", err)
		tb.FailNow()
		return nil
	}
	return &Container{Container: c, tb: tb}
}

// MustRegister registers each definition under its name, failing the test
// on error.
func (c *Container) MustRegister(defs map[string]*beans.Definition) *Container {
	for name, def := range defs {
		if err := c.RegisterDefinition(name, def); err != nil {
			c.tb.Errorf("cannot register %q: %v", name, err)
			c.tb.FailNow()
		}
	}
	return c
}

// MustGet calls Get, failing the test on error.
func (c *Container) MustGet(ctx context.Context, name string) interface{} {
	obj, err := c.Get(ctx, name)
	if err != nil {
		c.tb.Errorf("cannot get bean %q: %v", name, err)
		c.tb.FailNow()
	}
	return obj
}

// MustShutdown calls Shutdown, failing the test on error.
func (c *Container) MustShutdown(ctx context.Context) {
	if err := c.Shutdown(ctx); err != nil {
		c.tb.Errorf("container didn't shut down cleanly: %v", err)
		c.tb.FailNow()
	}
}

// NewTestLogger returns an event logger that writes to tb's log.
func NewTestLogger(tb TB) beanevent.Logger {
	return &beanevent.ConsoleLogger{W: testLogWriter{tb}}
}

type testLogWriter struct{ tb TB }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.tb.Logf("%s", strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
